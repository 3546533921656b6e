package domain

import (
	"context"
	"time"
)

// SplitAssignment is one caller-requested traffic assignment.
type SplitAssignment struct {
	Target  TargetRef `json:"target"`
	Percent int       `json:"percent"`
}

// RolloutRequest describes one traffic update for a service: explicit
// assignments, an optional pin of latest traffic onto the concrete
// latest-ready revision, or both.
type RolloutRequest struct {
	ServiceID        ServiceID
	Assignments      []SplitAssignment
	PinToLatestReady bool
}

// RolloutState indicates the outcome of a single rollout.
type RolloutState string

const (
	RolloutStatePending RolloutState = "pending"
	RolloutStateApplied RolloutState = "applied"
	RolloutStateFailed  RolloutState = "failed"
)

// RolloutRecord captures the splits applied to a service by one rollout.
type RolloutRecord struct {
	ID        string
	ServiceID ServiceID
	Splits    []SplitRecord
	State     RolloutState
	UpdatedAt time.Time
}

// ApplyResult is the outcome of a single apply attempt.
type ApplyResult struct {
	State RolloutState
}

// TrafficApplier is the port through which the rollout workflow writes a
// computed split list to the serving platform. The real implementation
// submits a service update to the platform API; the initial
// implementation records the allocation in the database.
type TrafficApplier interface {
	Apply(ctx context.Context, service Service, splits []SplitRecord) (ApplyResult, error)
}
