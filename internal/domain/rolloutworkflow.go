package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ComputeSplitsInput carries the loaded service and the caller's request
// into the split computation activity.
type ComputeSplitsInput struct {
	Service          Service
	Assignments      []SplitAssignment
	PinToLatestReady bool
}

// ApplySplitsInput carries a computed split list to the apply activity.
type ApplySplitsInput struct {
	Service Service
	Splits  []SplitRecord
}

// RecordRolloutInput carries the applied splits to the history activity.
type RecordRolloutInput struct {
	ServiceID ServiceID
	Splits    []SplitRecord
	Result    ApplyResult
}

// RolloutWorkflow is the traffic update pipeline: load the service,
// compute the new split allocation, apply it through the platform port,
// and record the rollout. All split math runs inside the compute
// activity so the workflow body stays deterministic under replay.
type RolloutWorkflow struct {
	Services ServiceRepository
	Records  RolloutRecordRepository
	Applier  TrafficApplier

	// NewRolloutID generates rollout record IDs. Defaults to random
	// UUIDs.
	NewRolloutID func() string

	// Now stamps rollout records. Defaults to time.Now.
	Now func() time.Time
}

// Name returns the stable workflow name used for engine registration.
func (w *RolloutWorkflow) Name() string { return "traffic-rollout" }

// LoadService reads the service the rollout operates on.
func (w *RolloutWorkflow) LoadService() Activity[ServiceID, Service] {
	return NewActivity("load-service", func(ctx context.Context, id ServiceID) (Service, error) {
		return w.Services.Get(ctx, id)
	})
}

// ComputeSplits runs the split engine over the loaded service state and
// the requested assignments, optionally pinning latest traffic onto the
// concrete latest-ready revision.
func (w *RolloutWorkflow) ComputeSplits() Activity[ComputeSplitsInput, []SplitRecord] {
	return NewActivity("compute-splits", func(_ context.Context, in ComputeSplitsInput) ([]SplitRecord, error) {
		requested := make(map[TargetRef]int, len(in.Assignments))
		for _, a := range in.Assignments {
			if _, ok := requested[a.Target]; ok {
				return nil, fmt.Errorf("%w: duplicate target %s in request", ErrInvalidSplitSpec, a.Target)
			}
			requested[a.Target] = a.Percent
		}

		splits, err := GetUpdatedSplits(in.Service.Splits, requested)
		if err != nil {
			return nil, err
		}
		if in.PinToLatestReady {
			splits, err = ZeroLatestAssignment(splits, in.Service.LatestReadyRevision)
			if err != nil {
				return nil, err
			}
		}
		return splits, nil
	})
}

// ApplySplits writes the computed allocation to the serving platform.
func (w *RolloutWorkflow) ApplySplits() Activity[ApplySplitsInput, ApplyResult] {
	return NewActivity("apply-splits", func(ctx context.Context, in ApplySplitsInput) (ApplyResult, error) {
		return w.Applier.Apply(ctx, in.Service, in.Splits)
	})
}

// RecordRollout appends the rollout to the service's history.
func (w *RolloutWorkflow) RecordRollout() Activity[RecordRolloutInput, RolloutRecord] {
	return NewActivity("record-rollout", func(ctx context.Context, in RecordRolloutInput) (RolloutRecord, error) {
		record := RolloutRecord{
			ID:        w.newRolloutID(),
			ServiceID: in.ServiceID,
			Splits:    in.Splits,
			State:     in.Result.State,
			UpdatedAt: w.now(),
		}
		if err := w.Records.Put(ctx, record); err != nil {
			return RolloutRecord{}, err
		}
		return record, nil
	})
}

// Run executes the rollout pipeline on the given runner.
func (w *RolloutWorkflow) Run(runner DurableRunner, req RolloutRequest) (struct{}, error) {
	service, err := RunActivity(runner, w.LoadService(), req.ServiceID)
	if err != nil {
		return struct{}{}, err
	}

	splits, err := RunActivity(runner, w.ComputeSplits(), ComputeSplitsInput{
		Service:          service,
		Assignments:      req.Assignments,
		PinToLatestReady: req.PinToLatestReady,
	})
	if err != nil {
		return struct{}{}, err
	}

	result, err := RunActivity(runner, w.ApplySplits(), ApplySplitsInput{
		Service: service,
		Splits:  splits,
	})
	if err != nil {
		return struct{}{}, err
	}

	_, err = RunActivity(runner, w.RecordRollout(), RecordRolloutInput{
		ServiceID: service.ID,
		Splits:    splits,
		Result:    result,
	})
	return struct{}{}, err
}

func (w *RolloutWorkflow) newRolloutID() string {
	if w.NewRolloutID != nil {
		return w.NewRolloutID()
	}
	return uuid.NewString()
}

func (w *RolloutWorkflow) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}
