package application

import (
	"context"
	"fmt"

	"github.com/revshift/revshift-server/internal/domain"
)

// UpdateTrafficInput is the caller-provided input for a traffic update.
type UpdateTrafficInput struct {
	ServiceID        domain.ServiceID
	Assignments      []domain.SplitAssignment
	PinToLatestReady bool
}

// TrafficService manages the traffic allocation of services.
type TrafficService struct {
	Services domain.ServiceRepository
	Rollout  *RolloutService
}

// UpdateTraffic runs a rollout for the requested assignments and returns
// the service as persisted afterwards.
func (s *TrafficService) UpdateTraffic(ctx context.Context, in UpdateTrafficInput) (domain.Service, error) {
	if in.ServiceID == "" {
		return domain.Service{}, fmt.Errorf("%w: service ID is required", domain.ErrInvalidArgument)
	}

	err := s.Rollout.Execute(ctx, domain.RolloutRequest{
		ServiceID:        in.ServiceID,
		Assignments:      in.Assignments,
		PinToLatestReady: in.PinToLatestReady,
	})
	if err != nil {
		return domain.Service{}, err
	}

	return s.Services.Get(ctx, in.ServiceID)
}

// PinToLatestReady moves traffic assigned to the latest target onto the
// concrete latest-ready revision, so the allocation stops floating with
// future deployments.
func (s *TrafficService) PinToLatestReady(ctx context.Context, id domain.ServiceID) (domain.Service, error) {
	return s.UpdateTraffic(ctx, UpdateTrafficInput{ServiceID: id, PinToLatestReady: true})
}

// Status pairs the service's declared and observed splits per target for
// display.
func (s *TrafficService) Status(ctx context.Context, id domain.ServiceID) ([]domain.SplitPair, error) {
	svc, err := s.Services.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.SplitPairs(svc.Splits, svc.ObservedSplits, svc.LatestReadyRevision)
}
