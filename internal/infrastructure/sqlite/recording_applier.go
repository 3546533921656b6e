package sqlite

import (
	"context"

	"github.com/revshift/revshift-server/internal/domain"
)

// RecordingTrafficApplier implements [domain.TrafficApplier] by writing
// the computed allocation straight back to the service row. This is the
// naive implementation used until a real serving platform is wired in; it
// reports the observed splits as identical to the declared ones.
type RecordingTrafficApplier struct {
	Services *ServiceRepo
}

func (a *RecordingTrafficApplier) Apply(ctx context.Context, service domain.Service, splits []domain.SplitRecord) (domain.ApplyResult, error) {
	svc, err := a.Services.Get(ctx, service.ID)
	if err != nil {
		return domain.ApplyResult{State: domain.RolloutStateFailed}, err
	}
	svc.Splits = splits
	svc.ObservedSplits = splits
	svc.State = domain.ServiceStateActive
	if err := a.Services.Update(ctx, svc); err != nil {
		return domain.ApplyResult{State: domain.RolloutStateFailed}, err
	}
	return domain.ApplyResult{State: domain.RolloutStateApplied}, nil
}
