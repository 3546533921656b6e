package application

import (
	"context"
	"fmt"
	"time"

	"github.com/revshift/revshift-server/internal/domain"
)

// CreateServiceInput is the caller-provided input for creating a service.
type CreateServiceInput struct {
	ID   domain.ServiceID
	Name string
}

// ServiceRegistry manages the service and revision catalog.
type ServiceRegistry struct {
	Services  domain.ServiceRepository
	Revisions domain.RevisionRepository
	Records   domain.RolloutRecordRepository

	// Now stamps new revisions. Defaults to time.Now.
	Now func() time.Time
}

// Create persists a new service with no traffic allocation. The service
// stays pending until its first ready revision registers.
func (s *ServiceRegistry) Create(ctx context.Context, in CreateServiceInput) (domain.Service, error) {
	if in.ID == "" {
		return domain.Service{}, fmt.Errorf("%w: service ID is required", domain.ErrInvalidArgument)
	}
	if in.Name == "" {
		return domain.Service{}, fmt.Errorf("%w: service name is required", domain.ErrInvalidArgument)
	}

	svc := domain.Service{
		ID:    in.ID,
		Name:  in.Name,
		State: domain.ServiceStatePending,
	}
	if err := s.Services.Create(ctx, svc); err != nil {
		return domain.Service{}, err
	}
	return svc, nil
}

// Get retrieves a service by ID.
func (s *ServiceRegistry) Get(ctx context.Context, id domain.ServiceID) (domain.Service, error) {
	return s.Services.Get(ctx, id)
}

// List returns all services.
func (s *ServiceRegistry) List(ctx context.Context) ([]domain.Service, error) {
	return s.Services.List(ctx)
}

// Delete removes a service together with its revisions and rollout
// history.
func (s *ServiceRegistry) Delete(ctx context.Context, id domain.ServiceID) error {
	if err := s.Records.DeleteByService(ctx, id); err != nil {
		return fmt.Errorf("delete rollout records: %w", err)
	}
	if err := s.Revisions.DeleteByService(ctx, id); err != nil {
		return fmt.Errorf("delete revisions: %w", err)
	}
	return s.Services.Delete(ctx, id)
}

// RegisterRevision records a new revision of a service. A ready revision
// becomes the service's latest-ready revision; the first one also
// activates the service with 100% of traffic on the latest target.
func (s *ServiceRegistry) RegisterRevision(ctx context.Context, rev domain.Revision) error {
	if err := domain.ValidateRevisionName(rev.Name); err != nil {
		return err
	}

	svc, err := s.Services.Get(ctx, rev.ServiceID)
	if err != nil {
		return err
	}

	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = s.now()
	}
	if err := s.Revisions.Create(ctx, rev); err != nil {
		return err
	}

	if !rev.Ready {
		return nil
	}

	svc.LatestReadyRevision = rev.Name
	if len(svc.Splits) == 0 {
		svc.Splits = []domain.SplitRecord{{Target: domain.LatestTarget(), Percent: 100}}
		// Serving state reports latest traffic under the concrete name.
		svc.ObservedSplits = []domain.SplitRecord{{Target: domain.RevisionTarget(rev.Name), Percent: 100}}
		svc.State = domain.ServiceStateActive
	}
	return s.Services.Update(ctx, svc)
}

func (s *ServiceRegistry) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
