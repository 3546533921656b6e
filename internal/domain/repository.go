package domain

import "context"

// ServiceRepository persists and retrieves services.
type ServiceRepository interface {
	Create(ctx context.Context, s Service) error
	Get(ctx context.Context, id ServiceID) (Service, error)
	List(ctx context.Context) ([]Service, error)
	Update(ctx context.Context, s Service) error
	Delete(ctx context.Context, id ServiceID) error
}

// RevisionRepository persists and retrieves revisions per service.
type RevisionRepository interface {
	Create(ctx context.Context, r Revision) error
	Get(ctx context.Context, serviceID ServiceID, name string) (Revision, error)
	ListByService(ctx context.Context, serviceID ServiceID) ([]Revision, error)
	DeleteByService(ctx context.Context, serviceID ServiceID) error
}

// RolloutRecordRepository persists the rollout history of each service.
type RolloutRecordRepository interface {
	Put(ctx context.Context, record RolloutRecord) error
	Get(ctx context.Context, id string) (RolloutRecord, error)
	ListByService(ctx context.Context, serviceID ServiceID) ([]RolloutRecord, error)
	DeleteByService(ctx context.Context, serviceID ServiceID) error
}
