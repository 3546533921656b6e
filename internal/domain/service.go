package domain

// ServiceID uniquely identifies a service.
type ServiceID string

// ServiceState indicates the lifecycle state of a service.
type ServiceState string

const (
	ServiceStatePending  ServiceState = "pending"
	ServiceStateActive   ServiceState = "active"
	ServiceStateDeleting ServiceState = "deleting"
)

// Service is a deployable unit whose traffic is divided across its
// revisions by percentage.
type Service struct {
	ID   ServiceID
	Name string

	// Splits is the declared traffic allocation. Non-empty lists sum
	// to exactly 100.
	Splits []SplitRecord

	// ObservedSplits is the allocation the platform reports as
	// actually serving. It can lag or diverge from Splits during an
	// update; [SplitPairs] reconciles the two for display.
	ObservedSplits []SplitRecord

	// LatestReadyRevision is the concrete revision the latest target
	// resolves to, empty until a ready revision exists.
	LatestReadyRevision string

	State ServiceState
}
