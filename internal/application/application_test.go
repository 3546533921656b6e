package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/revshift/revshift-server/internal/application"
	"github.com/revshift/revshift-server/internal/domain"
	"github.com/revshift/revshift-server/internal/infrastructure/sqlite"
	"github.com/revshift/revshift-server/internal/infrastructure/syncworkflow"
)

type testHarness struct {
	registry *application.ServiceRegistry
	traffic  *application.TrafficService
	records  *sqlite.RolloutRecordRepo
}

func setup(t *testing.T) testHarness {
	t.Helper()
	db := sqlite.OpenTestDB(t)

	serviceRepo := &sqlite.ServiceRepo{DB: db}
	revisionRepo := &sqlite.RevisionRepo{DB: db}
	recordRepo := &sqlite.RolloutRecordRepo{DB: db}

	wf := &domain.RolloutWorkflow{
		Services: serviceRepo,
		Records:  recordRepo,
		Applier:  &sqlite.RecordingTrafficApplier{Services: serviceRepo},
		Now:      func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) },
	}
	engine := &syncworkflow.Engine{}
	runner, err := engine.RolloutRunner(wf)
	if err != nil {
		t.Fatalf("RolloutRunner: %v", err)
	}

	return testHarness{
		registry: &application.ServiceRegistry{
			Services:  serviceRepo,
			Revisions: revisionRepo,
			Records:   recordRepo,
			Now:       func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) },
		},
		traffic: &application.TrafficService{
			Services: serviceRepo,
			Rollout:  &application.RolloutService{Workflow: runner},
		},
		records: recordRepo,
	}
}

func setupService(t *testing.T, h testHarness, revisions ...string) {
	t.Helper()
	ctx := context.Background()
	if _, err := h.registry.Create(ctx, application.CreateServiceInput{ID: "s1", Name: "frontend"}); err != nil {
		t.Fatalf("Create service: %v", err)
	}
	for _, name := range revisions {
		if err := h.registry.RegisterRevision(ctx, domain.Revision{
			ServiceID: "s1", Name: name, Ready: true,
		}); err != nil {
			t.Fatalf("register revision %s: %v", name, err)
		}
	}
}

func TestCreateService_MissingID(t *testing.T) {
	h := setup(t)
	_, err := h.registry.Create(context.Background(), application.CreateServiceInput{Name: "frontend"})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got: %v", err)
	}
}

func TestRegisterRevision_FirstReadyActivatesService(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	setupService(t, h, "rev-a")

	svc, err := h.registry.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if svc.State != domain.ServiceStateActive {
		t.Errorf("State = %q, want %q", svc.State, domain.ServiceStateActive)
	}
	if svc.LatestReadyRevision != "rev-a" {
		t.Errorf("LatestReadyRevision = %q, want %q", svc.LatestReadyRevision, "rev-a")
	}
	assertSplits(t, svc.Splits, []domain.SplitRecord{
		{Target: domain.LatestTarget(), Percent: 100},
	})
	assertSplits(t, svc.ObservedSplits, []domain.SplitRecord{
		{Target: domain.RevisionTarget("rev-a"), Percent: 100},
	})
}

func TestRegisterRevision_LaterReadyKeepsSplits(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	setupService(t, h, "rev-a", "rev-b")

	svc, err := h.registry.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if svc.LatestReadyRevision != "rev-b" {
		t.Errorf("LatestReadyRevision = %q, want %q", svc.LatestReadyRevision, "rev-b")
	}
	assertSplits(t, svc.Splits, []domain.SplitRecord{
		{Target: domain.LatestTarget(), Percent: 100},
	})
}

func TestUpdateTraffic_RedistributesUnassigned(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	setupService(t, h, "rev-a", "rev-b")

	svc, err := h.traffic.UpdateTraffic(ctx, application.UpdateTrafficInput{
		ServiceID: "s1",
		Assignments: []domain.SplitAssignment{
			{Target: domain.RevisionTarget("rev-a"), Percent: 40},
		},
	})
	if err != nil {
		t.Fatalf("UpdateTraffic: %v", err)
	}

	want := []domain.SplitRecord{
		{Target: domain.RevisionTarget("rev-a"), Percent: 40},
		{Target: domain.LatestTarget(), Percent: 60},
	}
	assertSplits(t, svc.Splits, want)
	assertSplits(t, svc.ObservedSplits, want)

	records, err := h.records.ListByService(ctx, "s1")
	if err != nil {
		t.Fatalf("ListByService: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 rollout record, got %d", len(records))
	}
	if records[0].State != domain.RolloutStateApplied {
		t.Errorf("record State = %q, want %q", records[0].State, domain.RolloutStateApplied)
	}
	assertSplits(t, records[0].Splits, want)
}

func TestUpdateTraffic_UnknownService(t *testing.T) {
	h := setup(t)
	_, err := h.traffic.UpdateTraffic(context.Background(), application.UpdateTrafficInput{
		ServiceID: "missing",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestUpdateTraffic_InvalidRequestLeavesServiceUntouched(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	setupService(t, h, "rev-a")

	_, err := h.traffic.UpdateTraffic(ctx, application.UpdateTrafficInput{
		ServiceID: "s1",
		Assignments: []domain.SplitAssignment{
			{Target: domain.RevisionTarget("rev-a"), Percent: 120},
		},
	})
	if !errors.Is(err, domain.ErrInvalidSplitSpec) {
		t.Fatalf("expected ErrInvalidSplitSpec, got: %v", err)
	}

	svc, err := h.registry.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	assertSplits(t, svc.Splits, []domain.SplitRecord{
		{Target: domain.LatestTarget(), Percent: 100},
	})

	records, _ := h.records.ListByService(ctx, "s1")
	if len(records) != 0 {
		t.Fatalf("expected 0 rollout records, got %d", len(records))
	}
}

func TestPinToLatestReady(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	setupService(t, h, "rev-a", "rev-b")

	if _, err := h.traffic.UpdateTraffic(ctx, application.UpdateTrafficInput{
		ServiceID: "s1",
		Assignments: []domain.SplitAssignment{
			{Target: domain.RevisionTarget("rev-a"), Percent: 40},
		},
	}); err != nil {
		t.Fatalf("UpdateTraffic: %v", err)
	}

	svc, err := h.traffic.PinToLatestReady(ctx, "s1")
	if err != nil {
		t.Fatalf("PinToLatestReady: %v", err)
	}
	assertSplits(t, svc.Splits, []domain.SplitRecord{
		{Target: domain.RevisionTarget("rev-a"), Percent: 40},
		{Target: domain.RevisionTarget("rev-b"), Percent: 60},
	})
}

func TestStatus_FoldsLatestIntoConcreteName(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	setupService(t, h, "rev-a")

	pairs, err := h.traffic.Status(ctx, "s1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if got := pairs[0].DisplayPercent(); got != "100%" {
		t.Errorf("DisplayPercent = %q, want %q", got, "100%")
	}
	if got := pairs[0].DisplayRevision(); got != "LATEST (currently rev-a)" {
		t.Errorf("DisplayRevision = %q, want %q", got, "LATEST (currently rev-a)")
	}
}

func TestStatus_AfterUpdate(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	setupService(t, h, "rev-a", "rev-b")

	if _, err := h.traffic.UpdateTraffic(ctx, application.UpdateTrafficInput{
		ServiceID: "s1",
		Assignments: []domain.SplitAssignment{
			{Target: domain.RevisionTarget("rev-a"), Percent: 60},
		},
	}); err != nil {
		t.Fatalf("UpdateTraffic: %v", err)
	}

	pairs, err := h.traffic.Status(ctx, "s1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].Key != domain.RevisionTarget("rev-a") {
		t.Errorf("pairs[0].Key = %v, want rev-a", pairs[0].Key)
	}
	if got := pairs[0].DisplayPercent(); got != "60%" {
		t.Errorf("pairs[0].DisplayPercent = %q, want %q", got, "60%")
	}
	if !pairs[1].Key.IsLatest() {
		t.Errorf("pairs[1].Key = %v, want latest", pairs[1].Key)
	}
	if got := pairs[1].DisplayPercent(); got != "40%" {
		t.Errorf("pairs[1].DisplayPercent = %q, want %q", got, "40%")
	}
}

func TestDeleteService_RemovesHistory(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	setupService(t, h, "rev-a")

	if _, err := h.traffic.PinToLatestReady(ctx, "s1"); err != nil {
		t.Fatalf("PinToLatestReady: %v", err)
	}

	if err := h.registry.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	records, _ := h.records.ListByService(ctx, "s1")
	if len(records) != 0 {
		t.Fatalf("expected 0 rollout records after delete, got %d", len(records))
	}
	_, err := h.registry.Get(ctx, "s1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got: %v", err)
	}
}

func assertSplits(t *testing.T, got, want []domain.SplitRecord) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("splits = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("splits = %v, want %v", got, want)
		}
	}
}
