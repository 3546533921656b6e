package dbosworkflows_test

import (
	"context"
	"testing"
	"time"

	"github.com/dbos-inc/dbos-transact-golang/dbos"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/revshift/revshift-server/internal/application"
	"github.com/revshift/revshift-server/internal/domain"
	"github.com/revshift/revshift-server/internal/infrastructure/dbosworkflows"
	"github.com/revshift/revshift-server/internal/infrastructure/sqlite"
)

func startPostgres(t *testing.T) string {
	t.Helper()

	// Ryuk (the reaper) requires a Docker bridge network that does not
	// exist on Podman. We handle cleanup via t.Cleanup instead.
	t.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("dbos_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get postgres connection string: %v", err)
	}
	return connStr
}

func TestRollout_DBOS(t *testing.T) {
	connStr := startPostgres(t)

	ctx := context.Background()

	dbosCtx, err := dbos.NewDBOSContext(ctx, dbos.Config{
		AppName:     "revshift-dbos-test",
		DatabaseURL: connStr,
	})
	if err != nil {
		t.Fatalf("NewDBOSContext: %v", err)
	}

	db := sqlite.OpenTestDB(t)
	serviceRepo := &sqlite.ServiceRepo{DB: db}
	revisionRepo := &sqlite.RevisionRepo{DB: db}
	recordRepo := &sqlite.RolloutRecordRepo{DB: db}

	wf := &domain.RolloutWorkflow{
		Services: serviceRepo,
		Records:  recordRepo,
		Applier:  &sqlite.RecordingTrafficApplier{Services: serviceRepo},
		Now:      func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) },
	}

	engine := &dbosworkflows.Engine{DBOSCtx: dbosCtx}
	runner, err := engine.RolloutRunner(wf)
	if err != nil {
		t.Fatalf("RolloutRunner: %v", err)
	}

	if err := dbos.Launch(dbosCtx); err != nil {
		t.Fatalf("dbos.Launch: %v", err)
	}
	t.Cleanup(func() { dbos.Shutdown(dbosCtx, 5*time.Second) })

	registry := &application.ServiceRegistry{
		Services:  serviceRepo,
		Revisions: revisionRepo,
		Records:   recordRepo,
	}
	traffic := &application.TrafficService{
		Services: serviceRepo,
		Rollout:  &application.RolloutService{Workflow: runner},
	}

	if _, err := registry.Create(ctx, application.CreateServiceInput{ID: "s1", Name: "frontend"}); err != nil {
		t.Fatalf("Create service: %v", err)
	}
	for _, name := range []string{"rev-a", "rev-b"} {
		if err := registry.RegisterRevision(ctx, domain.Revision{
			ServiceID: "s1", Name: name, Ready: true,
		}); err != nil {
			t.Fatalf("register revision %s: %v", name, err)
		}
	}

	svc, err := traffic.UpdateTraffic(ctx, application.UpdateTrafficInput{
		ServiceID: "s1",
		Assignments: []domain.SplitAssignment{
			{Target: domain.RevisionTarget("rev-a"), Percent: 25},
		},
	})
	if err != nil {
		t.Fatalf("UpdateTraffic: %v", err)
	}

	want := []domain.SplitRecord{
		{Target: domain.RevisionTarget("rev-a"), Percent: 25},
		{Target: domain.LatestTarget(), Percent: 75},
	}
	if len(svc.Splits) != len(want) {
		t.Fatalf("Splits = %v, want %v", svc.Splits, want)
	}
	for i := range want {
		if svc.Splits[i] != want[i] {
			t.Fatalf("Splits = %v, want %v", svc.Splits, want)
		}
	}

	records, err := recordRepo.ListByService(ctx, "s1")
	if err != nil {
		t.Fatalf("ListByService: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 rollout record, got %d", len(records))
	}
	if records[0].State != domain.RolloutStateApplied {
		t.Errorf("record State = %q, want %q", records[0].State, domain.RolloutStateApplied)
	}
}
