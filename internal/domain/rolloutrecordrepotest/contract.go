// Package rolloutrecordrepotest provides contract tests for
// [domain.RolloutRecordRepository] implementations.
package rolloutrecordrepotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/revshift/revshift-server/internal/domain"
)

// Factory creates a fresh [domain.RolloutRecordRepository] for each test.
type Factory func(t *testing.T) domain.RolloutRecordRepository

// Run exercises the [domain.RolloutRecordRepository] contract.
func Run(t *testing.T, factory Factory) {
	sampleRecord := func(id string) domain.RolloutRecord {
		return domain.RolloutRecord{
			ID:        id,
			ServiceID: "s1",
			Splits: []domain.SplitRecord{
				{Target: domain.RevisionTarget("checkout-00001"), Percent: 100},
			},
			State:     domain.RolloutStateApplied,
			UpdatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		}
	}

	t.Run("PutAndGet", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		if err := repo.Put(ctx, sampleRecord("r1")); err != nil {
			t.Fatalf("Put: %v", err)
		}

		got, err := repo.Get(ctx, "r1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.ServiceID != "s1" {
			t.Errorf("ServiceID = %q, want s1", got.ServiceID)
		}
		if got.State != domain.RolloutStateApplied {
			t.Errorf("State = %q, want %q", got.State, domain.RolloutStateApplied)
		}
		if len(got.Splits) != 1 || got.Splits[0].Percent != 100 {
			t.Errorf("Splits = %+v", got.Splits)
		}
	})

	t.Run("PutOverwritesSameID", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		_ = repo.Put(ctx, sampleRecord("r1"))

		updated := sampleRecord("r1")
		updated.State = domain.RolloutStateFailed
		if err := repo.Put(ctx, updated); err != nil {
			t.Fatalf("second Put: %v", err)
		}

		got, _ := repo.Get(ctx, "r1")
		if got.State != domain.RolloutStateFailed {
			t.Errorf("State = %q, want %q", got.State, domain.RolloutStateFailed)
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		repo := factory(t)
		_, err := repo.Get(context.Background(), "nonexistent")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Get: got %v, want ErrNotFound", err)
		}
	})

	t.Run("ListByService", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		_ = repo.Put(ctx, sampleRecord("r1"))
		_ = repo.Put(ctx, sampleRecord("r2"))
		other := sampleRecord("r3")
		other.ServiceID = "s2"
		_ = repo.Put(ctx, other)

		got, err := repo.ListByService(ctx, "s1")
		if err != nil {
			t.Fatalf("ListByService: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("ListByService: got %d, want 2", len(got))
		}
	})

	t.Run("DeleteByService", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		_ = repo.Put(ctx, sampleRecord("r1"))
		_ = repo.Put(ctx, sampleRecord("r2"))

		if err := repo.DeleteByService(ctx, "s1"); err != nil {
			t.Fatalf("DeleteByService: %v", err)
		}
		got, _ := repo.ListByService(ctx, "s1")
		if len(got) != 0 {
			t.Fatalf("ListByService after delete: got %d, want 0", len(got))
		}
	})
}
