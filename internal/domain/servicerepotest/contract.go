// Package servicerepotest provides contract tests for
// [domain.ServiceRepository] implementations.
package servicerepotest

import (
	"context"
	"errors"
	"testing"

	"github.com/revshift/revshift-server/internal/domain"
)

// Factory creates a fresh [domain.ServiceRepository] for each test.
type Factory func(t *testing.T) domain.ServiceRepository

// Run exercises the [domain.ServiceRepository] contract.
func Run(t *testing.T, factory Factory) {
	sampleService := func() domain.Service {
		return domain.Service{
			ID:   "s1",
			Name: "checkout",
			Splits: []domain.SplitRecord{
				{Target: domain.RevisionTarget("checkout-00001"), Percent: 60},
				{Target: domain.LatestTarget(), Percent: 40},
			},
			ObservedSplits: []domain.SplitRecord{
				{Target: domain.RevisionTarget("checkout-00001"), Percent: 100},
			},
			LatestReadyRevision: "checkout-00001",
			State:               domain.ServiceStatePending,
		}
	}

	t.Run("CreateAndGet", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		s := sampleService()

		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create: %v", err)
		}

		got, err := repo.Get(ctx, "s1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Name != "checkout" {
			t.Errorf("Name = %q, want %q", got.Name, "checkout")
		}
		if len(got.Splits) != 2 {
			t.Errorf("Splits = %d, want 2", len(got.Splits))
		}
		if !got.Splits[1].Target.IsLatest() || got.Splits[1].Percent != 40 {
			t.Errorf("Splits[1] = %+v, want latest at 40", got.Splits[1])
		}
		if len(got.ObservedSplits) != 1 {
			t.Errorf("ObservedSplits = %d, want 1", len(got.ObservedSplits))
		}
		if got.LatestReadyRevision != "checkout-00001" {
			t.Errorf("LatestReadyRevision = %q, want %q", got.LatestReadyRevision, "checkout-00001")
		}
		if got.State != domain.ServiceStatePending {
			t.Errorf("State = %q, want %q", got.State, domain.ServiceStatePending)
		}
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		s := sampleService()
		_ = repo.Create(ctx, s)
		err := repo.Create(ctx, s)
		if !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("second Create: got %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		repo := factory(t)
		_, err := repo.Get(context.Background(), "nonexistent")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Get: got %v, want ErrNotFound", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		s := sampleService()
		_ = repo.Create(ctx, s)

		s.State = domain.ServiceStateActive
		s.Splits = []domain.SplitRecord{{Target: domain.LatestTarget(), Percent: 100}}
		if err := repo.Update(ctx, s); err != nil {
			t.Fatalf("Update: %v", err)
		}

		got, _ := repo.Get(ctx, "s1")
		if got.State != domain.ServiceStateActive {
			t.Errorf("State after Update = %q, want %q", got.State, domain.ServiceStateActive)
		}
		if len(got.Splits) != 1 || !got.Splits[0].Target.IsLatest() {
			t.Errorf("Splits after Update = %+v, want latest only", got.Splits)
		}
	})

	t.Run("UpdateNotFound", func(t *testing.T) {
		repo := factory(t)
		err := repo.Update(context.Background(), domain.Service{ID: "nonexistent"})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Update: got %v, want ErrNotFound", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		s1 := sampleService()
		s2 := sampleService()
		s2.ID = "s2"
		_ = repo.Create(ctx, s1)
		_ = repo.Create(ctx, s2)

		got, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("List: got %d, want 2", len(got))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		_ = repo.Create(ctx, sampleService())
		if err := repo.Delete(ctx, "s1"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		_, err := repo.Get(ctx, "s1")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Get after Delete: got %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteNotFound", func(t *testing.T) {
		repo := factory(t)
		err := repo.Delete(context.Background(), "nonexistent")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Delete: got %v, want ErrNotFound", err)
		}
	})
}
