// Package revisionrepotest provides contract tests for
// [domain.RevisionRepository] implementations.
package revisionrepotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/revshift/revshift-server/internal/domain"
)

// Factory creates a fresh [domain.RevisionRepository] for each test.
type Factory func(t *testing.T) domain.RevisionRepository

// Run exercises the [domain.RevisionRepository] contract.
func Run(t *testing.T, factory Factory) {
	sampleRevision := func(name string) domain.Revision {
		return domain.Revision{
			Name:      name,
			ServiceID: "s1",
			Ready:     true,
			CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		}
	}

	t.Run("CreateAndGet", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		if err := repo.Create(ctx, sampleRevision("checkout-00001")); err != nil {
			t.Fatalf("Create: %v", err)
		}

		got, err := repo.Get(ctx, "s1", "checkout-00001")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !got.Ready {
			t.Error("Ready = false, want true")
		}
		if !got.CreatedAt.Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)) {
			t.Errorf("CreatedAt = %v", got.CreatedAt)
		}
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		_ = repo.Create(ctx, sampleRevision("checkout-00001"))
		err := repo.Create(ctx, sampleRevision("checkout-00001"))
		if !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("second Create: got %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("SameNameDifferentService", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		_ = repo.Create(ctx, sampleRevision("checkout-00001"))
		other := sampleRevision("checkout-00001")
		other.ServiceID = "s2"
		if err := repo.Create(ctx, other); err != nil {
			t.Fatalf("Create for other service: %v", err)
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		repo := factory(t)
		_, err := repo.Get(context.Background(), "s1", "nonexistent")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Get: got %v, want ErrNotFound", err)
		}
	})

	t.Run("ListByService", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		_ = repo.Create(ctx, sampleRevision("checkout-00001"))
		_ = repo.Create(ctx, sampleRevision("checkout-00002"))
		other := sampleRevision("billing-00001")
		other.ServiceID = "s2"
		_ = repo.Create(ctx, other)

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
		_ = repo.Create(ctx, sampleRevision("checkout-00001"))
		_ = repo.Create(ctx, sampleRevision("checkout-00002"))

		if err := repo.DeleteByService(ctx, "s1"); err != nil {
			t.Fatalf("DeleteByService: %v", err)
		}
		got, _ := repo.ListByService(ctx, "s1")
		if len(got) != 0 {
			t.Fatalf("ListByService after delete: got %d, want 0", len(got))
		}
	})
}
