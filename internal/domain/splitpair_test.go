package domain_test

import (
	"errors"
	"testing"

	"github.com/revshift/revshift-server/internal/domain"
)

func TestSplitPairs_MatchingSpecAndStatus(t *testing.T) {
	spec := []domain.SplitRecord{rev("rev-a", 60), rev("rev-b", 40)}
	status := []domain.SplitRecord{rev("rev-a", 60), rev("rev-b", 40)}

	pairs, err := domain.SplitPairs(spec, status, "rev-b")
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	if pairs[0].Key != domain.RevisionTarget("rev-a") {
		t.Errorf("pairs[0].Key = %s", pairs[0].Key)
	}
	if got := pairs[0].DisplayPercent(); got != "60%" {
		t.Errorf("DisplayPercent = %q, want 60%%", got)
	}
	if got := pairs[1].DisplayRevision(); got != "rev-b" {
		t.Errorf("DisplayRevision = %q, want rev-b", got)
	}
}

func TestSplitPairs_MissingStatusSide(t *testing.T) {
	spec := []domain.SplitRecord{rev("rev-a", 50), rev("rev-b", 50)}
	status := []domain.SplitRecord{rev("rev-a", 100)}

	pairs, err := domain.SplitPairs(spec, status, "rev-b")
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}

	b := pairs[1]
	if b.SpecPercent() != "50" {
		t.Errorf("SpecPercent = %q, want 50", b.SpecPercent())
	}
	if b.StatusPercent() != "-" {
		t.Errorf("StatusPercent = %q, want -", b.StatusPercent())
	}
	if got := b.DisplayPercent(); got != "50%  (currently -)" {
		t.Errorf("DisplayPercent = %q", got)
	}
}

func TestSplitPairs_LatestFoldedIntoConcreteStatus(t *testing.T) {
	// The platform reports latest traffic under the concrete revision
	// name only; the pair for latest adopts that status entry.
	spec := []domain.SplitRecord{latest(100)}
	status := []domain.SplitRecord{rev("rev-1", 100)}

	pairs, err := domain.SplitPairs(spec, status, "rev-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}
	p := pairs[0]
	if !p.Key.IsLatest() {
		t.Fatalf("Key = %s, want latest", p.Key)
	}
	if p.SpecPercent() != "100" || p.StatusPercent() != "100" {
		t.Errorf("percents = %s/%s, want 100/100", p.SpecPercent(), p.StatusPercent())
	}
	if got := p.DisplayRevision(); got != "LATEST (currently rev-1)" {
		t.Errorf("DisplayRevision = %q", got)
	}
}

func TestSplitPairs_CombinedStatusApportioned(t *testing.T) {
	// Spec routes to rev-1 both by name and through latest; the platform
	// reports one combined status entry under rev-1. The combined 100%
	// is apportioned: latest gets its spec share, the by-name pair gets
	// the rest.
	spec := []domain.SplitRecord{rev("rev-1", 60), latest(40)}
	status := []domain.SplitRecord{rev("rev-1", 100)}

	pairs, err := domain.SplitPairs(spec, status, "rev-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}

	byName, byLatest := pairs[0], pairs[1]
	if byName.Key != domain.RevisionTarget("rev-1") || !byLatest.Key.IsLatest() {
		t.Fatalf("pair order wrong: %s, %s", byName.Key, byLatest.Key)
	}
	if byLatest.StatusPercent() != "40" {
		t.Errorf("latest StatusPercent = %q, want 40", byLatest.StatusPercent())
	}
	if byName.StatusPercent() != "60" {
		t.Errorf("by-name StatusPercent = %q, want 60", byName.StatusPercent())
	}
}

func TestSplitPairs_LatestSortsLast(t *testing.T) {
	spec := []domain.SplitRecord{latest(10), rev("rev-z", 45), rev("rev-a", 45)}

	pairs, err := domain.SplitPairs(spec, nil, "rev-z")
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 3 {
		t.Fatalf("got %d pairs, want 3", len(pairs))
	}
	if pairs[0].Key != domain.RevisionTarget("rev-a") ||
		pairs[1].Key != domain.RevisionTarget("rev-z") ||
		!pairs[2].Key.IsLatest() {
		t.Fatalf("order = [%s %s %s]", pairs[0].Key, pairs[1].Key, pairs[2].Key)
	}
}

func TestSplitPairs_DuplicateTargetFails(t *testing.T) {
	spec := []domain.SplitRecord{rev("rev-a", 50), rev("rev-a", 50)}
	_, err := domain.SplitPairs(spec, nil, "")
	if !errors.Is(err, domain.ErrInvalidSplitState) {
		t.Fatalf("got %v, want ErrInvalidSplitState", err)
	}
}
