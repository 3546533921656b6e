package domain

import (
	"fmt"
	"sort"
	"strconv"
)

// missingPercent is the human readable indicator for an absent percentage.
const missingPercent = "-"

// SplitPair pairs the declared and observed split for a single target.
//
// A service's traffic state has two sides: the assignments the caller
// declared (spec) and the assignments the platform reports as serving
// (status). The two differ during an update, or after a failed one, and
// either side can be missing when a target is being added or removed.
//
// The latest-ready revision needs special handling. The spec may route
// traffic to it twice, by concrete revision name and through the latest
// target, while the platform reports one combined status entry under the
// concrete name only. Both pairs then share that status record and a
// percent override apportions the combined figure between them.
type SplitPair struct {
	// Key identifies the revision this pair describes, by name or as
	// the latest target.
	Key TargetRef

	// Spec is the declared split for the target, nil if absent.
	Spec *SplitRecord

	// Status is the observed split for the target, nil if absent.
	Status *SplitRecord

	// LatestReadyRevision is the concrete revision the latest target
	// currently resolves to.
	LatestReadyRevision string

	statusPercentOverride *int
}

// SpecPercent returns the declared percentage, or "-" when the target
// has no spec entry.
func (p SplitPair) SpecPercent() string {
	if p.Spec == nil {
		return missingPercent
	}
	return strconv.Itoa(p.Spec.Percent)
}

// StatusPercent returns the observed percentage, or "-" when the target
// has no status entry. A combined latest status entry reports the
// apportioned share rather than the raw record value.
func (p SplitPair) StatusPercent() string {
	if p.statusPercentOverride != nil {
		return strconv.Itoa(*p.statusPercentOverride)
	}
	if p.Status == nil {
		return missingPercent
	}
	return strconv.Itoa(p.Status.Percent)
}

// DisplayPercent returns a human readable percentage, noting the
// observed value when it differs from the declared one.
func (p SplitPair) DisplayPercent() string {
	spec, status := p.SpecPercent(), p.StatusPercent()
	if spec == status {
		return formatPercent(status)
	}
	return fmt.Sprintf("%-4s (currently %s)", formatPercent(spec), formatPercent(status))
}

// DisplayRevision returns a human readable revision identifier, naming
// the concrete resolution of the latest target.
func (p SplitPair) DisplayRevision() string {
	if p.Key.IsLatest() {
		return fmt.Sprintf("%s (currently %s)", p.Key, p.LatestReadyRevision)
	}
	return p.Key.Revision
}

func formatPercent(percent string) string {
	if percent == missingPercent {
		return missingPercent
	}
	return percent + "%"
}

// SplitPairs merges the declared and observed split lists of a service
// into one pair per target, ordered with the latest target last. When
// the platform folds latest traffic into a combined status entry under
// the latest-ready revision's concrete name, that entry is shared by the
// by-name and latest pairs with its percent apportioned between them.
func SplitPairs(spec, status []SplitRecord, latestReadyRevision string) ([]SplitPair, error) {
	specCopy := make([]SplitRecord, len(spec))
	copy(specCopy, spec)
	statusCopy := make([]SplitRecord, len(status))
	copy(statusCopy, status)

	specMap := make(map[TargetRef]*SplitRecord, len(specCopy))
	for i := range specCopy {
		rec := &specCopy[i]
		if _, ok := specMap[rec.Target]; ok {
			return nil, fmt.Errorf("%w: duplicate target %s", ErrInvalidSplitState, rec.Target)
		}
		specMap[rec.Target] = rec
	}
	statusMap := make(map[TargetRef]*SplitRecord, len(statusCopy))
	for i := range statusCopy {
		rec := &statusCopy[i]
		if _, ok := statusMap[rec.Target]; ok {
			return nil, fmt.Errorf("%w: duplicate target %s", ErrInvalidSplitState, rec.Target)
		}
		statusMap[rec.Target] = rec
	}

	latestByName := RevisionTarget(latestReadyRevision)
	var combined *SplitRecord
	if _, specHasLatest := specMap[LatestTarget()]; specHasLatest && latestReadyRevision != "" {
		_, statusHasLatest := statusMap[LatestTarget()]
		if byName, ok := statusMap[latestByName]; !statusHasLatest && ok {
			statusMap[LatestTarget()] = byName
			if _, ok := specMap[latestByName]; ok {
				combined = byName
			} else {
				delete(statusMap, latestByName)
			}
		}
	}

	keys := make(map[TargetRef]struct{}, len(specMap)+len(statusMap))
	for key := range specMap {
		keys[key] = struct{}{}
	}
	for key := range statusMap {
		keys[key] = struct{}{}
	}

	pairs := make([]SplitPair, 0, len(keys))
	for key := range keys {
		pair := SplitPair{
			Key:                 key,
			Spec:                specMap[key],
			Status:              statusMap[key],
			LatestReadyRevision: latestReadyRevision,
		}
		if combined != nil && pair.Status == combined {
			byLatest := specMap[LatestTarget()].Percent
			if combined.Percent < byLatest {
				byLatest = combined.Percent
			}
			if key.IsLatest() {
				pair.statusPercentOverride = &byLatest
			} else {
				remainder := combined.Percent - byLatest
				pair.statusPercentOverride = &remainder
			}
		}
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool { return targetLess(pairs[i].Key, pairs[j].Key) })
	return pairs, nil
}
