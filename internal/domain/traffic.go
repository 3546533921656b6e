package domain

import (
	"fmt"
	"math"
	"sort"
)

// GetUpdatedSplits reallocates a service's traffic according to the
// requested assignments.
//
// The result includes every requested assignment verbatim. If the
// request assigns less than 100% of traffic, the remainder is spread
// over the currently-serving targets the request does not mention, in
// proportion to their current shares. Proportional scaling produces
// fractional percentages; these are rounded back to integers that sum
// exactly to 100 (see roundingCorrectionLess for the correction order).
// Targets that end up at 0% are dropped.
//
// Returns an error wrapping ErrInvalidSplitState if the current split
// list is malformed, or ErrInvalidSplitSpec if the request is invalid.
func GetUpdatedSplits(current []SplitRecord, requested map[TargetRef]int) ([]SplitRecord, error) {
	currentMap, err := SplitMapFromRecords(current)
	if err != nil {
		return nil, err
	}
	if err := validateCurrentSplits(currentMap); err != nil {
		return nil, err
	}

	unassigned := unassignedSplits(requested, currentMap)
	if err := validateRequestedSplits(requested, unassigned); err != nil {
		return nil, err
	}

	floats := make(map[TargetRef]float64, len(requested)+len(unassigned))
	for target, percent := range requested {
		floats[target] = float64(percent)
	}
	for target, percent := range redistributeUnassigned(requested, unassigned) {
		floats[target] = percent
	}

	return buildSplitList(RoundPercentages(floats)), nil
}

// ZeroLatestAssignment moves any traffic assigned to the latest-ready
// target onto the concrete revision that latest currently resolves to,
// merging with an existing allocation to that revision. This pins a
// rollout: the allocation stops floating with future deployments. If no
// traffic is assigned to latest, the split list is returned unchanged.
func ZeroLatestAssignment(current []SplitRecord, latestReadyRevision string) ([]SplitRecord, error) {
	m, err := SplitMapFromRecords(current)
	if err != nil {
		return nil, err
	}

	latest, ok := m[LatestTarget()]
	if !ok || latest == 0 {
		out := make([]SplitRecord, len(current))
		copy(out, current)
		return out, nil
	}
	if latestReadyRevision == "" {
		return nil, fmt.Errorf("%w: service has no latest ready revision to pin traffic to", ErrInvalidArgument)
	}

	delete(m, LatestTarget())
	m[RevisionTarget(latestReadyRevision)] += latest

	out := make([]SplitRecord, 0, len(m))
	for target, percent := range m {
		out = append(out, SplitRecord{Target: target, Percent: percent})
	}
	sort.Slice(out, func(i, j int) bool { return targetLess(out[i].Target, out[j].Target) })
	return out, nil
}

func validateCurrentSplits(current map[TargetRef]int) error {
	total := 0
	for target, percent := range current {
		if percent < 0 || percent > 100 {
			return fmt.Errorf("%w: current split for %s is %d%%, not between 0 and 100",
				ErrInvalidSplitState, target, percent)
		}
		total += percent
	}
	if total != 100 {
		return fmt.Errorf("%w: current split allocation of %d is not 100 percent",
			ErrInvalidSplitState, total)
	}
	return nil
}

// unassignedSplits returns the targets serving traffic now that the
// request does not mention. Zero-percent entries are excluded; they have
// nothing to scale, and excluding them means a non-empty result always
// has a non-zero total for redistributeUnassigned to divide by.
func unassignedSplits(requested, current map[TargetRef]int) map[TargetRef]int {
	result := make(map[TargetRef]int)
	for target, percent := range current {
		if percent == 0 {
			continue
		}
		if _, ok := requested[target]; !ok {
			result[target] = percent
		}
	}
	return result
}

func validateRequestedSplits(requested, unassigned map[TargetRef]int) error {
	total := 0
	for target, percent := range requested {
		if percent < 0 || percent > 100 {
			return fmt.Errorf("%w: split for %s is %d%%, not between 0 and 100",
				ErrInvalidSplitSpec, target, percent)
		}
		total += percent
	}
	if total > 100 {
		return fmt.Errorf("%w: over 100%% of traffic is specified", ErrInvalidSplitSpec)
	}
	if len(unassigned) == 0 && total < 100 {
		return fmt.Errorf("%w: every target with traffic is updated but 100%% of traffic has not been specified",
			ErrInvalidSplitSpec)
	}
	return nil
}

// redistributeUnassigned spreads the percentage the request leaves
// unassigned over the unassigned targets, proportional to each target's
// current share. The combined unassigned share scales to exactly fill
// the remainder while relative proportions are preserved.
func redistributeUnassigned(requested, unassigned map[TargetRef]int) map[TargetRef]float64 {
	remainder := 100
	for _, percent := range requested {
		remainder -= percent
	}
	if remainder == 0 {
		return map[TargetRef]float64{}
	}

	total := 0
	for _, percent := range unassigned {
		total += percent
	}

	result := make(map[TargetRef]float64, len(unassigned))
	for target, percent := range unassigned {
		result[target] = float64(percent) * float64(remainder) / float64(total)
	}
	return result
}

// RoundPercentages converts fractional percentages into integers whose
// sum equals the rounded sum of the inputs exactly. Every value is
// truncated, then the percentage points lost to truncation are handed
// back one each to the entries first in rounding-correction order.
func RoundPercentages(floats map[TargetRef]float64) map[TargetRef]int {
	rounded := make(map[TargetRef]int, len(floats))
	var sum float64
	for target, percent := range floats {
		rounded[target] = int(percent)
		sum += percent
	}

	loss := int(math.Round(sum))
	for _, percent := range rounded {
		loss -= percent
	}

	order := make([]splitCorrection, 0, len(floats))
	for target, percent := range floats {
		order = append(order, splitCorrection{target: target, percent: percent})
	}
	sort.Slice(order, func(i, j int) bool {
		return roundingCorrectionLess(order[i], order[j])
	})

	for _, entry := range order[:loss] {
		rounded[entry.target]++
	}
	return rounded
}

type splitCorrection struct {
	target  TargetRef
	percent float64
}

// roundingCorrectionLess orders entries by who receives a truncation
// correction first:
//
//  1. bigger fractional loss first (equivalently, ascending 1 - loss),
//  2. then smaller overall percentage first,
//  3. then target order, so exact ties resolve identically on every run.
func roundingCorrectionLess(a, b splitCorrection) bool {
	lossA := a.percent - math.Trunc(a.percent)
	lossB := b.percent - math.Trunc(b.percent)
	if lossA != lossB {
		return lossA > lossB
	}
	if a.percent != b.percent {
		return a.percent < b.percent
	}
	return targetLess(a.target, b.target)
}

// buildSplitList assembles the final ordered split list, dropping
// zero-percent targets.
func buildSplitList(percentages map[TargetRef]int) []SplitRecord {
	records := make([]SplitRecord, 0, len(percentages))
	for target, percent := range percentages {
		if percent == 0 {
			continue
		}
		records = append(records, SplitRecord{Target: target, Percent: percent})
	}
	sort.Slice(records, func(i, j int) bool { return targetLess(records[i].Target, records[j].Target) })
	return records
}
