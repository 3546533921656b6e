package domain

import "fmt"

// SplitRecord pairs a traffic target with an integer percentage of
// traffic in [0, 100]. A service's split list covers 100% of traffic
// with at most one record per target.
type SplitRecord struct {
	Target  TargetRef `json:"target"`
	Percent int       `json:"percent"`
}

// SplitMapFromRecords converts a split list into a map keyed by target.
// A list with duplicate targets is rejected as invalid state rather than
// silently keeping the last occurrence.
func SplitMapFromRecords(records []SplitRecord) (map[TargetRef]int, error) {
	m := make(map[TargetRef]int, len(records))
	for _, rec := range records {
		if _, ok := m[rec.Target]; ok {
			return nil, fmt.Errorf("%w: duplicate target %s", ErrInvalidSplitState, rec.Target)
		}
		m[rec.Target] = rec.Percent
	}
	return m, nil
}
