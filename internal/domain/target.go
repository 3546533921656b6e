package domain

// TargetRef identifies a traffic target: either a concrete revision by
// name, or the latest-ready revision of the service. Exactly one form is
// active. Revision names are always lowercase, so the latest form can
// never collide with a real revision.
//
// TargetRef is comparable and is used as a map key throughout the split
// engine.
type TargetRef struct {
	Latest   bool   `json:"latest,omitempty"`
	Revision string `json:"revision,omitempty"`
}

// LatestTarget returns the TargetRef for the latest-ready revision.
func LatestTarget() TargetRef {
	return TargetRef{Latest: true}
}

// RevisionTarget returns the TargetRef for a concrete revision name.
func RevisionTarget(name string) TargetRef {
	return TargetRef{Revision: name}
}

// IsLatest reports whether the ref points at the latest-ready revision.
func (t TargetRef) IsLatest() bool {
	return t.Latest
}

// String returns a display form: the revision name, or "LATEST".
func (t TargetRef) String() string {
	if t.Latest {
		return "LATEST"
	}
	return t.Revision
}

// targetLess orders TargetRefs for split lists: concrete revision names
// sort lexicographically among themselves and the latest ref sorts
// strictly after every concrete name.
func targetLess(a, b TargetRef) bool {
	if a.Latest != b.Latest {
		return !a.Latest
	}
	return a.Revision < b.Revision
}
