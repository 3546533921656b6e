package domain

import "errors"

var (
	// ErrNotFound indicates that a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource with the same identity
	// already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidArgument indicates that a caller-provided value violates
	// a precondition.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidSplitState indicates that the current split allocation of
	// a service is malformed: percentages out of range, a sum other than
	// 100, or duplicate targets. This points at corrupt stored state, not
	// a caller mistake.
	ErrInvalidSplitState = errors.New("invalid split state")

	// ErrInvalidSplitSpec indicates that a caller-requested split
	// assignment is invalid: over 100% total, an out-of-range entry, or
	// under 100% with no remaining targets to absorb the rest.
	ErrInvalidSplitSpec = errors.New("invalid split specification")
)
