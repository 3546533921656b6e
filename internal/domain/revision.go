package domain

import (
	"fmt"
	"strings"
	"time"
)

// Revision is an immutable, named, deployed version of a service.
type Revision struct {
	Name      string
	ServiceID ServiceID
	Ready     bool
	CreatedAt time.Time
}

// ValidateRevisionName rejects names that could collide with the latest
// target's display form or break sorting: names must be non-empty and
// lowercase.
func ValidateRevisionName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: revision name is required", ErrInvalidArgument)
	}
	if name != strings.ToLower(name) {
		return fmt.Errorf("%w: revision name %q must be lowercase", ErrInvalidArgument, name)
	}
	return nil
}
