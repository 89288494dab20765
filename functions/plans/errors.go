package plans

import "errors"

var (
	// ErrNotFound is returned when a plan, day or exercise does not exist
	// for the caller, or does not belong to the given parent.
	ErrNotFound = errors.New("plans: not found")

	// ErrConflict is returned when a write collides with a concurrent one.
	ErrConflict = errors.New("plans: conflicting write")
)
