package health

import "errors"

var (
	// ErrCheckFailed is returned by Evaluate when one or more checks fail.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout marks a check that did not finish before the probe timeout.
	ErrCheckTimeout = errors.New("health: check timeout")
)
