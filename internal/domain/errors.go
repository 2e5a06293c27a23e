package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth is returned when no usable session can be obtained. It is the
	// only error allowed to abort a run.
	ErrAuth = errors.New("no usable session")

	// ErrDiscoveryEmpty is returned when a query yields no candidates.
	ErrDiscoveryEmpty = errors.New("query yielded no candidates")

	// ErrNavigationTimeout is returned when a page load exceeds its budget.
	ErrNavigationTimeout = errors.New("navigation timed out")

	// ErrNotInteractive is returned when manual login is needed but no
	// terminal is attached.
	ErrNotInteractive = errors.New("interactive login unavailable")
)

// UnitError is a failure of one unit of work (one item's extraction).
type UnitError struct {
	Identifier string
	Err        error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("item %s: %v", e.Identifier, e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// PersistError is a failed cache or output write. It never aborts a run.
type PersistError struct {
	Target string
	Err    error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Target, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
