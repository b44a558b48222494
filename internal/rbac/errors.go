package rbac

import "errors"

var (
	// ErrCycle is returned when a manager assignment would make a user its
	// own transitive manager.
	ErrCycle = errors.New("manager assignment would create a cycle")
	// ErrNotFound is returned when a referenced user does not exist.
	ErrNotFound = errors.New("user not found")
)

const (
	errSelfManager        = "user cannot be their own manager"
	errSubordinateManager = "cannot assign a subordinate as manager"
)
