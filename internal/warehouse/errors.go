// Package warehouse defines the grid, charging station, and package domain
// types shared by the planner, robot, and model packages.
package warehouse

import "errors"

// Sentinel error kinds, per the error-handling design: validation and
// placement failures are reported to the caller with no state change.
var (
	// ErrValidation covers malformed inputs: out-of-range cells, missing fields.
	ErrValidation = errors.New("validation error")

	// ErrPlacementConflict covers an obstacle/station placement overlapping
	// a reserved cell (a robot start/goal, an existing obstacle or station).
	ErrPlacementConflict = errors.New("placement conflict")

	// ErrUnreachableGoal is returned when the planner cannot find a path.
	ErrUnreachableGoal = errors.New("unreachable goal")

	// ErrInvalidAssignment covers a package that is not waiting, or a robot
	// that is not idle or already carrying a package.
	ErrInvalidAssignment = errors.New("invalid assignment")
)
