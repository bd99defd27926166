package sigma0

import "errors"

var (
	// ErrBadLevel indicates a level N < 1.
	ErrBadLevel = errors.New("sigma0: level must be >= 1")

	// ErrSingular indicates a candidate matrix with zero determinant.
	ErrSingular = errors.New("sigma0: matrix must be nonsingular")

	// ErrLowerLeft indicates that the level does not divide the lower-left
	// entry at some prime.
	ErrLowerLeft = errors.New("sigma0: level does not divide lower-left entry")

	// ErrNotUnit indicates an upper-left entry that is not a unit at a prime
	// dividing the level.
	ErrNotUnit = errors.New("sigma0: upper-left entry is not a unit at the level")
)
