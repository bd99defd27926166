package dist

import "errors"

var (
	// ErrNotScalarMultiple is returned by FindScalar when no single scalar
	// carries the receiver onto the argument.
	ErrNotScalarMultiple = errors.New("dist: not a scalar multiple")

	// ErrZeroDistribution is returned by FindScalar when the receiver has no
	// usable moment to pin the scalar against.
	ErrZeroDistribution = errors.New("dist: self is zero")

	// ErrInsufficientPrecision is returned by FindScalar when the scalar is
	// only attainable below the requested precision.
	ErrInsufficientPrecision = errors.New("dist: result not determined to high enough precision")

	// ErrNotEnoughMoments indicates an operation asking for more moments
	// than the distribution carries.
	ErrNotEnoughMoments = errors.New("dist: not enough moments")

	// ErrNegativeWeight indicates a weight k < 0 where k >= 0 is required.
	ErrNegativeWeight = errors.New("dist: negative weight")

	// ErrExactValuationShift rejects a valuation shift on the exact
	// classical representation, whose p-adic bookkeeping is vacuous.
	ErrExactValuationShift = errors.New("dist: can not specify a valuation shift for an exact ring")

	// ErrNotIntegral rejects a moment with p in its denominator on a
	// non-classical parent; p-adic precision bookkeeping requires the
	// unscaled moments to sit in Z_p, with any p-power carried by ordp.
	ErrNotIntegral = errors.New("dist: moment has p in its denominator")

	// ErrMomentsTooLong indicates a bounded-representation moment list
	// exceeding the representable precision.
	ErrMomentsTooLong = errors.New("dist: moments too long")

	// ErrIndexOutOfRange indicates a moment index i >= N or i < 0.
	ErrIndexOutOfRange = errors.New("dist: moment index out of range")

	// ErrNonzeroFirstMoment rejects a difference-equation input without
	// total measure zero.
	ErrNonzeroFirstMoment = errors.New("dist: zeroth moment must be zero")

	// ErrZeroDeterminant rejects an acting matrix with determinant zero.
	ErrZeroDeterminant = errors.New("dist: zero determinant")

	// ErrPDividesA rejects an acting matrix whose upper-left entry is
	// divisible by p in the non-classical case.
	ErrPDividesA = errors.New("dist: p divides a")

	// ErrLevelDoesNotDivide rejects an acting matrix whose lower-left entry
	// is not divisible by Np in the non-classical case.
	ErrLevelDoesNotDivide = errors.New("dist: Np does not divide c")

	// ErrNotInvertible indicates a series denominator that is not a unit in
	// the truncated power-series ring.
	ErrNotInvertible = errors.New("dist: power series not invertible")

	// ErrUnsupportedOp indicates an operation invoked across mismatched
	// representations, or one only meaningful on the other representation.
	ErrUnsupportedOp = errors.New("dist: operation not supported on this representation")

	// ErrParamsMismatch indicates operands attached to different parents.
	ErrParamsMismatch = errors.New("dist: parameter sets differ")

	// ErrBadParams indicates an invalid parameter set.
	ErrBadParams = errors.New("dist: invalid parameters")
)
