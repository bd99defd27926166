package padic

import "errors"

var (
	// ErrNotPUnit indicates a denominator that is not invertible modulo the
	// requested prime power.
	ErrNotPUnit = errors.New("padic: denominator is not a unit modulo p^M")

	// ErrBadPrime indicates a prime argument that is not >= 2.
	ErrBadPrime = errors.New("padic: prime must be >= 2")

	// ErrNegativeIndex indicates a negative table index (Bernoulli, binomial
	// or prime-power requests).
	ErrNegativeIndex = errors.New("padic: negative index")
)
