// Package sigma0 implements the monoid Sigma0(N) of integral 2x2 matrices
// [a, b; c, d] with nonzero determinant, a a unit at every prime dividing N
// and c divisible by N. These are exactly the matrices whose weight-k right
// action on p-adic distributions is defined.
//
// Elements carry their coefficients as a plain comparable Tuple, which also
// serves as the acting-matrix cache key: two elements with equal tuples act
// identically, and no mutability or identity bookkeeping is needed.
package sigma0
