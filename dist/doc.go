// Package dist implements finite-precision p-adic distributions and the
// weight-k right action of integral 2x2 matrices on them.
//
// A distribution is a truncated moment sequence: N stored moments plus an
// integer valuation shift ordp, so that moment i equals p^ordp times the
// stored value, and in normalized form the stored value at index i is a
// canonical residue modulo p^(N-i). N is the relative precision and N+ordp
// the absolute precision (the filtration level to which the value is known).
//
// Two backing representations implement the same Distribution contract:
//
//   - DistVector keeps moments as exact rationals and works at arbitrary
//     precision (and in the exact classical Sym^k case, where the p-adic
//     bookkeeping is vacuous).
//   - DistLong keeps moments as native int64 residues and is chosen by the
//     factory whenever 7*p^precCap stays inside a signed 32-bit band, so
//     that every intermediate product fits an int64 without 128-bit help.
//
// The action of g = [a, b; c, d] is realized through an MxM acting matrix
// whose column j holds the first M coefficients of (a+cy)^k * s(y)^j with
// s(y) = (b+dy)/(a+cy); acting matrices are cached per coefficient tuple
// with amortized-doubling recompute and truncated views, and the cache is
// safe for concurrent use.
package dist
