// Package padic provides the exact and p-adic scalar arithmetic consumed by
// the distribution types: p-adic valuations of integers and rationals,
// unit-part extraction, prime-power tables, modular inverses, reduction of
// rationals to integer residues, and the Bernoulli and binomial generators
// used by the difference-equation solver.
//
// Everything here is pure big.Int / big.Rat arithmetic. Callers own the
// returned values; no function retains or mutates its arguments.
package padic
