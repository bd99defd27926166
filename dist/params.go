package dist

import (
	"fmt"
	"math/big"
	"sync"

	"padic-distributions/padic"
)

// Tuning constants for the bounded representation. The quasi-normalize band
// keeps every residue below 2^31 so that any product of a residue with a
// p^M residue stays inside a signed 64-bit word, and the factory predicate
// 7*p^precCap < 2^31 leaves headroom for the accumulation in quasi-normalized
// additions.
const (
	overflowBound       int64 = 1 << 31
	underflowBound      int64 = -(1 << 31)
	boundedSafetyFactor int64 = 7
	maxBoundedMoments         = 100
)

// OrdpInfinite is the sentinel ordp of the canonical additive zero, which
// is known to every filtration level regardless of stored moment count.
const OrdpInfinite = padic.ValInfinite

// Params describes the parent of a family of distributions: the prime p,
// the weight k, the precision cap, and whether the parent is the exact
// classical Sym^k space (no p-adic bookkeeping) or sits over a field base.
type Params struct {
	P         int64
	K         int
	PrecCap   int
	Classical bool
	FieldBase bool

	ppow []int64 // p^0..p^PrecCap, present iff the bounded predicate holds

	actOnce sync.Once
	act     *WeightKAction
}

// NewParams builds a non-classical (overconvergent) parameter set for a
// prime p, weight k and precision cap M >= 1.
func NewParams(p int64, k, precCap int) (*Params, error) {
	if precCap < 1 {
		return nil, fmt.Errorf("precision cap %d: %w", precCap, ErrBadParams)
	}
	if p < 2 || !big.NewInt(p).ProbablyPrime(20) {
		return nil, fmt.Errorf("p = %d is not prime: %w", p, ErrBadParams)
	}
	par := &Params{P: p, K: k, PrecCap: precCap}
	if boundedFits(p, precCap) {
		par.ppow = padic.PowTable(p, precCap)
	}
	return par, nil
}

// NewFieldParams builds a non-classical parameter set over a field base,
// which always selects the generic representation.
func NewFieldParams(p int64, k, precCap int) (*Params, error) {
	par, err := NewParams(p, k, precCap)
	if err != nil {
		return nil, err
	}
	par.FieldBase = true
	par.ppow = nil
	return par, nil
}

// NewClassical builds the exact weight-k Sym^k parameter set. The prime is
// retained for specialization bookkeeping but all p-adic reduction is
// vacuous.
func NewClassical(p int64, k int) (*Params, error) {
	if k < 0 {
		return nil, ErrNegativeWeight
	}
	return &Params{P: p, K: k, PrecCap: k + 1, Classical: true}, nil
}

// UseBounded reports whether the factory picks the bounded int64
// representation: non-classical, non-field base, and 7*p^precCap inside the
// signed 32-bit band.
func (par *Params) UseBounded() bool {
	return !par.Classical && !par.FieldBase && par.ppow != nil
}

func boundedFits(p int64, precCap int) bool {
	if precCap > maxBoundedMoments {
		return false
	}
	bound := new(big.Int).Exp(big.NewInt(p), big.NewInt(int64(precCap)), nil)
	bound.Mul(bound, big.NewInt(boundedSafetyFactor))
	return bound.Cmp(big.NewInt(overflowBound)) < 0
}

// Specialized returns the exact classical parameter set this parent
// specializes to.
func (par *Params) Specialized() (*Params, error) {
	return NewClassical(par.P, par.K)
}

// Action returns the parent's default weight-k action (no twist, default
// tuplegen), built lazily and shared by every distribution of the parent.
func (par *Params) Action() *WeightKAction {
	par.actOnce.Do(func() {
		act, err := NewWeightKAction(par)
		if err != nil {
			// only reachable for k < 0, where ActRight has no meaning
			panic(err)
		}
		par.act = act
	})
	return par.act
}

func (par *Params) equal(other *Params) bool {
	if par == other {
		return true
	}
	return par.P == other.P && par.K == other.K && par.PrecCap == other.PrecCap &&
		par.Classical == other.Classical && par.FieldBase == other.FieldBase
}

// pPow returns p^e as a big integer (e >= 0).
func (par *Params) pPow(e int) *big.Int {
	return padic.Pow(par.P, e)
}

// pPowRat returns p^e as a rational, for any sign of e.
func (par *Params) pPowRat(e int) *big.Rat {
	if e >= 0 {
		return new(big.Rat).SetInt(par.pPow(e))
	}
	return new(big.Rat).SetFrac(big.NewInt(1), par.pPow(-e))
}
