package dist

import (
	"fmt"
	"math/big"

	"padic-distributions/padic"
	"padic-distributions/sigma0"
)

// Distribution is the common contract of both moment-sequence
// representations. Arithmetic methods return new values; Normalize (and the
// bounded QuasiNormalize) are the one sanctioned in-place operation and
// rewrite the receiver's owned storage without changing the value it
// denotes. Values must not be mutated while shared across goroutines.
type Distribution interface {
	// Params returns the parent parameter set.
	Params() *Params
	// Ordp returns the valuation shift (OrdpInfinite for the canonical zero).
	Ordp() int
	// PrecisionRelative returns N, the number of stored moments.
	PrecisionRelative() int
	// PrecisionAbsolute returns N + ordp, the filtration level to which the
	// distribution is known.
	PrecisionAbsolute() int
	// Moment returns p^ordp times the stored moment at index i.
	Moment(i int) (*big.Rat, error)
	// UnscaledMoment returns the stored moment at index i without the
	// p^ordp factor.
	UnscaledMoment(i int) (*big.Rat, error)
	// Normalize rewrites the receiver into normalized form in place and
	// returns it. A no-op on the exact classical representation.
	Normalize() Distribution
	// Add returns the sum, aligned to the coarser ordp and the smaller
	// absolute precision.
	Add(other Distribution) (Distribution, error)
	// Sub returns the difference under the same alignment as Add.
	Sub(other Distribution) (Distribution, error)
	// Scale multiplies every moment by c, folding v_p(c) into ordp. An
	// exact zero c yields the canonical zero.
	Scale(c *big.Rat) (Distribution, error)
	// Compare normalizes both operands in place, aligns them as Add does
	// and compares lexicographically over the overlapping precision.
	Compare(other Distribution) (int, error)
	// ReducePrecision keeps the first M moments at unchanged ordp.
	ReducePrecision(M int) (Distribution, error)
	// IsZero reports whether every stored moment is exactly zero.
	IsZero() bool
	// IsZeroToPrecision reports whether each moment vanishes modulo
	// p^(M-i), bounded by the precision actually recorded per moment.
	IsZeroToPrecision(M int) bool
	// Valuation returns min_i(ordp + v_p(moment i)), each term bounded by
	// the precision recorded for that moment; the bound makes the result an
	// over- or under-estimate of the true valuation, which downstream
	// consumers rely on.
	Valuation() int
	// DiagonalValuation returns min_i(ordp + i + v_p(moment i)), the
	// filtration step the distribution certifiably lies in.
	DiagonalValuation() int
	// FindScalar solves other = self * alpha, to precision M when M > 0.
	FindScalar(other Distribution, M int, check bool) (*big.Rat, error)
	// Specialize maps the first k+1 moments onto the exact classical space.
	Specialize() (Distribution, error)
	// Lift embeds the first k+1 moments as a degree-k polynomial into an
	// M-moment distribution of the target parent, padding with zeros.
	Lift(target *Params, M int) (Distribution, error)
	// SolveDiffEqn solves the difference equation for a total-measure-zero
	// input, tracking the precision lost to p-power denominators.
	SolveDiffEqn() (Distribution, error)
	// ActRight applies the parent's weight-k action of g on the right.
	ActRight(g sigma0.Element) (Distribution, error)
	// Clone returns a deep copy sharing no storage with the receiver.
	Clone() Distribution
}

// FromRatMoments builds a distribution from explicit moments, selecting the
// representation with the parent's predicate. Moments beyond the precision
// cap are rejected.
func FromRatMoments(par *Params, moments []*big.Rat, ordp int) (Distribution, error) {
	if len(moments) > par.PrecCap {
		return nil, fmt.Errorf("%d moments with cap %d: %w", len(moments), par.PrecCap, ErrMomentsTooLong)
	}
	if par.UseBounded() {
		n := len(moments)
		ms := make([]int64, n)
		for i, r := range moments {
			res, err := padic.RatMod(r, par.pPow(n-i))
			if err != nil {
				return nil, fmt.Errorf("moment %d: %w", i, err)
			}
			ms[i] = res.Int64()
		}
		return NewLong(par, ms, ordp)
	}
	return NewVector(par, moments, ordp)
}

// FromInt64Moments is FromRatMoments for plain integer moments.
func FromInt64Moments(par *Params, moments []int64, ordp int) (Distribution, error) {
	rs := make([]*big.Rat, len(moments))
	for i, m := range moments {
		rs[i] = new(big.Rat).SetInt64(m)
	}
	return FromRatMoments(par, rs, ordp)
}

// FromScalar builds the M-moment distribution with zeroth moment c and the
// rest zero.
func FromScalar(par *Params, c *big.Rat, M int) (Distribution, error) {
	ms := make([]*big.Rat, M)
	for i := range ms {
		ms[i] = new(big.Rat)
	}
	if M > 0 {
		ms[0].Set(c)
	}
	return FromRatMoments(par, ms, 0)
}

// Zero builds the M-moment zero distribution.
func Zero(par *Params, M int) (Distribution, error) {
	return FromScalar(par, new(big.Rat), M)
}
