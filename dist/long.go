package dist

import (
	"fmt"
	"math/big"

	"padic-distributions/padic"
	"padic-distributions/sigma0"
)

// DistLong is the bounded representation: moments as native int64 residues.
// Usable only when the parent predicate holds, which pins p^precCap below
// 2^31/7; every product of two in-band values then fits an int64, so
// overflow is controlled by banding rather than wide arithmetic.
//
// Entries drift outside [0, p^(N-i)) between operations; QuasiNormalize
// pulls back only the entries that left the signed safety band, while
// Normalize reduces every entry to its canonical residue.
type DistLong struct {
	par     *Params
	moments []int64
	ordp    int
}

// NewLong builds a bounded-representation distribution. The moment slice is
// copied. Fails when the parent cannot back moments with native integers or
// the list exceeds the representable precision.
func NewLong(par *Params, moments []int64, ordp int) (*DistLong, error) {
	if !par.UseBounded() {
		return nil, fmt.Errorf("parent requires the generic representation: %w", ErrUnsupportedOp)
	}
	if len(moments) > par.PrecCap {
		return nil, fmt.Errorf("%d moments with cap %d: %w", len(moments), par.PrecCap, ErrMomentsTooLong)
	}
	ms := make([]int64, len(moments))
	copy(ms, moments)
	d := &DistLong{par: par, moments: ms, ordp: ordp}
	d.QuasiNormalize()
	return d, nil
}

func (d *DistLong) Params() *Params { return d.par }

func (d *DistLong) Ordp() int { return d.ordp }

func (d *DistLong) PrecisionRelative() int { return len(d.moments) }

func (d *DistLong) PrecisionAbsolute() int {
	if d.isCanonicalZero() {
		return OrdpInfinite
	}
	return len(d.moments) + d.ordp
}

func (d *DistLong) isCanonicalZero() bool { return d.ordp == OrdpInfinite }

// CanonicalZeroLong returns the unique additive zero in bounded form.
func CanonicalZeroLong(par *Params) *DistLong {
	return &DistLong{par: par, ordp: OrdpInfinite}
}

func (d *DistLong) Clone() Distribution {
	ms := make([]int64, len(d.moments))
	copy(ms, d.moments)
	return &DistLong{par: d.par, moments: ms, ordp: d.ordp}
}

func (d *DistLong) Moment(i int) (*big.Rat, error) {
	u, err := d.UnscaledMoment(i)
	if err != nil {
		return nil, err
	}
	if d.ordp == 0 {
		return u, nil
	}
	return u.Mul(u, d.par.pPowRat(d.ordp)), nil
}

func (d *DistLong) UnscaledMoment(i int) (*big.Rat, error) {
	if i < 0 || i >= len(d.moments) {
		return nil, fmt.Errorf("index %d of %d: %w", i, len(d.moments), ErrIndexOutOfRange)
	}
	return new(big.Rat).SetInt64(d.moments[i]), nil
}

// QuasiNormalize is the cheap amortized overflow fix: it reduces only the
// entries that drifted outside the signed safety band, leaving in-band
// entries untouched. Run before any operation whose accumulation could
// overflow.
func (d *DistLong) QuasiNormalize() *DistLong {
	n := len(d.moments)
	for i, m := range d.moments {
		if m >= overflowBound || m <= underflowBound {
			q := d.par.ppow[n-i]
			m %= q
			if m < 0 {
				m += q
			}
			d.moments[i] = m
		}
	}
	return d
}

// Normalize reduces every entry to its canonical residue in [0, p^(N-i)).
// Unlike the generic representation it never refactors ordp.
func (d *DistLong) Normalize() Distribution {
	if d.isCanonicalZero() {
		return d
	}
	n := len(d.moments)
	for i, m := range d.moments {
		q := d.par.ppow[n-i]
		m %= q
		if m < 0 {
			m += q
		}
		d.moments[i] = m
	}
	return d
}

func (d *DistLong) Add(other Distribution) (Distribution, error) {
	return d.addsub(other, false)
}

func (d *DistLong) Sub(other Distribution) (Distribution, error) {
	return d.addsub(other, true)
}

func (d *DistLong) addsub(other Distribution, negate bool) (Distribution, error) {
	o, ok := other.(*DistLong)
	if !ok {
		return nil, fmt.Errorf("mixing representations: %w", ErrUnsupportedOp)
	}
	if !d.par.equal(o.par) {
		return nil, ErrParamsMismatch
	}
	if d.isCanonicalZero() {
		if negate {
			return o.Scale(big.NewRat(-1, 1))
		}
		return o.Clone(), nil
	}
	if o.isCanonicalZero() {
		return d.Clone(), nil
	}
	d.QuasiNormalize()
	o.QuasiNormalize()
	m := d.ordp
	if o.ordp < m {
		m = o.ordp
	}
	aprec := d.PrecisionAbsolute()
	if o.PrecisionAbsolute() < aprec {
		aprec = o.PrecisionAbsolute()
	}
	rprec := aprec - m
	if rprec < 0 {
		rprec = 0
	}
	res := make([]int64, rprec)
	d.accumulate(res, m, 1)
	if negate {
		o.accumulate(res, m, -1)
	} else {
		o.accumulate(res, m, 1)
	}
	return &DistLong{par: d.par, moments: res, ordp: m}, nil
}

// accumulate adds sign * (p^(ordp-m) * moments) into res. The shifted side
// masks each entry against the shrunken target length one index at a time,
// so the product p^diff * (entry mod p^(L-diff-i)) never exceeds p^(L-i)
// before the write.
func (d *DistLong) accumulate(res []int64, m int, sign int64) {
	L := len(res)
	diff := d.ordp - m
	if diff == 0 {
		n := len(d.moments)
		if L < n {
			n = L
		}
		for i := 0; i < n; i++ {
			res[i] += sign * d.moments[i]
		}
		return
	}
	if diff >= L {
		return // shifted entirely out of the overlap window
	}
	pd := d.par.ppow[diff]
	n := len(d.moments)
	if L-diff < n {
		n = L - diff
	}
	for i := 0; i < n; i++ {
		q := d.par.ppow[L-diff-i]
		mi := d.moments[i] % q
		if mi < 0 {
			mi += q
		}
		res[i] += sign * pd * mi
	}
}

func (d *DistLong) Scale(c *big.Rat) (Distribution, error) {
	if c.Sign() == 0 {
		return CanonicalZeroLong(d.par), nil
	}
	if d.isCanonicalZero() {
		return d.Clone(), nil
	}
	out := d.Clone().(*DistLong)
	out.QuasiNormalize()
	n := len(out.moments)
	u, v := padic.RatUnitPart(c, d.par.P)
	ub, err := padic.RatMod(u, d.par.pPow(n))
	if err != nil {
		return nil, fmt.Errorf("scalar %s: %w", c.RatString(), err)
	}
	u64 := ub.Int64()
	for i := range out.moments {
		q := d.par.ppow[n-i]
		mi := out.moments[i] % q
		if mi < 0 {
			mi += q
		}
		out.moments[i] = (mi * (u64 % q)) % q
	}
	out.ordp += v
	return out, nil
}

func (d *DistLong) Valuation() int {
	if d.isCanonicalZero() || len(d.moments) == 0 {
		return OrdpInfinite
	}
	n := len(d.moments)
	minv := padic.ValInfinite
	for i, m := range d.moments {
		v := padic.Valuation64(m, d.par.P)
		if v > n-i {
			v = n - i
		}
		if v < minv {
			minv = v
		}
	}
	return d.ordp + minv
}

func (d *DistLong) DiagonalValuation() int {
	if d.isCanonicalZero() || len(d.moments) == 0 {
		return OrdpInfinite
	}
	minv := padic.ValInfinite
	for i, m := range d.moments {
		v := padic.Valuation64(m, d.par.P)
		if v == padic.ValInfinite {
			continue
		}
		if v+i < minv {
			minv = v + i
		}
	}
	if minv == padic.ValInfinite {
		return OrdpInfinite
	}
	return d.ordp + minv
}

func (d *DistLong) IsZero() bool {
	for _, m := range d.moments {
		if m != 0 {
			return false
		}
	}
	return true
}

func (d *DistLong) IsZeroToPrecision(M int) bool {
	n := len(d.moments)
	for i, m := range d.moments {
		e := M - i
		if n-i < e {
			e = n - i
		}
		if e <= 0 {
			continue
		}
		if m%d.par.ppow[e] != 0 {
			return false
		}
	}
	return true
}

func (d *DistLong) ReducePrecision(M int) (Distribution, error) {
	if M < 0 || M > len(d.moments) {
		return nil, fmt.Errorf("reduce to %d of %d: %w", M, len(d.moments), ErrNotEnoughMoments)
	}
	ms := make([]int64, M)
	copy(ms, d.moments[:M])
	return &DistLong{par: d.par, moments: ms, ordp: d.ordp}, nil
}

func (d *DistLong) Compare(other Distribution) (int, error) {
	o, ok := other.(*DistLong)
	if !ok {
		return 0, fmt.Errorf("mixing representations: %w", ErrUnsupportedOp)
	}
	d.Normalize()
	o.Normalize()
	return d.toVector().Compare(o.toVector())
}

func (d *DistLong) FindScalar(other Distribution, M int, check bool) (*big.Rat, error) {
	o, ok := other.(*DistLong)
	if !ok {
		return nil, fmt.Errorf("mixing representations: %w", ErrUnsupportedOp)
	}
	return d.toVector().FindScalar(o.toVector(), M, check)
}

func (d *DistLong) Specialize() (Distribution, error) {
	return d.toVector().Specialize()
}

func (d *DistLong) Lift(target *Params, M int) (Distribution, error) {
	return d.toVector().Lift(target, M)
}

// SolveDiffEqn runs the rational solver and folds the result back into
// bounded form; the solution's residues stay inside the parent's band.
func (d *DistLong) SolveDiffEqn() (Distribution, error) {
	sol, err := d.toVector().SolveDiffEqn()
	if err != nil {
		return nil, err
	}
	return d.fromVector(sol.(*DistVector))
}

func (d *DistLong) ActRight(g sigma0.Element) (Distribution, error) {
	return d.par.Action().Apply(d, g)
}

// toVector lifts the stored residues into the generic representation.
func (d *DistLong) toVector() *DistVector {
	ms := make([]*big.Rat, len(d.moments))
	for i, m := range d.moments {
		ms[i] = new(big.Rat).SetInt64(m)
	}
	return &DistVector{par: d.par, moments: ms, ordp: d.ordp}
}

// fromVector folds a normalized generic value back into bounded form. Only
// sound for values whose residues fit the parent's band, which holds for
// everything produced from bounded inputs.
func (d *DistLong) fromVector(v *DistVector) (*DistLong, error) {
	if v.isCanonicalZero() {
		return CanonicalZeroLong(d.par), nil
	}
	n := len(v.moments)
	ms := make([]int64, n)
	for i, m := range v.moments {
		if !m.IsInt() {
			res, err := padic.RatMod(m, d.par.pPow(n-i))
			if err != nil {
				return nil, err
			}
			ms[i] = res.Int64()
			continue
		}
		ms[i] = m.Num().Int64()
	}
	return &DistLong{par: d.par, moments: ms, ordp: v.ordp}, nil
}
