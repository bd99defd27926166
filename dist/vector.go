package dist

import (
	"fmt"
	"math/big"

	"padic-distributions/padic"
	"padic-distributions/sigma0"
)

// DistVector is the generic-ring representation: exact rational moments at
// arbitrary precision. In normalized form the stored moment at index i is
// an integer residue in [0, p^(N-i)); in the exact classical case moments
// stay arbitrary rationals and ordp is pinned to zero.
type DistVector struct {
	par     *Params
	moments []*big.Rat
	ordp    int
}

// NewVector builds a generic-representation distribution from explicit
// moments. nil moment entries read as zero. On a non-classical parent each
// moment must be p-integral; a p-power denominator belongs in ordp. The
// moment slice is copied.
func NewVector(par *Params, moments []*big.Rat, ordp int) (*DistVector, error) {
	if par.Classical && ordp != 0 {
		return nil, ErrExactValuationShift
	}
	ms := make([]*big.Rat, len(moments))
	for i, m := range moments {
		if m == nil {
			ms[i] = new(big.Rat)
			continue
		}
		if !par.Classical && !padic.RatIsIntegral(m, par.P) {
			return nil, fmt.Errorf("moment %d = %s: %w", i, m.RatString(), ErrNotIntegral)
		}
		ms[i] = new(big.Rat).Set(m)
	}
	return &DistVector{par: par, moments: ms, ordp: ordp}, nil
}

func (d *DistVector) Params() *Params { return d.par }

func (d *DistVector) Ordp() int { return d.ordp }

func (d *DistVector) PrecisionRelative() int { return len(d.moments) }

func (d *DistVector) PrecisionAbsolute() int {
	if d.isCanonicalZero() {
		return OrdpInfinite
	}
	return len(d.moments) + d.ordp
}

func (d *DistVector) isCanonicalZero() bool { return d.ordp == OrdpInfinite }

func (d *DistVector) setCanonicalZero() {
	d.moments = nil
	d.ordp = OrdpInfinite
}

// CanonicalZero returns the unique additive zero of the parent.
func CanonicalZero(par *Params) *DistVector {
	return &DistVector{par: par, ordp: OrdpInfinite}
}

func (d *DistVector) Clone() Distribution {
	ms := make([]*big.Rat, len(d.moments))
	for i, m := range d.moments {
		ms[i] = new(big.Rat).Set(m)
	}
	return &DistVector{par: d.par, moments: ms, ordp: d.ordp}
}

func (d *DistVector) Moment(i int) (*big.Rat, error) {
	u, err := d.UnscaledMoment(i)
	if err != nil {
		return nil, err
	}
	if d.ordp == 0 {
		return u, nil
	}
	return u.Mul(u, d.par.pPowRat(d.ordp)), nil
}

func (d *DistVector) UnscaledMoment(i int) (*big.Rat, error) {
	if i < 0 || i >= len(d.moments) {
		return nil, fmt.Errorf("index %d of %d: %w", i, len(d.moments), ErrIndexOutOfRange)
	}
	return new(big.Rat).Set(d.moments[i]), nil
}

// Normalize reduces moment i into [0, p^(N-i)), then factors the value's
// p-valuation shift out of the moments and into ordp. A value whose reduced
// moments all vanish collapses to the canonical zero. No-op for the exact
// classical case.
func (d *DistVector) Normalize() Distribution {
	if d.par.Classical {
		return d
	}
	// a window cap reached through a zero moment can hide a further shift,
	// so the shrink repeats until the minimum valuation sits at zero
	for {
		if d.isCanonicalZero() || len(d.moments) == 0 {
			return d
		}
		n := len(d.moments)
		allZero := true
		for i := range d.moments {
			r := d.mustResidue(d.moments[i], n-i)
			if r.Sign() != 0 {
				allZero = false
			}
			d.moments[i] = new(big.Rat).SetInt(r)
		}
		if allZero {
			d.setCanonicalZero()
			return d
		}
		s := d.Valuation() - d.ordp
		if s <= 0 {
			return d
		}
		ps := d.par.pPow(s)
		n2 := n - s
		ms := make([]*big.Rat, n2)
		for i := 0; i < n2; i++ {
			q := new(big.Int).Quo(d.moments[i].Num(), ps)
			ms[i] = new(big.Rat).SetInt(padic.Mod(q, d.par.pPow(n2-i)))
		}
		d.moments = ms
		d.ordp += s
	}
}

// mustResidue reduces a moment modulo p^e. The constructors reject non
// p-integral moments and every operation preserves p-integrality, so a
// non-unit denominator here means corrupted state and panics.
func (d *DistVector) mustResidue(r *big.Rat, e int) *big.Int {
	if e <= 0 {
		return new(big.Int)
	}
	res, err := padic.RatMod(r, d.par.pPow(e))
	if err != nil {
		panic(fmt.Sprintf("dist: moment %s not p-integral: %v", r.RatString(), err))
	}
	return res
}

func (d *DistVector) Valuation() int {
	if d.isCanonicalZero() || len(d.moments) == 0 {
		return OrdpInfinite
	}
	n := len(d.moments)
	minv := padic.ValInfinite
	for i, m := range d.moments {
		v := padic.RatValuation(m, d.par.P)
		if !d.par.Classical && v > n-i {
			v = n - i
		}
		if v < minv {
			minv = v
		}
	}
	if minv == padic.ValInfinite {
		return OrdpInfinite
	}
	return d.ordp + minv
}

func (d *DistVector) DiagonalValuation() int {
	if d.isCanonicalZero() || len(d.moments) == 0 {
		return OrdpInfinite
	}
	minv := padic.ValInfinite
	for i, m := range d.moments {
		v := padic.RatValuation(m, d.par.P)
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

func (d *DistVector) Add(other Distribution) (Distribution, error) {
	return d.addsub(other, false)
}

func (d *DistVector) Sub(other Distribution) (Distribution, error) {
	return d.addsub(other, true)
}

func (d *DistVector) addsub(other Distribution, negate bool) (Distribution, error) {
	o, ok := other.(*DistVector)
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
	res := make([]*big.Rat, rprec)
	for i := 0; i < rprec; i++ {
		res[i] = d.shifted(i, m)
		b := o.shifted(i, m)
		if negate {
			res[i].Sub(res[i], b)
		} else {
			res[i].Add(res[i], b)
		}
	}
	return &DistVector{par: d.par, moments: res, ordp: m}, nil
}

// shifted returns moment i scaled from the receiver's ordp down to the
// common ordp m, zero when the index is beyond the stored moments.
func (d *DistVector) shifted(i, m int) *big.Rat {
	if i >= len(d.moments) {
		return new(big.Rat)
	}
	r := new(big.Rat).Set(d.moments[i])
	if diff := d.ordp - m; diff != 0 {
		r.Mul(r, d.par.pPowRat(diff))
	}
	return r
}

func (d *DistVector) Scale(c *big.Rat) (Distribution, error) {
	if c.Sign() == 0 {
		return CanonicalZero(d.par), nil
	}
	if d.isCanonicalZero() {
		return d.Clone(), nil
	}
	out := d.Clone().(*DistVector)
	if d.par.Classical {
		for i := range out.moments {
			out.moments[i].Mul(out.moments[i], c)
		}
		return out, nil
	}
	u, v := padic.RatUnitPart(c, d.par.P)
	for i := range out.moments {
		out.moments[i].Mul(out.moments[i], u)
	}
	out.ordp += v
	return out, nil
}

func (d *DistVector) Compare(other Distribution) (int, error) {
	o, ok := other.(*DistVector)
	if !ok {
		return 0, fmt.Errorf("mixing representations: %w", ErrUnsupportedOp)
	}
	if !d.par.equal(o.par) {
		return 0, ErrParamsMismatch
	}
	d.Normalize()
	o.Normalize()
	za := d.isCanonicalZero() || len(d.moments) == 0
	zb := o.isCanonicalZero() || len(o.moments) == 0
	if za && zb {
		return 0, nil
	}
	m := OrdpInfinite
	if !za {
		m = d.ordp
	}
	if !zb && o.ordp < m {
		m = o.ordp
	}
	aprec := OrdpInfinite
	if !za {
		aprec = d.PrecisionAbsolute()
	}
	if !zb && o.PrecisionAbsolute() < aprec {
		aprec = o.PrecisionAbsolute()
	}
	overlap := aprec - m
	for i := 0; i < overlap; i++ {
		ai := d.alignedResidue(i, m, overlap, za)
		bi := o.alignedResidue(i, m, overlap, zb)
		if c := ai.Cmp(bi); c != 0 {
			return c, nil
		}
	}
	return 0, nil
}

// alignedResidue returns moment i shifted to the common ordp m and, in the
// non-classical case, reduced modulo p^(L-i) — the precision both operands
// are known to after alignment.
func (d *DistVector) alignedResidue(i, m, L int, zero bool) *big.Rat {
	if zero {
		return new(big.Rat)
	}
	r := d.shifted(i, m)
	if d.par.Classical {
		return r
	}
	return new(big.Rat).SetInt(d.mustResidue(r, L-i))
}

func (d *DistVector) ReducePrecision(M int) (Distribution, error) {
	if M < 0 || M > len(d.moments) {
		return nil, fmt.Errorf("reduce to %d of %d: %w", M, len(d.moments), ErrNotEnoughMoments)
	}
	ms := make([]*big.Rat, M)
	for i := 0; i < M; i++ {
		ms[i] = new(big.Rat).Set(d.moments[i])
	}
	return &DistVector{par: d.par, moments: ms, ordp: d.ordp}, nil
}

func (d *DistVector) IsZero() bool {
	for _, m := range d.moments {
		if m.Sign() != 0 {
			return false
		}
	}
	return true
}

func (d *DistVector) IsZeroToPrecision(M int) bool {
	if d.par.Classical {
		return d.IsZero()
	}
	n := len(d.moments)
	for i, m := range d.moments {
		e := M - i
		if n-i < e {
			e = n - i
		}
		if e <= 0 {
			continue
		}
		if d.mustResidue(m, e).Sign() != 0 {
			return false
		}
	}
	return true
}

func (d *DistVector) Specialize() (Distribution, error) {
	k := d.par.K
	if k < 0 {
		return nil, ErrNegativeWeight
	}
	d.Normalize()
	if len(d.moments) < k+1 {
		return nil, fmt.Errorf("need %d moments, have %d: %w", k+1, len(d.moments), ErrNotEnoughMoments)
	}
	target, err := d.par.Specialized()
	if err != nil {
		return nil, err
	}
	ms := make([]*big.Rat, k+1)
	for i := 0; i <= k; i++ {
		m, err := d.Moment(i)
		if err != nil {
			return nil, err
		}
		ms[i] = m
	}
	return &DistVector{par: target, moments: ms, ordp: 0}, nil
}

func (d *DistVector) Lift(target *Params, M int) (Distribution, error) {
	k := target.K
	if k < 0 {
		return nil, ErrNegativeWeight
	}
	if len(d.moments) < k+1 {
		return nil, fmt.Errorf("need %d moments, have %d: %w", k+1, len(d.moments), ErrNotEnoughMoments)
	}
	ms := make([]*big.Rat, M)
	for i := range ms {
		ms[i] = new(big.Rat)
	}
	for i := 0; i <= k && i < M; i++ {
		m, err := d.Moment(i)
		if err != nil {
			return nil, err
		}
		ms[i] = m
	}
	return FromRatMoments(target, ms, 0)
}

func (d *DistVector) ActRight(g sigma0.Element) (Distribution, error) {
	return d.par.Action().Apply(d, g)
}
