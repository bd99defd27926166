package dist

import (
	"errors"
	"math/big"
	"testing"
)

func mustParams(t *testing.T, p int64, k, cap int) *Params {
	t.Helper()
	par, err := NewParams(p, k, cap)
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	return par
}

func rats(xs ...int64) []*big.Rat {
	out := make([]*big.Rat, len(xs))
	for i, x := range xs {
		out[i] = new(big.Rat).SetInt64(x)
	}
	return out
}

func unscaled(t *testing.T, v Distribution, i int) *big.Rat {
	t.Helper()
	m, err := v.UnscaledMoment(i)
	if err != nil {
		t.Fatalf("moment %d: %v", i, err)
	}
	return m
}

func checkMoments(t *testing.T, v Distribution, want []int64) {
	t.Helper()
	if v.PrecisionRelative() != len(want) {
		t.Fatalf("relative precision %d, want %d", v.PrecisionRelative(), len(want))
	}
	for i, x := range want {
		if m := unscaled(t, v, i); m.Cmp(new(big.Rat).SetInt64(x)) != 0 {
			t.Fatalf("moment %d = %s, want %d", i, m.RatString(), x)
		}
	}
}

func TestParamsValidation(t *testing.T) {
	if _, err := NewParams(7, 0, 0); !errors.Is(err, ErrBadParams) {
		t.Fatalf("cap 0: got %v, want ErrBadParams", err)
	}
	if _, err := NewParams(6, 0, 3); !errors.Is(err, ErrBadParams) {
		t.Fatalf("composite p: got %v, want ErrBadParams", err)
	}
	if _, err := NewClassical(7, -1); !errors.Is(err, ErrNegativeWeight) {
		t.Fatalf("negative weight: got %v, want ErrNegativeWeight", err)
	}
	par, err := NewClassical(7, 3)
	if err != nil {
		t.Fatal(err)
	}
	if par.PrecCap != 4 {
		t.Fatalf("classical cap = %d, want k+1 = 4", par.PrecCap)
	}
}

func TestBoundedPredicate(t *testing.T) {
	// 7 * 7^10 = 7^11 < 2^31, 7 * 7^11 = 7^12 > 2^31
	if par := mustParams(t, 7, 0, 10); !par.UseBounded() {
		t.Fatal("p=7 cap=10 should be bounded")
	}
	if par := mustParams(t, 7, 0, 11); par.UseBounded() {
		t.Fatal("p=7 cap=11 should not be bounded")
	}
	if par := mustParams(t, 1000003, 0, 3); par.UseBounded() {
		t.Fatal("large p should not be bounded")
	}
	fp, err := NewFieldParams(7, 0, 5)
	if err != nil {
		t.Fatal(err)
	}
	if fp.UseBounded() {
		t.Fatal("field base must force the generic representation")
	}
}

func TestNewVectorRejectsPDenominator(t *testing.T) {
	par := mustParams(t, 1000003, 0, 4)
	_, err := NewVector(par, []*big.Rat{big.NewRat(1, 1000003), big.NewRat(1, 1)}, 0)
	if !errors.Is(err, ErrNotIntegral) {
		t.Fatalf("NewVector: got %v, want ErrNotIntegral", err)
	}
	_, err = FromRatMoments(par, []*big.Rat{big.NewRat(1, 1000003)}, 0)
	if !errors.Is(err, ErrNotIntegral) {
		t.Fatalf("FromRatMoments: got %v, want ErrNotIntegral", err)
	}
	// denominators prime to p are Z_p units and stay legal
	v, err := NewVector(par, []*big.Rat{big.NewRat(1, 3)}, 0)
	if err != nil {
		t.Fatalf("unit denominator: %v", err)
	}
	v.Normalize()
	// classical parents are exact and keep arbitrary rationals
	cpar, err := NewClassical(7, 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewVector(cpar, []*big.Rat{big.NewRat(1, 7)}, 0); err != nil {
		t.Fatalf("classical rational moment: %v", err)
	}
}

func TestNormalizeScenario(t *testing.T) {
	par := mustParams(t, 7, 5, 15)
	v, err := NewVector(par, rats(1, 2, 3, 4, 5), 0)
	if err != nil {
		t.Fatal(err)
	}
	v.Normalize()
	checkMoments(t, v, []int64{1, 2, 3, 4, 5})
	if v.Ordp() != 0 {
		t.Fatalf("ordp = %d, want 0", v.Ordp())
	}
	if v.PrecisionAbsolute() != 5 {
		t.Fatalf("absolute precision = %d, want 5", v.PrecisionAbsolute())
	}

	w, err := v.Scale(big.NewRat(2, 1))
	if err != nil {
		t.Fatal(err)
	}
	w.Normalize()
	// moment 4 is 10 = 3 mod 7; moment 3 is 8, already below 7^2
	checkMoments(t, w, []int64{2, 4, 6, 8, 3})
	if w.Ordp() != 0 {
		t.Fatalf("scaled ordp = %d, want 0", w.Ordp())
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	par := mustParams(t, 7, 0, 15)
	v, err := NewVector(par, rats(49, 98, 49), 0)
	if err != nil {
		t.Fatal(err)
	}
	v.Normalize()
	// every moment divisible by 7^2, one relative digit survives
	if v.Ordp() != 2 {
		t.Fatalf("ordp = %d, want 2", v.Ordp())
	}
	checkMoments(t, v, []int64{1})
	before := v.PrecisionAbsolute()
	v.Normalize()
	if v.Ordp() != 2 || v.PrecisionAbsolute() != before {
		t.Fatal("second Normalize changed an already normalized value")
	}
}

func TestNormalizeAllZero(t *testing.T) {
	par := mustParams(t, 7, 0, 15)
	v, err := NewVector(par, rats(0, 0, 0), 0)
	if err != nil {
		t.Fatal(err)
	}
	v.Normalize()
	if v.Ordp() != OrdpInfinite {
		t.Fatalf("ordp = %d, want OrdpInfinite", v.Ordp())
	}
	if v.PrecisionRelative() != 0 {
		t.Fatalf("canonical zero kept %d moments", v.PrecisionRelative())
	}
	// residues that vanish modulo their windows also collapse
	w, err := NewVector(par, rats(2401, 343, 49), 0)
	if err != nil {
		t.Fatal(err)
	}
	w.Normalize()
	if w.Ordp() != OrdpInfinite {
		t.Fatalf("ordp = %d, want OrdpInfinite", w.Ordp())
	}
}

func TestAddCommutes(t *testing.T) {
	par := mustParams(t, 7, 0, 15)
	a, _ := NewVector(par, rats(1, 2, 3, 4), 0)
	b, _ := NewVector(par, rats(5, 6, 0, 1), 0)
	ab, err := a.Add(b)
	if err != nil {
		t.Fatal(err)
	}
	ba, err := b.Add(a)
	if err != nil {
		t.Fatal(err)
	}
	if c, err := ab.Compare(ba); err != nil || c != 0 {
		t.Fatalf("a+b != b+a (cmp %d, err %v)", c, err)
	}
	checkMoments(t, ab, []int64{6, 8, 3, 5})
}

func TestAddAlignsOrdp(t *testing.T) {
	par := mustParams(t, 7, 0, 15)
	a, _ := NewVector(par, rats(1, 2, 3, 4), 1)
	b, _ := NewVector(par, rats(1, 1, 1, 1), 0)
	sum, err := a.Add(b)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Ordp() != 0 {
		t.Fatalf("ordp = %d, want the coarser 0", sum.Ordp())
	}
	// absolute precision is min(4+1, 4+0) = 4, so 4 moments at ordp 0
	if sum.PrecisionAbsolute() != 4 {
		t.Fatalf("absolute precision %d, want 4", sum.PrecisionAbsolute())
	}
	checkMoments(t, sum, []int64{8, 15, 22, 29})
}

func TestAddInverse(t *testing.T) {
	par := mustParams(t, 7, 0, 15)
	a, _ := NewVector(par, rats(3, 1, 4, 1, 5), 0)
	neg, err := a.Scale(big.NewRat(-1, 1))
	if err != nil {
		t.Fatal(err)
	}
	sum, err := a.Add(neg)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.IsZero() {
		t.Fatal("a + (-a) has a nonzero stored moment")
	}
	sum.Normalize()
	if sum.Ordp() != OrdpInfinite {
		t.Fatalf("normalized a + (-a) is not the canonical zero (ordp %d)", sum.Ordp())
	}
}

func TestScaleZero(t *testing.T) {
	par := mustParams(t, 7, 0, 15)
	a, _ := NewVector(par, rats(1, 2, 3), 0)
	z, err := a.Scale(new(big.Rat))
	if err != nil {
		t.Fatal(err)
	}
	if z.Ordp() != OrdpInfinite {
		t.Fatal("scaling by zero must give the canonical zero")
	}
}

func TestScaleFoldsValuation(t *testing.T) {
	par := mustParams(t, 7, 0, 15)
	a, _ := NewVector(par, rats(1, 2, 3), 0)
	w, err := a.Scale(big.NewRat(14, 1))
	if err != nil {
		t.Fatal(err)
	}
	if w.Ordp() != 1 {
		t.Fatalf("ordp = %d, want 1", w.Ordp())
	}
	checkMoments(t, w, []int64{2, 4, 6})
}

func TestCompareCongruentResidues(t *testing.T) {
	par := mustParams(t, 7, 0, 15)
	// moments congruent modulo the aligned windows compare equal
	a, _ := NewVector(par, rats(1, 2, 3), 0)
	b, _ := NewVector(par, rats(344, 51, 10), 0)
	// 344 = 1 + 7^3, 51 = 2 + 7^2, 10 = 3 + 7
	c, err := a.Compare(b)
	if err != nil {
		t.Fatal(err)
	}
	if c != 0 {
		t.Fatalf("congruent values compare %d", c)
	}
	d, _ := NewVector(par, rats(2, 2, 3), 0)
	if c, _ := a.Compare(d); c == 0 {
		t.Fatal("distinct values compare equal")
	}
}

func TestReducePrecision(t *testing.T) {
	par := mustParams(t, 7, 0, 15)
	a, _ := NewVector(par, rats(1, 2, 3, 4, 5), 2)
	r, err := a.ReducePrecision(3)
	if err != nil {
		t.Fatal(err)
	}
	if r.PrecisionRelative() != 3 || r.Ordp() != 2 {
		t.Fatalf("got N=%d ordp=%d, want 3, 2", r.PrecisionRelative(), r.Ordp())
	}
	checkMoments(t, r, []int64{1, 2, 3})
	if _, err := a.ReducePrecision(6); !errors.Is(err, ErrNotEnoughMoments) {
		t.Fatalf("over-reduce: got %v, want ErrNotEnoughMoments", err)
	}
}

func TestValuations(t *testing.T) {
	par := mustParams(t, 7, 0, 15)
	a, _ := NewVector(par, rats(49, 7, 1), 1)
	// per-index caps: min(v(49), 3) = 2, min(v(7), 2) = 1, min(v(1), 1) = 0
	if got := a.Valuation(); got != 1 {
		t.Fatalf("valuation = %d, want 1", got)
	}
	// diagonal: min over i of v(m_i) + i = min(2+0, 1+1, 0+2) = 2
	if got := a.DiagonalValuation(); got != 3 {
		t.Fatalf("diagonal valuation = %d, want 3", got)
	}
	b, _ := NewVector(par, rats(0, 0, 343), 0)
	// zero moments are capped at their window, index 2 capped at 7^1
	if got := b.Valuation(); got != 1 {
		t.Fatalf("valuation of capped tail = %d, want 1", got)
	}
}

func TestIsZeroToPrecision(t *testing.T) {
	par := mustParams(t, 7, 0, 15)
	a, _ := NewVector(par, rats(49, 49, 49), 0)
	if !a.IsZeroToPrecision(2) {
		t.Fatal("49s should vanish modulo 7^min(2-i, 3-i)")
	}
	if a.IsZeroToPrecision(3) {
		t.Fatal("49 is not 0 modulo 7^3")
	}
	if a.IsZero() {
		t.Fatal("stored moments are not exactly zero")
	}
}

func TestSpecializeAndLift(t *testing.T) {
	par := mustParams(t, 7, 2, 6)
	v, err := FromInt64Moments(par, []int64{1, 2, 3, 4, 5, 6}, 0)
	if err != nil {
		t.Fatal(err)
	}
	s, err := v.Specialize()
	if err != nil {
		t.Fatal(err)
	}
	if !s.Params().Classical {
		t.Fatal("specialization is not classical")
	}
	checkMoments(t, s, []int64{1, 2, 3})
	if s.Ordp() != 0 {
		t.Fatalf("specialized ordp = %d, want 0", s.Ordp())
	}
	back, err := s.Lift(par, 6)
	if err != nil {
		t.Fatal(err)
	}
	checkMoments(t, back, []int64{1, 2, 3, 0, 0, 0})

	short, err := FromInt64Moments(par, []int64{1, 2}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := short.Specialize(); !errors.Is(err, ErrNotEnoughMoments) {
		t.Fatalf("short specialize: got %v, want ErrNotEnoughMoments", err)
	}
}

func TestClassicalExactness(t *testing.T) {
	par, err := NewClassical(7, 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewVector(par, rats(1, 2, 3), 1); !errors.Is(err, ErrExactValuationShift) {
		t.Fatalf("classical nonzero ordp: got %v, want ErrExactValuationShift", err)
	}
	v, _ := NewVector(par, []*big.Rat{big.NewRat(1, 3), big.NewRat(7, 2), big.NewRat(-5, 1)}, 0)
	v.Normalize()
	// exact moments survive untouched
	if m := unscaled(t, v, 0); m.Cmp(big.NewRat(1, 3)) != 0 {
		t.Fatalf("classical normalize touched moment 0: %s", m.RatString())
	}
	w, err := v.Scale(big.NewRat(3, 1))
	if err != nil {
		t.Fatal(err)
	}
	if w.Ordp() != 0 {
		t.Fatal("classical scale must not shift ordp")
	}
	if m := unscaled(t, w, 0); m.Cmp(big.NewRat(1, 1)) != 0 {
		t.Fatalf("classical scale: moment 0 = %s, want 1", m.RatString())
	}
}
