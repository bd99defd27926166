package dist

import (
	"errors"
	"math/big"
	"testing"

	"padic-distributions/sigma0"
)

func mustElement(t *testing.T, a, b, c, d int64) sigma0.Element {
	t.Helper()
	mon, err := sigma0.New(1)
	if err != nil {
		t.Fatal(err)
	}
	g, err := mon.Element(a, b, c, d)
	if err != nil {
		t.Fatalf("element [%d %d; %d %d]: %v", a, b, c, d, err)
	}
	return g
}

func TestActionIdentity(t *testing.T) {
	par := mustParams(t, 7, 2, 6)
	v, err := FromInt64Moments(par, []int64{1, 2, 3, 4, 5, 6}, 0)
	if err != nil {
		t.Fatal(err)
	}
	id := mustElement(t, 1, 0, 0, 1)
	r, err := v.ActRight(id)
	if err != nil {
		t.Fatal(err)
	}
	if c, err := r.Compare(v); err != nil || c != 0 {
		t.Fatalf("identity action changed the value (cmp %d, err %v)", c, err)
	}
}

func TestActionComposition(t *testing.T) {
	par := mustParams(t, 7, 2, 6)
	v, err := FromInt64Moments(par, []int64{3, 1, 4, 1, 5, 9}, 0)
	if err != nil {
		t.Fatal(err)
	}
	g1 := mustElement(t, 1, 2, 7, 15)
	g2 := mustElement(t, 2, 1, 7, 4)

	step1, err := v.ActRight(g1)
	if err != nil {
		t.Fatal(err)
	}
	step2, err := step1.ActRight(g2)
	if err != nil {
		t.Fatal(err)
	}
	direct, err := v.ActRight(g1.Mul(g2))
	if err != nil {
		t.Fatal(err)
	}
	if c, err := step2.Compare(direct); err != nil || c != 0 {
		t.Fatalf("act(act(v,g1),g2) != act(v,g1*g2) (cmp %d, err %v)", c, err)
	}
}

func TestActionKeepsOrdp(t *testing.T) {
	par := mustParams(t, 7, 0, 6)
	v, err := FromInt64Moments(par, []int64{1, 2, 3, 4}, 2)
	if err != nil {
		t.Fatal(err)
	}
	g := mustElement(t, 1, 1, 7, 8)
	r, err := v.ActRight(g)
	if err != nil {
		t.Fatal(err)
	}
	if r.Ordp() != 2 {
		t.Fatalf("ordp = %d, want 2", r.Ordp())
	}
	if r.PrecisionRelative() != 4 {
		t.Fatalf("relative precision = %d, want 4", r.PrecisionRelative())
	}
}

func TestActionTruncationConsistency(t *testing.T) {
	parA := mustParams(t, 7, 2, 8)
	parB := mustParams(t, 7, 2, 8)
	xs := []int64{3, 1, 4, 1, 5, 9, 2, 6}
	g := mustElement(t, 1, 2, 7, 15)

	// warm parA's cache at full precision, then act on a truncation; the
	// truncated view of the big matrix must agree with a cold computation
	full, err := FromInt64Moments(parA, xs, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := full.ActRight(g); err != nil {
		t.Fatal(err)
	}
	shortA, err := FromInt64Moments(parA, xs[:4], 0)
	if err != nil {
		t.Fatal(err)
	}
	warm, err := shortA.ActRight(g)
	if err != nil {
		t.Fatal(err)
	}

	shortB, err := FromInt64Moments(parB, xs[:4], 0)
	if err != nil {
		t.Fatal(err)
	}
	cold, err := shortB.ActRight(g)
	if err != nil {
		t.Fatal(err)
	}
	if c, err := warm.Compare(cold); err != nil || c != 0 {
		t.Fatalf("truncated cached matrix disagrees with cold computation (cmp %d, err %v)", c, err)
	}
}

func TestTruncatedMatrixCanonical(t *testing.T) {
	par := mustParams(t, 7, 0, 8)
	w, err := NewWeightKAction(par)
	if err != nil {
		t.Fatal(err)
	}
	g := mustElement(t, 1, 2, 7, 15)
	full, err := FromInt64Moments(par, []int64{3, 1, 4, 1, 5, 9, 2, 6}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Apply(full, g); err != nil {
		t.Fatal(err)
	}
	short, err := FromInt64Moments(par, []int64{3, 1, 4, 1}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Apply(short, g); err != nil {
		t.Fatal(err)
	}
	key := matKey{t: w.tuplegen(g), kind: kindLong}
	w.mu.RLock()
	e := w.entries[key]
	w.mu.RUnlock()
	if e == nil {
		t.Fatal("no cache entry for the acting tuple")
	}
	A, ok := e.mats[4].(*longMat)
	if !ok {
		t.Fatal("no truncated block cached at precision 4")
	}
	q := par.ppow[4]
	if A.q != q {
		t.Fatalf("truncated modulus %d, want %d", A.q, q)
	}
	for i, x := range A.a {
		if x < 0 || x >= q {
			t.Fatalf("entry %d = %d outside [0, %d)", i, x, q)
		}
	}

	// generic path: a large p forces the big.Int matrices
	bigPar := mustParams(t, 1000003, 0, 6)
	wb, err := NewWeightKAction(bigPar)
	if err != nil {
		t.Fatal(err)
	}
	gb := mustElement(t, 1, 2, 1000003, 15)
	vb, err := FromInt64Moments(bigPar, []int64{1, 2, 3, 4, 5, 6}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wb.Apply(vb, gb); err != nil {
		t.Fatal(err)
	}
	sb, err := FromInt64Moments(bigPar, []int64{1, 2, 3}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wb.Apply(sb, gb); err != nil {
		t.Fatal(err)
	}
	keyb := matKey{t: wb.tuplegen(gb), kind: kindMod}
	wb.mu.RLock()
	eb := wb.entries[keyb]
	wb.mu.RUnlock()
	if eb == nil {
		t.Fatal("no cache entry for the generic tuple")
	}
	Ab, ok := eb.mats[3].(*modMat)
	if !ok {
		t.Fatal("no truncated block cached at precision 3")
	}
	qb := bigPar.pPow(3)
	if Ab.q.Cmp(qb) != 0 {
		t.Fatalf("truncated modulus %s, want %s", Ab.q, qb)
	}
	for row := range Ab.a {
		for col, x := range Ab.a[row] {
			if x.Sign() < 0 || x.Cmp(qb) >= 0 {
				t.Fatalf("entry (%d,%d) = %s outside [0, %s)", row, col, x, qb)
			}
		}
	}
}

func TestActionClassicalParabolic(t *testing.T) {
	par, err := NewClassical(7, 2)
	if err != nil {
		t.Fatal(err)
	}
	v, err := NewVector(par, rats(1, 0, 0), 0)
	if err != nil {
		t.Fatal(err)
	}
	g := mustElement(t, 1, 1, 0, 1)
	r, err := v.ActRight(g)
	if err != nil {
		t.Fatal(err)
	}
	// column j of the acting matrix is (1+y)^j, so delta_0 maps to all ones
	checkMoments(t, r, []int64{1, 1, 1})
}

func TestActionPreconditions(t *testing.T) {
	par := mustParams(t, 7, 0, 5)
	v, err := FromInt64Moments(par, []int64{1, 2, 3}, 0)
	if err != nil {
		t.Fatal(err)
	}
	// p divides a
	g := mustElement(t, 7, 1, 7, 2)
	if _, err := v.ActRight(g); !errors.Is(err, ErrPDividesA) {
		t.Fatalf("a = 7: got %v, want ErrPDividesA", err)
	}
	// p does not divide c
	h := mustElement(t, 1, 1, 3, 5)
	if _, err := v.ActRight(h); !errors.Is(err, ErrLevelDoesNotDivide) {
		t.Fatalf("c = 3: got %v, want ErrLevelDoesNotDivide", err)
	}
}

func TestActionLevelOption(t *testing.T) {
	par := mustParams(t, 7, 0, 5)
	act, err := NewWeightKAction(par, WithLevel(3))
	if err != nil {
		t.Fatal(err)
	}
	v, err := FromInt64Moments(par, []int64{1, 2, 3}, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Np = 21 must divide c
	g := mustElement(t, 1, 1, 7, 8)
	if _, err := act.Apply(v, g); !errors.Is(err, ErrLevelDoesNotDivide) {
		t.Fatalf("c = 7 at Np = 21: got %v, want ErrLevelDoesNotDivide", err)
	}
	h := mustElement(t, 1, 1, 21, 22)
	if _, err := act.Apply(v, h); err != nil {
		t.Fatalf("c = 21 at Np = 21: %v", err)
	}
}

func TestActionDetTwist(t *testing.T) {
	par, err := NewClassical(7, 0)
	if err != nil {
		t.Fatal(err)
	}
	act, err := NewWeightKAction(par, WithTwist(Twist{DetPower: 1}))
	if err != nil {
		t.Fatal(err)
	}
	v, err := NewVector(par, rats(5), 0)
	if err != nil {
		t.Fatal(err)
	}
	g := mustElement(t, 1, 0, 0, 2) // det 2
	plain, err := par.Action().Apply(v, g)
	if err != nil {
		t.Fatal(err)
	}
	twisted, err := act.Apply(v, g)
	if err != nil {
		t.Fatal(err)
	}
	scaled, err := plain.Scale(big.NewRat(2, 1))
	if err != nil {
		t.Fatal(err)
	}
	if c, err := twisted.Compare(scaled); err != nil || c != 0 {
		t.Fatalf("det twist is not a determinant scaling (cmp %d, err %v)", c, err)
	}
}

func TestActionCanonicalZero(t *testing.T) {
	par := mustParams(t, 7, 0, 5)
	z := CanonicalZeroLong(par)
	g := mustElement(t, 1, 1, 7, 8)
	r, err := z.ActRight(g)
	if err != nil {
		t.Fatal(err)
	}
	if r.Ordp() != OrdpInfinite {
		t.Fatal("acting on the canonical zero must return the canonical zero")
	}
}

func TestClearCache(t *testing.T) {
	par := mustParams(t, 7, 2, 6)
	v, err := FromInt64Moments(par, []int64{1, 2, 3, 4, 5, 6}, 0)
	if err != nil {
		t.Fatal(err)
	}
	g := mustElement(t, 1, 2, 7, 15)
	before, err := v.ActRight(g)
	if err != nil {
		t.Fatal(err)
	}
	par.Action().ClearCache()
	after, err := v.ActRight(g)
	if err != nil {
		t.Fatal(err)
	}
	if c, err := before.Compare(after); err != nil || c != 0 {
		t.Fatalf("cache rebuild changed the action (cmp %d, err %v)", c, err)
	}
}

func TestParallelApply(t *testing.T) {
	par := mustParams(t, 7, 2, 6)
	g := mustElement(t, 1, 2, 7, 15)
	vs := make([]Distribution, 8)
	for i := range vs {
		v, err := FromInt64Moments(par, []int64{int64(i) + 1, 2, 3, 4, 5, 6}, 0)
		if err != nil {
			t.Fatal(err)
		}
		vs[i] = v
	}
	got, err := ApplyAll(vs, g, 4)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range vs {
		want, err := v.ActRight(g)
		if err != nil {
			t.Fatal(err)
		}
		if c, err := got[i].Compare(want); err != nil || c != 0 {
			t.Fatalf("parallel result %d diverges (cmp %d, err %v)", i, c, err)
		}
	}
	gs := []sigma0.Element{g, g.Mul(g), mustElement(t, 1, 0, 0, 1)}
	orbit, err := ActAll(vs[0], gs, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(orbit) != len(gs) {
		t.Fatalf("orbit length %d, want %d", len(orbit), len(gs))
	}
}
