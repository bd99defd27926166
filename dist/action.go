package dist

import (
	"fmt"
	"math/big"
	"os"
	"sync"

	"padic-distributions/padic"
	"padic-distributions/sigma0"
)

// Twist decorates the weight-k action: the acting series picks up the
// factor Character(a) * det(g)^DetPower. Changing twist data on a live
// engine requires ClearCache.
type Twist struct {
	Character func(a int64) int64
	DetPower  int
}

// WeightKAction realizes the right action of integral 2x2 matrices on the
// distributions of one parent. For g = [a, b; c, d] it builds the MxM
// acting matrix whose (row, col) entry is the y^row coefficient of
// (a+cy)^k * s(y)^col with s(y) = (b+dy)/(a+cy), so that the image's
// moment vector is the input row vector times the matrix.
//
// Matrices are cached per canonical coefficient tuple. A request below the
// cached precision is served as a truncated top-left block; a request above
// it recomputes at max(M, 2*cachedMax) so repeated growth stays amortized.
// The cache supports concurrent insert-if-absent: lookups take a read lock
// and each entry serializes its own construction.
type WeightKAction struct {
	par      *Params
	level    int64
	twist    *Twist
	tuplegen sigma0.Tuplegen

	mu      sync.RWMutex
	entries map[matKey]*cacheEntry
}

type matKind uint8

const (
	kindRat matKind = iota
	kindMod
	kindLong
)

type matKey struct {
	t    sigma0.Tuple
	kind matKind
}

type cacheEntry struct {
	mu      sync.Mutex
	maxPrec int
	mats    map[int]actingMatrix
}

// ActionOption configures a WeightKAction.
type ActionOption func(*WeightKAction)

// WithTwist attaches a character / determinant twist.
func WithTwist(t Twist) ActionOption {
	return func(w *WeightKAction) { w.twist = &t }
}

// WithTuplegen overrides how group elements are read into coefficient
// tuples.
func WithTuplegen(tg sigma0.Tuplegen) ActionOption {
	return func(w *WeightKAction) { w.tuplegen = tg }
}

// WithLevel sets the tame level N; the non-classical action requires Np to
// divide the lower-left entry of every acting matrix.
func WithLevel(n int64) ActionOption {
	return func(w *WeightKAction) { w.level = n }
}

// NewWeightKAction builds the action engine for a parent. The weight must
// be non-negative.
func NewWeightKAction(par *Params, opts ...ActionOption) (*WeightKAction, error) {
	if par.K < 0 {
		return nil, ErrNegativeWeight
	}
	w := &WeightKAction{
		par:      par,
		level:    1,
		tuplegen: sigma0.DefaultTuplegen,
		entries:  make(map[matKey]*cacheEntry),
	}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// ClearCache drops every cached acting matrix. Required after twist data
// changes, and useful for memory hygiene in long batch computations.
func (w *WeightKAction) ClearCache() {
	w.mu.Lock()
	w.entries = make(map[matKey]*cacheEntry)
	w.mu.Unlock()
}

// Apply returns v acted on by g on the right; the result keeps v's ordp.
func (w *WeightKAction) Apply(v Distribution, g sigma0.Element) (Distribution, error) {
	t := w.tuplegen(g)
	switch d := v.(type) {
	case *DistVector:
		return w.applyVector(d, t)
	case *DistLong:
		return w.applyLong(d, t)
	default:
		return nil, ErrUnsupportedOp
	}
}

func (w *WeightKAction) applyVector(d *DistVector, t sigma0.Tuple) (Distribution, error) {
	if d.isCanonicalZero() || len(d.moments) == 0 {
		return d.Clone(), nil
	}
	M := len(d.moments)
	kind := kindMod
	if w.par.Classical {
		kind = kindRat
	}
	A, err := w.matrix(t, kind, M)
	if err != nil {
		return nil, err
	}
	res := make([]*big.Rat, M)
	tmp := new(big.Rat)
	for col := 0; col < M; col++ {
		sum := new(big.Rat)
		for row := 0; row < M; row++ {
			e := A.entryRat(row, col)
			if e.Sign() == 0 || d.moments[row].Sign() == 0 {
				continue
			}
			tmp.Mul(d.moments[row], e)
			sum.Add(sum, tmp)
		}
		res[col] = sum
	}
	return &DistVector{par: d.par, moments: res, ordp: d.ordp}, nil
}

func (w *WeightKAction) applyLong(d *DistLong, t sigma0.Tuple) (Distribution, error) {
	if d.isCanonicalZero() || len(d.moments) == 0 {
		return d.Clone(), nil
	}
	M := len(d.moments)
	A, err := w.matrix(t, kindLong, M)
	if err != nil {
		return nil, err
	}
	mat := A.(*longMat)
	q := mat.q
	// local canonical residues; the shared input is left untouched
	ms := make([]int64, M)
	for i, m := range d.moments {
		qi := d.par.ppow[M-i]
		m %= qi
		if m < 0 {
			m += qi
		}
		ms[i] = m
	}
	res := make([]int64, M)
	for col := 0; col < M; col++ {
		var sum int64
		base := M * col
		for row := 0; row < M; row++ {
			sum += ms[row] * mat.a[base+row] % q
		}
		res[col] = sum % q
	}
	return &DistLong{par: d.par, moments: res, ordp: d.ordp}, nil
}

// matrix returns the acting matrix of t at precision M, consulting and
// filling the cache.
func (w *WeightKAction) matrix(t sigma0.Tuple, kind matKind, M int) (actingMatrix, error) {
	key := matKey{t: t, kind: kind}
	w.mu.RLock()
	e := w.entries[key]
	w.mu.RUnlock()
	if e == nil {
		w.mu.Lock()
		if e = w.entries[key]; e == nil {
			e = &cacheEntry{mats: make(map[int]actingMatrix)}
			w.entries[key] = e
		}
		w.mu.Unlock()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if A, ok := e.mats[M]; ok {
		return A, nil
	}
	if e.maxPrec == 0 {
		A, err := w.compute(t, kind, M)
		if err != nil {
			return nil, err
		}
		e.mats[M] = A
		e.maxPrec = M
		return A, nil
	}
	if M <= e.maxPrec {
		A := e.mats[e.maxPrec].truncated(M)
		e.mats[M] = A
		return A, nil
	}
	target := M
	if 2*e.maxPrec > target {
		target = 2 * e.maxPrec
	}
	if target > w.par.PrecCap {
		target = w.par.PrecCap
	}
	dbg(os.Stderr, "[action] recompute %v at %d (was %d)\n", t, target, e.maxPrec)
	A, err := w.compute(t, kind, target)
	if err != nil {
		return nil, err
	}
	e.maxPrec = target
	e.mats[target] = A
	if M < target {
		A = A.truncated(M)
		e.mats[M] = A
	}
	return A, nil
}

// checkMat runs the action preconditions, lazily on construction rather
// than on every call.
func (w *WeightKAction) checkMat(t sigma0.Tuple) error {
	if t.Det() == 0 {
		return fmt.Errorf("%v: %w", t, ErrZeroDeterminant)
	}
	if w.par.Classical {
		return nil
	}
	if t.A%w.par.P == 0 {
		return fmt.Errorf("%v: %w", t, ErrPDividesA)
	}
	np := w.level * w.par.P
	if t.C%np != 0 {
		return fmt.Errorf("%v with Np=%d: %w", t, np, ErrLevelDoesNotDivide)
	}
	return nil
}

func (w *WeightKAction) compute(t sigma0.Tuple, kind matKind, M int) (actingMatrix, error) {
	if err := w.checkMat(t); err != nil {
		return nil, err
	}
	switch kind {
	case kindRat:
		return w.computeRat(t, M)
	case kindMod:
		return w.computeMod(t, M)
	default:
		return w.computeLong(t, M)
	}
}

// computeMod builds column j of the matrix as the coefficients of
// t(y)*s(y)^j over Z/p^M, generating the columns iteratively: start from
// t = (a+cy)^k (twisted), read a column, multiply by s, repeat.
func (w *WeightKAction) computeMod(t sigma0.Tuple, M int) (actingMatrix, error) {
	q := w.par.pPow(M)
	lin := newModPoly(M, q)
	lin.c[0].Set(padic.Mod(big.NewInt(t.A), q))
	if M > 1 {
		lin.c[1].Set(padic.Mod(big.NewInt(t.C), q))
	}
	inv, err := invLinearMod(t.A, t.C, M, q)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", t, ErrNotInvertible)
	}
	bdy := newModPoly(M, q)
	bdy.c[0].Set(padic.Mod(big.NewInt(t.B), q))
	if M > 1 {
		bdy.c[1].Set(padic.Mod(big.NewInt(t.D), q))
	}
	scale := inv.mulTrunc(bdy)
	tk := lin.powTrunc(w.par.K)
	if f, err := w.twistFactorMod(t, q); err != nil {
		return nil, err
	} else if f != nil {
		tk = tk.scalarMul(f)
	}
	B := &modMat{m: M, par: w.par, q: q, a: make([][]*big.Int, M)}
	for row := range B.a {
		B.a[row] = make([]*big.Int, M)
	}
	for col := 0; col < M; col++ {
		for row := 0; row < M; row++ {
			B.a[row][col] = new(big.Int).Set(tk.c[row])
		}
		if col < M-1 {
			tk = tk.mulTrunc(scale)
		}
	}
	return B, nil
}

func (w *WeightKAction) computeRat(t sigma0.Tuple, M int) (actingMatrix, error) {
	lin := newRatPoly(M)
	lin.c[0].SetInt64(t.A)
	if M > 1 {
		lin.c[1].SetInt64(t.C)
	}
	inv, err := invLinearRat(t.A, t.C, M)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", t, err)
	}
	bdy := newRatPoly(M)
	bdy.c[0].SetInt64(t.B)
	if M > 1 {
		bdy.c[1].SetInt64(t.D)
	}
	scale := inv.mulTrunc(bdy)
	tk := lin.powTrunc(w.par.K)
	if f := w.twistFactorRat(t); f != nil {
		tk = tk.scalarMul(f)
	}
	B := &ratMat{m: M, a: make([][]*big.Rat, M)}
	for row := range B.a {
		B.a[row] = make([]*big.Rat, M)
	}
	for col := 0; col < M; col++ {
		for row := 0; row < M; row++ {
			B.a[row][col] = new(big.Rat).Set(tk.c[row])
		}
		if col < M-1 {
			tk = tk.mulTrunc(scale)
		}
	}
	return B, nil
}

// computeLong mirrors computeMod in native words: the formal inverse of
// (a+cy) comes from Newton iteration, and coefficients are reduced into
// [0, p^M) explicitly.
func (w *WeightKAction) computeLong(t sigma0.Tuple, M int) (actingMatrix, error) {
	q := w.par.ppow[M]
	lin := newLongPoly(M, q)
	lin.c[0] = t.A
	if M > 1 {
		lin.c[1] = t.C
	}
	lin = lin.reduce()
	inv, err := lin.newtonInvert()
	if err != nil {
		return nil, fmt.Errorf("%v: %w", t, ErrNotInvertible)
	}
	bdy := newLongPoly(M, q)
	bdy.c[0] = t.B
	if M > 1 {
		bdy.c[1] = t.D
	}
	bdy = bdy.reduce()
	scale := inv.mulTrunc(bdy)
	tk := lin.powTrunc(w.par.K)
	f, err := w.twistFactorMod(t, big.NewInt(q))
	if err != nil {
		return nil, err
	}
	if f != nil {
		tk = tk.scalarMul(f.Int64())
	}
	B := &longMat{m: M, par: w.par, q: q, a: make([]int64, M*M)}
	for col := 0; col < M; col++ {
		copy(B.a[M*col:M*col+M], tk.c)
		if col < M-1 {
			tk = tk.mulTrunc(scale)
		}
	}
	return B, nil
}

// twistFactorMod evaluates Character(a) * det^DetPower modulo q, nil when
// no twist is attached.
func (w *WeightKAction) twistFactorMod(t sigma0.Tuple, q *big.Int) (*big.Int, error) {
	if w.twist == nil {
		return nil, nil
	}
	f := big.NewInt(1)
	if w.twist.Character != nil {
		f.Mul(f, big.NewInt(w.twist.Character(t.A)))
	}
	if e := w.twist.DetPower; e != 0 {
		det := padic.Mod(big.NewInt(t.Det()), q)
		if e < 0 {
			inv, err := padic.InvMod(det, q)
			if err != nil {
				return nil, fmt.Errorf("det twist %v: %w", t, ErrNotInvertible)
			}
			det, e = inv, -e
		}
		f.Mul(f, new(big.Int).Exp(det, big.NewInt(int64(e)), q))
	}
	return padic.Mod(f, q), nil
}

func (w *WeightKAction) twistFactorRat(t sigma0.Tuple) *big.Rat {
	if w.twist == nil {
		return nil
	}
	f := big.NewRat(1, 1)
	if w.twist.Character != nil {
		f.Mul(f, new(big.Rat).SetInt64(w.twist.Character(t.A)))
	}
	if e := w.twist.DetPower; e != 0 {
		det := new(big.Rat).SetInt64(t.Det())
		if e < 0 {
			det.Inv(det)
			e = -e
		}
		for i := 0; i < e; i++ {
			f.Mul(f, det)
		}
	}
	return f
}

// acting matrices, row index = series coefficient, column index = moment

type actingMatrix interface {
	size() int
	truncated(M int) actingMatrix
	entryRat(row, col int) *big.Rat
}

type ratMat struct {
	m int
	a [][]*big.Rat
}

func (B *ratMat) size() int { return B.m }

func (B *ratMat) truncated(M int) actingMatrix {
	r := &ratMat{m: M, a: make([][]*big.Rat, M)}
	for row := 0; row < M; row++ {
		r.a[row] = make([]*big.Rat, M)
		for col := 0; col < M; col++ {
			r.a[row][col] = new(big.Rat).Set(B.a[row][col])
		}
	}
	return r
}

func (B *ratMat) entryRat(row, col int) *big.Rat { return B.a[row][col] }

type modMat struct {
	m   int
	par *Params
	q   *big.Int
	a   [][]*big.Int
}

func (B *modMat) size() int { return B.m }

// truncated reduces the block into the smaller modulus p^M, so cached
// views store canonical residues rather than congruent oversized ones.
func (B *modMat) truncated(M int) actingMatrix {
	q := B.par.pPow(M)
	r := &modMat{m: M, par: B.par, q: q, a: make([][]*big.Int, M)}
	for row := 0; row < M; row++ {
		r.a[row] = make([]*big.Int, M)
		for col := 0; col < M; col++ {
			r.a[row][col] = new(big.Int).Mod(B.a[row][col], q)
		}
	}
	return r
}

func (B *modMat) entryRat(row, col int) *big.Rat {
	return new(big.Rat).SetInt(B.a[row][col])
}

type longMat struct {
	m   int
	par *Params
	q   int64
	a   []int64 // column-major: entry(row, col) = a[m*col+row]
}

func (B *longMat) size() int { return B.m }

// truncated reduces the block into p^M, keeping the bounded path's
// intermediate products small.
func (B *longMat) truncated(M int) actingMatrix {
	q := B.par.ppow[M]
	r := &longMat{m: M, par: B.par, q: q, a: make([]int64, M*M)}
	for col := 0; col < M; col++ {
		for row := 0; row < M; row++ {
			r.a[M*col+row] = B.a[B.m*col+row] % q
		}
	}
	return r
}

func (B *longMat) entryRat(row, col int) *big.Rat {
	return new(big.Rat).SetInt64(B.a[B.m*col+row])
}
