package sigma0

import "fmt"

// Tuple is the canonical coefficient 4-tuple (a, b, c, d) of an integral
// 2x2 matrix [a, b; c, d]. It is comparable and is used directly as a map
// key by the acting-matrix cache.
type Tuple struct {
	A, B, C, D int64
}

// Det returns the determinant ad - bc.
func (t Tuple) Det() int64 {
	return t.A*t.D - t.B*t.C
}

// Mul returns the matrix product t*u.
func (t Tuple) Mul(u Tuple) Tuple {
	return Tuple{
		A: t.A*u.A + t.B*u.C,
		B: t.A*u.B + t.B*u.D,
		C: t.C*u.A + t.D*u.C,
		D: t.C*u.B + t.D*u.D,
	}
}

func (t Tuple) String() string {
	return fmt.Sprintf("[%d %d; %d %d]", t.A, t.B, t.C, t.D)
}

// Element is a validated member of Sigma0(N).
type Element struct {
	mat   Tuple
	level int64
}

// Tuple returns the element's canonical coefficients.
func (e Element) Tuple() Tuple { return e.mat }

// Det returns the element's determinant.
func (e Element) Det() int64 { return e.mat.Det() }

// Level returns the level N the element was validated against.
func (e Element) Level() int64 { return e.level }

func (e Element) String() string { return e.mat.String() }

// Mul returns the monoid product e*f. Both factors are already members, and
// membership is closed under products, so no re-validation runs.
func (e Element) Mul(f Element) Element {
	return Element{mat: e.mat.Mul(f.mat), level: e.level}
}

// Tuplegen maps a group element to its coefficient tuple. The action engine
// consults it instead of reading matrix entries directly, so callers with
// their own matrix types can adapt them here.
type Tuplegen func(Element) Tuple

// DefaultTuplegen reads off the element's own coefficients.
func DefaultTuplegen(e Element) Tuple { return e.Tuple() }

// Monoid is Sigma0(N) for a fixed level N >= 1.
type Monoid struct {
	n      int64
	primes []primePower
}

type primePower struct {
	p int64
	e int
}

// New builds Sigma0(N), factoring N once for membership checks.
func New(n int64) (Monoid, error) {
	if n < 1 {
		return Monoid{}, ErrBadLevel
	}
	return Monoid{n: n, primes: factor(n)}, nil
}

// Level returns N.
func (m Monoid) Level() int64 { return m.n }

// Element validates (a, b, c, d) for membership: nonzero determinant, and at
// every prime power q^e dividing N, q^e | c and q does not divide a.
func (m Monoid) Element(a, b, c, d int64) (Element, error) {
	t := Tuple{A: a, B: b, C: c, D: d}
	if t.Det() == 0 {
		return Element{}, ErrSingular
	}
	for _, pp := range m.primes {
		if val64(c, pp.p) < pp.e {
			return Element{}, fmt.Errorf("%d^%d does not divide %d: %w", pp.p, pp.e, c, ErrLowerLeft)
		}
		if a%pp.p == 0 {
			return Element{}, fmt.Errorf("%d is not a unit at %d: %w", a, pp.p, ErrNotUnit)
		}
	}
	return Element{mat: t, level: m.n}, nil
}

// Identity returns the identity element.
func (m Monoid) Identity() Element {
	return Element{mat: Tuple{A: 1, D: 1}, level: m.n}
}

func val64(x, p int64) int {
	if x == 0 {
		return 1 << 30
	}
	if x < 0 {
		x = -x
	}
	v := 0
	for x%p == 0 {
		x /= p
		v++
	}
	return v
}

func factor(n int64) []primePower {
	var out []primePower
	for p := int64(2); p*p <= n; p++ {
		if n%p != 0 {
			continue
		}
		e := 0
		for n%p == 0 {
			n /= p
			e++
		}
		out = append(out, primePower{p: p, e: e})
	}
	if n > 1 {
		out = append(out, primePower{p: n, e: 1})
	}
	return out
}
