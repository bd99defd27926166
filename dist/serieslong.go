package dist

import (
	"math/big"

	"padic-distributions/padic"
)

// int64 truncated series arithmetic for the bounded acting-matrix path.
// The modulus q = p^M sits below 2^31/7, so a product of two reduced
// coefficients fits an int64; products are reduced term by term before
// accumulation, keeping the running sum below M * q.

type longPoly struct {
	c []int64
	q int64
}

func newLongPoly(M int, q int64) longPoly {
	return longPoly{c: make([]int64, M), q: q}
}

// reduce pulls every coefficient into [0, q). This is the canonical residue
// reduction of the acting-matrix construction, distinct from the signed
// overflow band used by distribution arithmetic.
func (f longPoly) reduce() longPoly {
	for i, ci := range f.c {
		ci %= f.q
		if ci < 0 {
			ci += f.q
		}
		f.c[i] = ci
	}
	return f
}

func (f longPoly) mulTrunc(g longPoly) longPoly {
	M := len(f.c)
	r := newLongPoly(M, f.q)
	for i, fi := range f.c {
		if fi == 0 {
			continue
		}
		for j := 0; i+j < M && j < len(g.c); j++ {
			r.c[i+j] += fi * g.c[j] % f.q
		}
	}
	return r.reduce()
}

func (f longPoly) powTrunc(k int) longPoly {
	r := newLongPoly(len(f.c), f.q)
	r.c[0] = 1
	base := f
	for k > 0 {
		if k&1 == 1 {
			r = r.mulTrunc(base)
		}
		k >>= 1
		if k > 0 {
			base = base.mulTrunc(base)
		}
	}
	return r
}

func (f longPoly) scalarMul(s int64) longPoly {
	s %= f.q
	if s < 0 {
		s += f.q
	}
	r := newLongPoly(len(f.c), f.q)
	for i, ci := range f.c {
		r.c[i] = ci * s % f.q
	}
	return r
}

// newtonInvert inverts f modulo y^M by Newton iteration, doubling the
// attained precision each round: x <- x*(2 - f*x).
func (f longPoly) newtonInvert() (longPoly, error) {
	M := len(f.c)
	q := f.q
	inv0, err := padic.InvMod(big.NewInt(f.c[0]), big.NewInt(q))
	if err != nil {
		return longPoly{}, err
	}
	x := newLongPoly(M, q)
	x.c[0] = inv0.Int64()
	for prec := 1; prec < M; {
		prec *= 2
		if prec > M {
			prec = M
		}
		t := f.truncated(prec).mulTrunc(x.truncated(prec))
		for i := range t.c {
			t.c[i] = (q - t.c[i]) % q
		}
		t.c[0] = (t.c[0] + 2) % q
		nx := x.truncated(prec).mulTrunc(t)
		copy(x.c, nx.c)
	}
	return x, nil
}

func (f longPoly) truncated(M int) longPoly {
	if M >= len(f.c) {
		return f
	}
	r := newLongPoly(M, f.q)
	copy(r.c, f.c[:M])
	return r
}
