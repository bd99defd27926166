package dist

import (
	"math/big"

	"padic-distributions/padic"
)

// Truncated power-series arithmetic backing the generic acting-matrix
// construction: coefficients modulo q = p^M for the non-classical case and
// exact rationals for the classical one. Multiplication is the plain
// quadratic convolution with a final reduction pass; the series lengths
// here are precision caps, far below where anything fancier pays off.

type modPoly struct {
	c []*big.Int
	q *big.Int
}

func newModPoly(M int, q *big.Int) modPoly {
	c := make([]*big.Int, M)
	for i := range c {
		c[i] = new(big.Int)
	}
	return modPoly{c: c, q: q}
}

func (f modPoly) mulTrunc(g modPoly) modPoly {
	M := len(f.c)
	r := newModPoly(M, f.q)
	tmp := new(big.Int)
	for i, fi := range f.c {
		if fi.Sign() == 0 {
			continue
		}
		for j := 0; i+j < M && j < len(g.c); j++ {
			tmp.Mul(fi, g.c[j])
			r.c[i+j].Add(r.c[i+j], tmp)
		}
	}
	for _, ci := range r.c {
		ci.Mod(ci, f.q)
	}
	return r
}

func (f modPoly) powTrunc(k int) modPoly {
	M := len(f.c)
	r := newModPoly(M, f.q)
	r.c[0].SetInt64(1)
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

func (f modPoly) scalarMul(s *big.Int) modPoly {
	r := newModPoly(len(f.c), f.q)
	for i, ci := range f.c {
		r.c[i].Mul(ci, s)
		r.c[i].Mod(r.c[i], f.q)
	}
	return r
}

// invLinearMod inverts a + c*y modulo y^M: the geometric series
// a^-1 * sum (-c/a)^n y^n, with a invertible mod q.
func invLinearMod(a, c int64, M int, q *big.Int) (modPoly, error) {
	inv, err := padic.InvMod(padic.Mod(big.NewInt(a), q), q)
	if err != nil {
		return modPoly{}, err
	}
	r := newModPoly(M, q)
	step := new(big.Int).Mul(padic.Mod(big.NewInt(-c), q), inv)
	step.Mod(step, q)
	cur := new(big.Int).Set(inv)
	for n := 0; n < M; n++ {
		r.c[n].Set(cur)
		cur = new(big.Int).Mul(cur, step)
		cur.Mod(cur, q)
	}
	return r, nil
}

type ratPoly struct {
	c []*big.Rat
}

func newRatPoly(M int) ratPoly {
	c := make([]*big.Rat, M)
	for i := range c {
		c[i] = new(big.Rat)
	}
	return ratPoly{c: c}
}

func (f ratPoly) mulTrunc(g ratPoly) ratPoly {
	M := len(f.c)
	r := newRatPoly(M)
	tmp := new(big.Rat)
	for i, fi := range f.c {
		if fi.Sign() == 0 {
			continue
		}
		for j := 0; i+j < M && j < len(g.c); j++ {
			tmp.Mul(fi, g.c[j])
			r.c[i+j].Add(r.c[i+j], tmp)
		}
	}
	return r
}

func (f ratPoly) powTrunc(k int) ratPoly {
	r := newRatPoly(len(f.c))
	r.c[0].SetInt64(1)
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

func (f ratPoly) scalarMul(s *big.Rat) ratPoly {
	r := newRatPoly(len(f.c))
	for i, ci := range f.c {
		r.c[i].Mul(ci, s)
	}
	return r
}

// invLinearRat inverts a + c*y over the rationals, a != 0.
func invLinearRat(a, c int64, M int) (ratPoly, error) {
	if a == 0 {
		return ratPoly{}, ErrNotInvertible
	}
	r := newRatPoly(M)
	inv := big.NewRat(1, a)
	step := new(big.Rat).Mul(big.NewRat(-c, 1), inv)
	cur := new(big.Rat).Set(inv)
	for n := 0; n < M; n++ {
		r.c[n].Set(cur)
		cur = new(big.Rat).Mul(cur, step)
	}
	return r, nil
}
