package padic

import "math/big"

// ValInfinite is the sentinel valuation of an exact zero. It is large enough
// to dominate every finite valuation met in practice while staying safely
// addable to moment indices and ordp shifts without overflow.
const ValInfinite = 1 << 30

// Valuation returns v_p(x), the exponent of p in x, and ValInfinite for x = 0.
func Valuation(x *big.Int, p int64) int {
	if x.Sign() == 0 {
		return ValInfinite
	}
	bp := big.NewInt(p)
	v := 0
	rem := new(big.Int)
	cur := new(big.Int).Set(x)
	for {
		q, r := new(big.Int).QuoRem(cur, bp, rem)
		if r.Sign() != 0 {
			return v
		}
		cur.Set(q)
		v++
	}
}

// Valuation64 returns v_p(x) for a native integer, ValInfinite for x = 0.
func Valuation64(x int64, p int64) int {
	if x == 0 {
		return ValInfinite
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

// RatValuation returns v_p(r) = v_p(num) - v_p(den), ValInfinite for r = 0.
func RatValuation(r *big.Rat, p int64) int {
	if r.Sign() == 0 {
		return ValInfinite
	}
	return Valuation(r.Num(), p) - Valuation(r.Denom(), p)
}

// UnitPart writes x as p^v * u with p not dividing u and returns (u, v).
// For x = 0 it returns (0, ValInfinite).
func UnitPart(x *big.Int, p int64) (*big.Int, int) {
	if x.Sign() == 0 {
		return new(big.Int), ValInfinite
	}
	v := Valuation(x, p)
	u := new(big.Int).Quo(x, Pow(p, v))
	return u, v
}

// RatUnitPart writes r as p^v * u with u a p-adic unit and returns (u, v).
// For r = 0 it returns (0, ValInfinite).
func RatUnitPart(r *big.Rat, p int64) (*big.Rat, int) {
	if r.Sign() == 0 {
		return new(big.Rat), ValInfinite
	}
	v := RatValuation(r, p)
	u := new(big.Rat).Set(r)
	if v > 0 {
		u.Quo(u, new(big.Rat).SetInt(Pow(p, v)))
	} else if v < 0 {
		u.Mul(u, new(big.Rat).SetInt(Pow(p, -v)))
	}
	return u, v
}

// Pow returns p^e as a big integer. e must be >= 0.
func Pow(p int64, e int) *big.Int {
	if e < 0 {
		panic(ErrNegativeIndex)
	}
	return new(big.Int).Exp(big.NewInt(p), big.NewInt(int64(e)), nil)
}

// PowTable returns the table [p^0, p^1, ..., p^cap] as native integers.
// The caller guarantees p^cap fits an int64; the distribution factory only
// requests tables inside its overflow band.
func PowTable(p int64, cap int) []int64 {
	tbl := make([]int64, cap+1)
	tbl[0] = 1
	for i := 1; i <= cap; i++ {
		tbl[i] = tbl[i-1] * p
	}
	return tbl
}
