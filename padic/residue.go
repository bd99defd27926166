package padic

import (
	"fmt"
	"math/big"
)

// Mod returns the canonical residue of x in [0, m).
func Mod(x, m *big.Int) *big.Int {
	r := new(big.Int).Mod(x, m)
	if r.Sign() < 0 {
		r.Add(r, m)
	}
	return r
}

// InvMod returns the inverse of a modulo m, or ErrNotPUnit when gcd(a,m) != 1.
func InvMod(a, m *big.Int) (*big.Int, error) {
	inv := new(big.Int).ModInverse(a, m)
	if inv == nil {
		return nil, fmt.Errorf("inverse of %s mod %s: %w", a, m, ErrNotPUnit)
	}
	return inv, nil
}

// RatMod reduces a rational to its canonical integer residue modulo m,
// inverting the denominator. Fails with ErrNotPUnit when the denominator
// shares a factor with m.
func RatMod(r *big.Rat, m *big.Int) (*big.Int, error) {
	num := Mod(r.Num(), m)
	if r.IsInt() {
		return num, nil
	}
	inv, err := InvMod(r.Denom(), m)
	if err != nil {
		return nil, err
	}
	num.Mul(num, inv)
	return num.Mod(num, m), nil
}

// RatIsIntegral reports whether r has no p in its denominator.
func RatIsIntegral(r *big.Rat, p int64) bool {
	return Valuation(r.Denom(), p) == 0
}
