package padic

import (
	"math/big"
	"testing"
)

func TestValuation(t *testing.T) {
	cases := []struct {
		x    int64
		p    int64
		want int
	}{
		{98, 7, 2},
		{-98, 7, 2},
		{1, 7, 0},
		{343, 7, 3},
		{10, 7, 0},
		{1024, 2, 10},
	}
	for _, c := range cases {
		if got := Valuation(big.NewInt(c.x), c.p); got != c.want {
			t.Fatalf("Valuation(%d, %d) = %d, want %d", c.x, c.p, got, c.want)
		}
		if got := Valuation64(c.x, c.p); got != c.want {
			t.Fatalf("Valuation64(%d, %d) = %d, want %d", c.x, c.p, got, c.want)
		}
	}
	if got := Valuation(new(big.Int), 7); got != ValInfinite {
		t.Fatalf("Valuation(0) = %d, want ValInfinite", got)
	}
}

func TestRatValuation(t *testing.T) {
	if got := RatValuation(big.NewRat(49, 3), 7); got != 2 {
		t.Fatalf("v_7(49/3) = %d, want 2", got)
	}
	if got := RatValuation(big.NewRat(3, 49), 7); got != -2 {
		t.Fatalf("v_7(3/49) = %d, want -2", got)
	}
	if got := RatValuation(new(big.Rat), 7); got != ValInfinite {
		t.Fatalf("v_7(0) = %d, want ValInfinite", got)
	}
}

func TestUnitPart(t *testing.T) {
	u, v := RatUnitPart(big.NewRat(98, 5), 7)
	if v != 2 {
		t.Fatalf("valuation = %d, want 2", v)
	}
	if u.Cmp(big.NewRat(2, 5)) != 0 {
		t.Fatalf("unit part = %s, want 2/5", u.RatString())
	}
	u, v = RatUnitPart(big.NewRat(5, 49), 7)
	if v != -2 || u.Cmp(big.NewRat(5, 1)) != 0 {
		t.Fatalf("unit part of 5/49: got %s, %d", u.RatString(), v)
	}
}

func TestRatMod(t *testing.T) {
	// 1/3 mod 49: 3*33 = 99 = 2*49 + 1
	got, err := RatMod(big.NewRat(1, 3), big.NewInt(49))
	if err != nil {
		t.Fatalf("RatMod: %v", err)
	}
	if got.Int64() != 33 {
		t.Fatalf("1/3 mod 49 = %d, want 33", got.Int64())
	}
	if _, err := RatMod(big.NewRat(1, 7), big.NewInt(49)); err == nil {
		t.Fatal("1/7 mod 49 should fail")
	}
	got, err = RatMod(big.NewRat(-5, 1), big.NewInt(7))
	if err != nil {
		t.Fatalf("RatMod: %v", err)
	}
	if got.Int64() != 2 {
		t.Fatalf("-5 mod 7 = %d, want 2", got.Int64())
	}
}

func TestInvMod(t *testing.T) {
	inv, err := InvMod(big.NewInt(3), big.NewInt(343))
	if err != nil {
		t.Fatalf("InvMod: %v", err)
	}
	prod := new(big.Int).Mul(inv, big.NewInt(3))
	if prod.Mod(prod, big.NewInt(343)).Int64() != 1 {
		t.Fatal("3 * InvMod(3) != 1 mod 343")
	}
	if _, err := InvMod(big.NewInt(49), big.NewInt(343)); err == nil {
		t.Fatal("inverse of a non-unit should fail")
	}
}

func TestBernoulli(t *testing.T) {
	cases := []struct {
		n    int
		want *big.Rat
	}{
		{0, big.NewRat(1, 1)},
		{1, big.NewRat(-1, 2)},
		{2, big.NewRat(1, 6)},
		{3, big.NewRat(0, 1)},
		{4, big.NewRat(-1, 30)},
		{5, big.NewRat(0, 1)},
		{6, big.NewRat(1, 42)},
		{8, big.NewRat(-1, 30)},
		{10, big.NewRat(5, 66)},
		{12, big.NewRat(-691, 2730)},
	}
	for _, c := range cases {
		if got := Bernoulli(c.n); got.Cmp(c.want) != 0 {
			t.Fatalf("B_%d = %s, want %s", c.n, got.RatString(), c.want.RatString())
		}
	}
}

func TestBinomial(t *testing.T) {
	if got := Binomial(5, 2); got.Int64() != 10 {
		t.Fatalf("C(5,2) = %d, want 10", got.Int64())
	}
	if got := Binomial(10, 0); got.Int64() != 1 {
		t.Fatalf("C(10,0) = %d, want 1", got.Int64())
	}
	if got := Binomial(12, 7); got.Int64() != 792 {
		t.Fatalf("C(12,7) = %d, want 792", got.Int64())
	}
}

func TestPowTable(t *testing.T) {
	tab := PowTable(7, 5)
	if len(tab) != 6 {
		t.Fatalf("table length %d, want 6", len(tab))
	}
	want := int64(1)
	for i, v := range tab {
		if v != want {
			t.Fatalf("7^%d = %d, want %d", i, v, want)
		}
		want *= 7
	}
}
