package dist

import (
	"fmt"
	"math/big"

	"padic-distributions/padic"
)

// FindScalar solves other = self * alpha. The scan skips unusable leading
// moments, pins alpha at the first usable one, then re-derives and sharpens
// it at every later index whose attainable precision beats the current one,
// checking consistency as it goes. The result carries the extra factor
// p^(other.ordp - self.ordp). M > 0 demands at least M attained digits in
// the non-classical case; check toggles the consistency sweep.
func (d *DistVector) FindScalar(other Distribution, M int, check bool) (*big.Rat, error) {
	o, ok := other.(*DistVector)
	if !ok {
		return nil, fmt.Errorf("mixing representations: %w", ErrUnsupportedOp)
	}
	n := len(d.moments)
	if n == 0 {
		return nil, ErrZeroDistribution
	}
	var alpha *big.Rat
	var err error
	if d.par.Classical {
		alpha, err = d.findScalarExact(o, check)
	} else {
		alpha, err = d.findScalarPadic(o, M, check)
	}
	if err != nil {
		return nil, err
	}
	if shift := o.ordp - d.ordp; shift != 0 {
		alpha.Mul(alpha, d.par.pPowRat(shift))
	}
	return alpha, nil
}

func (d *DistVector) findScalarExact(o *DistVector, check bool) (*big.Rat, error) {
	n := len(d.moments)
	i := 0
	for d.moments[i].Sign() == 0 {
		if i < len(o.moments) && o.moments[i].Sign() != 0 {
			return nil, ErrNotScalarMultiple
		}
		i++
		if i >= n {
			return nil, ErrZeroDistribution
		}
	}
	alpha := new(big.Rat)
	if i < len(o.moments) {
		alpha.Quo(o.moments[i], d.moments[i])
	}
	if check {
		prod := new(big.Rat)
		for j := i + 1; j < n && j < len(o.moments); j++ {
			prod.Mul(alpha, d.moments[j])
			if prod.Cmp(o.moments[j]) != 0 {
				return nil, ErrNotScalarMultiple
			}
		}
	}
	return alpha, nil
}

// findScalarPadic pins alpha as an integer residue modulo p^(n-i). A moment
// of self is usable at index i only while its valuation stays below the
// remaining budget n-i.
func (d *DistVector) findScalarPadic(o *DistVector, M int, check bool) (*big.Rat, error) {
	p := d.par.P
	n := len(d.moments)
	otherPr := len(o.moments)
	i := 0
	a := d.moments[i]
	v := padic.RatValuation(a, p)
	for v >= n-i {
		i++
		if i >= n {
			return nil, ErrZeroDistribution
		}
		a = d.moments[i]
		v = padic.RatValuation(a, p)
	}
	relprec := n - i - v
	alpha := new(big.Rat)
	if i < otherPr {
		res, err := d.quotientResidue(o.moments[i], a, n-i)
		if err != nil {
			return nil, err
		}
		alpha.SetInt(res)
	}
	for i < otherPr-1 {
		i++
		a = d.moments[i]
		if check {
			ok, err := d.congruentTimes(alpha, a, o.moments[i], n-i)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, ErrNotScalarMultiple
			}
		}
		v = padic.RatValuation(a, p)
		if n-i-v > relprec {
			// attainable precision improved; re-derive alpha
			relprec = n - i - v
			res, err := d.quotientResidue(o.moments[i], a, n-i)
			if err != nil {
				return nil, err
			}
			alpha.SetInt(res)
		}
	}
	if M > 0 && relprec < M {
		return nil, ErrInsufficientPrecision
	}
	return alpha, nil
}

// quotientResidue computes (x/a) mod p^e. A quotient with p left in its
// denominator means x is not divisible far enough for a to carry it.
func (d *DistVector) quotientResidue(x, a *big.Rat, e int) (*big.Int, error) {
	q := new(big.Rat).Quo(x, a)
	if padic.RatValuation(q, d.par.P) < 0 {
		return nil, ErrNotScalarMultiple
	}
	res, err := padic.RatMod(q, d.par.pPow(e))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrNotScalarMultiple)
	}
	return res, nil
}

// congruentTimes reports alpha*a == x modulo p^e.
func (d *DistVector) congruentTimes(alpha *big.Rat, a, x *big.Rat, e int) (bool, error) {
	if e <= 0 {
		return true, nil
	}
	q := d.par.pPow(e)
	lhs := new(big.Rat).Mul(alpha, a)
	lres, err := padic.RatMod(lhs, q)
	if err != nil {
		return false, fmt.Errorf("%v: %w", err, ErrNotScalarMultiple)
	}
	rres, err := padic.RatMod(x, q)
	if err != nil {
		return false, fmt.Errorf("%v: %w", err, ErrNotScalarMultiple)
	}
	return lres.Cmp(rres) == 0, nil
}
