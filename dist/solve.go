package dist

import (
	"math/big"
	"os"

	"padic-distributions/padic"
)

// SolveDiffEqn solves mu | Delta = self for the difference operator
// Delta(mu) = mu|[1,1;0,1] - mu. The input must have total measure zero.
//
// For each m >= 1 the scalar c = moment(m)/m is distributed over the
// solution: m*(-1/2)*c lands on slot m (the lone odd Bernoulli number), and
// binomial(j, m-1)*B_((j-m+1)/2)*c on every slot j >= m-1 of matching
// parity, all over the fraction field. The result is then re-integralized:
// the minimum p-valuation over the solved entries moves into ordp, and the
// moments are truncated to the uniform precision actually attained. The
// divisions by m and by Bernoulli denominators are where precision is lost;
// each slot's attainable precision is tracked explicitly.
func (d *DistVector) SolveDiffEqn() (Distribution, error) {
	if d.isCanonicalZero() {
		return d.Clone(), nil
	}
	M := len(d.moments)
	if M == 0 {
		return d.Clone(), nil
	}
	if d.moments[0].Sign() != 0 {
		return nil, ErrNonzeroFirstMoment
	}
	if M == 1 {
		return &DistVector{par: d.par, moments: nil, ordp: 0}, nil
	}
	p := d.par.P

	v := make([]*big.Rat, M)
	caps := make([]int, M)
	for j := range v {
		v[j] = new(big.Rat)
		caps[j] = padic.ValInfinite
	}
	minhalf := big.NewRat(-1, 2)
	term := new(big.Rat)
	for m := 1; m < M; m++ {
		mom, err := d.Moment(m)
		if err != nil {
			return nil, err
		}
		scalar := mom.Quo(mom, new(big.Rat).SetInt64(int64(m)))
		vpm := 0
		if !d.par.Classical {
			vpm = padic.Valuation64(int64(m), p)
		}
		// moment m is known mod p^(ordp+M-m); dividing by m costs v_p(m)
		base := d.ordp + M - m - vpm

		// slot m: factor m * (-1/2); its valuation cancels the loss from
		// dividing by m, so the slot keeps ordp+M-m digits from this term
		term.SetInt64(int64(m))
		term.Mul(term, minhalf)
		term.Mul(term, scalar)
		v[m].Add(v[m], term)
		if !d.par.Classical && base+vpm < caps[m] {
			caps[m] = base + vpm
		}

		for j := m - 1; j < M; j += 2 {
			f := new(big.Rat).SetInt(padic.Binomial(j, m-1))
			f.Mul(f, padic.Bernoulli(j-m+1))
			if f.Sign() != 0 {
				term.Mul(f, scalar)
				v[j].Add(v[j], term)
			}
			if !d.par.Classical {
				c := base + padic.RatValuation(f, p)
				if f.Sign() == 0 {
					c = base
				}
				if c < caps[j] {
					caps[j] = c
				}
			}
		}
	}

	if d.par.Classical {
		return &DistVector{par: d.par, moments: v, ordp: 0}, nil
	}

	mu := padic.ValInfinite
	for _, w := range v {
		if val := padic.RatValuation(w, p); val < mu {
			mu = val
		}
	}
	if mu == padic.ValInfinite {
		return CanonicalZero(d.par), nil
	}

	// stored scale shifts by p^mu; slot j is then good mod p^(caps[j]-mu),
	// and the uniform relative precision is the largest N' with
	// caps[j]-mu >= N'-j for every slot
	rel := M
	for j := 0; j < M; j++ {
		if c := caps[j] - mu + j; c < rel {
			rel = c
		}
	}
	if rel < 0 {
		rel = 0
	}
	dbg(os.Stderr, "[SolveDiffEqn] M=%d mu=%d rel=%d\n", M, mu, rel)

	shift := d.par.pPowRat(-mu)
	ms := make([]*big.Rat, rel)
	for j := 0; j < rel; j++ {
		w := new(big.Rat).Mul(v[j], shift)
		res, err := padic.RatMod(w, d.par.pPow(rel-j))
		if err != nil {
			return nil, err
		}
		ms[j] = new(big.Rat).SetInt(res)
	}
	return &DistVector{par: d.par, moments: ms, ordp: mu}, nil
}
