package padic

import (
	"math/big"
	"sync"
)

// Bernoulli numbers B_0, B_1, B_2, ... with B_1 = -1/2, computed by the
// standard recurrence B_n = -1/(n+1) * sum_{k<n} C(n+1,k) B_k and memoized
// process-wide. The difference-equation solver touches the same small
// prefix over and over, so the table is grown once under a lock.
var bernoulliTable struct {
	mu   sync.Mutex
	vals []*big.Rat
}

// Bernoulli returns the n-th Bernoulli number as a fresh big.Rat.
func Bernoulli(n int) *big.Rat {
	if n < 0 {
		panic(ErrNegativeIndex)
	}
	bernoulliTable.mu.Lock()
	defer bernoulliTable.mu.Unlock()
	if len(bernoulliTable.vals) == 0 {
		bernoulliTable.vals = []*big.Rat{big.NewRat(1, 1)}
	}
	for m := len(bernoulliTable.vals); m <= n; m++ {
		// B_m = -1/(m+1) * sum_{k=0}^{m-1} C(m+1,k) B_k
		sum := new(big.Rat)
		term := new(big.Rat)
		for k := 0; k < m; k++ {
			term.SetInt(Binomial(m+1, k))
			term.Mul(term, bernoulliTable.vals[k])
			sum.Add(sum, term)
		}
		sum.Mul(sum, big.NewRat(-1, int64(m+1)))
		bernoulliTable.vals = append(bernoulliTable.vals, sum)
	}
	return new(big.Rat).Set(bernoulliTable.vals[n])
}

// Binomial returns C(n, k) as a big integer, zero outside 0 <= k <= n.
func Binomial(n, k int) *big.Int {
	if k < 0 || n < 0 || k > n {
		return new(big.Int)
	}
	return new(big.Int).Binomial(int64(n), int64(k))
}
