package dist

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/tuneinsight/lattigo/v4/utils"
	"golang.org/x/crypto/sha3"
)

// DeriveSeed expands a label and the parent data into a 64-byte PRNG key
// with SHAKE-128. Equal labels over equal parents give equal streams.
func DeriveSeed(label string, par *Params) []byte {
	h := sha3.NewShake128()
	h.Write([]byte(label))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(par.P))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(par.K))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(par.PrecCap))
	h.Write(buf[:])
	if par.Classical {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	seed := make([]byte, 64)
	h.Read(seed)
	return seed
}

// RandomDistribution samples a normalized distribution with M moments,
// moment i uniform in [0, p^(M-i)), deterministically from the label.
// Residues come from rejection sampling a keyed PRNG stream, so the output
// does not depend on word size or platform.
func RandomDistribution(par *Params, label string, M int) (Distribution, error) {
	if M < 1 || M > par.PrecCap {
		return nil, fmt.Errorf("want 1 <= M <= %d, got %d: %w", par.PrecCap, M, ErrBadParams)
	}
	prng, err := utils.NewKeyedPRNG(DeriveSeed(label, par))
	if err != nil {
		return nil, fmt.Errorf("keyed PRNG: %w", err)
	}
	ms := make([]*big.Rat, M)
	for i := 0; i < M; i++ {
		q := par.pPow(M - i)
		n, err := uniformBig(prng, q)
		if err != nil {
			return nil, err
		}
		ms[i] = new(big.Rat).SetInt(n)
	}
	return FromRatMoments(par, ms, 0)
}

// uniformBig rejection-samples a uniform integer in [0, q).
func uniformBig(prng io.Reader, q *big.Int) (*big.Int, error) {
	nb := len(q.Bytes())
	topBits := q.BitLen() - 8*(nb-1)
	mask := byte(1<<topBits - 1)
	buf := make([]byte, nb)
	n := new(big.Int)
	for {
		if _, err := io.ReadFull(prng, buf); err != nil {
			return nil, err
		}
		buf[0] &= mask
		n.SetBytes(buf)
		if n.Cmp(q) < 0 {
			return n, nil
		}
	}
}
