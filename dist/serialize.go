package dist

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strconv"
)

const (
	classVector = "dist.vector"
	classLong   = "dist.long"
)

type wireParent struct {
	P         int64 `json:"p"`
	K         int   `json:"k"`
	PrecCap   int   `json:"prec_cap"`
	Classical bool  `json:"classical"`
	FieldBase bool  `json:"field_base,omitempty"`
}

type wireDist struct {
	Class   string     `json:"class"`
	Parent  wireParent `json:"parent"`
	Ordp    int        `json:"ordp"`
	Moments []string   `json:"moments"`
	Skip    bool       `json:"skip_validation,omitempty"`
}

// Marshal encodes a distribution as JSON. Moments travel as decimal
// strings so word-size and exact rational values share one format.
func Marshal(v Distribution) ([]byte, error) {
	par := v.Params()
	w := wireDist{
		Parent: wireParent{
			P:         par.P,
			K:         par.K,
			PrecCap:   par.PrecCap,
			Classical: par.Classical,
			FieldBase: par.FieldBase,
		},
		Ordp: v.Ordp(),
	}
	switch d := v.(type) {
	case *DistVector:
		w.Class = classVector
		w.Moments = make([]string, len(d.moments))
		for i, m := range d.moments {
			w.Moments[i] = m.RatString()
		}
	case *DistLong:
		w.Class = classLong
		w.Moments = make([]string, len(d.moments))
		for i, m := range d.moments {
			w.Moments[i] = strconv.FormatInt(m, 10)
		}
	default:
		return nil, ErrUnsupportedOp
	}
	return json.MarshalIndent(w, "", "  ")
}

// Unmarshal decodes a distribution written by Marshal. The stored class
// decides the backing representation; a long payload additionally checks
// the bounded predicate of the rebuilt parent. A payload carrying
// skip_validation reuses the moments as stored, without the moment-count
// check or the band re-normalization.
func Unmarshal(data []byte) (Distribution, error) {
	var w wireDist
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	par, err := unmarshalParent(w.Parent)
	if err != nil {
		return nil, err
	}
	if !w.Skip && len(w.Moments) > par.PrecCap {
		return nil, fmt.Errorf("%d moments with prec_cap %d: %w", len(w.Moments), par.PrecCap, ErrMomentsTooLong)
	}
	switch w.Class {
	case classVector:
		if w.Ordp == OrdpInfinite {
			return CanonicalZero(par), nil
		}
		ms := make([]*big.Rat, len(w.Moments))
		for i, s := range w.Moments {
			r, ok := new(big.Rat).SetString(s)
			if !ok {
				return nil, fmt.Errorf("bad moment %q at index %d", s, i)
			}
			ms[i] = r
		}
		if w.Skip {
			return &DistVector{par: par, moments: ms, ordp: w.Ordp}, nil
		}
		return NewVector(par, ms, w.Ordp)
	case classLong:
		if !par.UseBounded() {
			return nil, fmt.Errorf("%s with p=%d prec_cap=%d: %w", classLong, par.P, par.PrecCap, ErrUnsupportedOp)
		}
		if w.Ordp == OrdpInfinite {
			return CanonicalZeroLong(par), nil
		}
		ms := make([]int64, len(w.Moments))
		for i, s := range w.Moments {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("bad moment %q at index %d", s, i)
			}
			ms[i] = n
		}
		if w.Skip {
			return &DistLong{par: par, moments: ms, ordp: w.Ordp}, nil
		}
		return NewLong(par, ms, w.Ordp)
	default:
		return nil, fmt.Errorf("unknown class %q", w.Class)
	}
}

func unmarshalParent(wp wireParent) (*Params, error) {
	if wp.Classical {
		par, err := NewClassical(wp.P, wp.K)
		if err != nil {
			return nil, err
		}
		if wp.PrecCap != 0 && wp.PrecCap != par.PrecCap {
			return nil, fmt.Errorf("classical prec_cap %d, want %d: %w", wp.PrecCap, par.PrecCap, ErrBadParams)
		}
		return par, nil
	}
	if wp.FieldBase {
		return NewFieldParams(wp.P, wp.K, wp.PrecCap)
	}
	return NewParams(wp.P, wp.K, wp.PrecCap)
}

// Save writes a distribution to path as JSON.
func Save(path string, v Distribution) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a distribution written by Save.
func Load(path string) (Distribution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
