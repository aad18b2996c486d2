package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/meenmo/quantlib/option"
)

// ErrNoSolution is returned when no volatility in the search bracket
// reprices the model to the observed market price. An unpriceable quote is
// an expected occurrence (price outside arbitrage-free bounds), so callers
// report it rather than retrying.
var ErrNoSolution = errors.New("implied volatility: no root in bracket")

const (
	ivVolLo     = 1e-6
	ivVolHi     = 5.0
	ivTolerance = 1e-8
	ivMaxIter   = 200
)

// SolveImpliedVol inverts the Black-Scholes model against an observed
// market price, solving price(vol) - marketPrice = 0 by bisection over
// vol in [1e-6, 5.0].
//
// The model's own Vol field is ignored. On failure the volatility result
// is NaN alongside ErrNoSolution.
func SolveImpliedVol(m BlackScholes, o option.Option, marketPrice float64) (float64, error) {
	objective := func(vol float64) (float64, error) {
		price, err := m.WithVol(vol).Price(o)
		if err != nil {
			return 0, err
		}
		return price - marketPrice, nil
	}

	lo, hi := ivVolLo, ivVolHi
	fLo, err := objective(lo)
	if err != nil {
		return math.NaN(), fmt.Errorf("SolveImpliedVol: %w", err)
	}
	fHi, err := objective(hi)
	if err != nil {
		return math.NaN(), fmt.Errorf("SolveImpliedVol: %w", err)
	}

	if fLo == 0 {
		return lo, nil
	}
	if fHi == 0 {
		return hi, nil
	}
	if fLo*fHi > 0 {
		return math.NaN(), fmt.Errorf("SolveImpliedVol: price %g for %s(K=%g, T=%g): %w",
			marketPrice, o.Kind, o.Strike, o.Maturity, ErrNoSolution)
	}

	for iter := 0; iter < ivMaxIter; iter++ {
		mid := 0.5 * (lo + hi)
		fMid, err := objective(mid)
		if err != nil {
			return math.NaN(), fmt.Errorf("SolveImpliedVol: %w", err)
		}
		if math.Abs(fMid) < ivTolerance || hi-lo < ivTolerance {
			return mid, nil
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo, fLo = mid, fMid
		}
	}
	return 0.5 * (lo + hi), nil
}
