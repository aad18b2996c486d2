package bond

import (
	"fmt"
	"math"
)

const (
	yieldTolerance = 1e-12
	yieldMaxIter   = 100
	yieldFloor     = -0.05
	yieldCeiling   = 0.50
)

// YieldToMaturity solves for the flat continuously-compounded yield y such
// that discounting every cashflow at y reproduces the target price.
//
// The solver uses Newton-Raphson with analytic first derivative, clamped to
// [-5%, 50%].
func (b CouponBond) YieldToMaturity(targetPrice float64) (float64, error) {
	if targetPrice <= 0 {
		return 0, fmt.Errorf("YieldToMaturity: target price must be positive (got %g)", targetPrice)
	}

	// Initial guess: mid-range (2.5%).
	y := clamp(0.025, yieldFloor, yieldCeiling)

	for iter := 0; iter < yieldMaxIter; iter++ {
		price, dPdy := b.dirtyPriceAndDeriv(y)
		f := price - targetPrice

		if math.Abs(f) < yieldTolerance {
			return y, nil
		}
		if math.Abs(dPdy) < 1e-15 {
			return y, fmt.Errorf("YieldToMaturity: derivative too small at iter %d", iter)
		}

		y = clamp(y-f/dPdy, yieldFloor, yieldCeiling)
	}
	return y, fmt.Errorf("YieldToMaturity: did not converge after %d iterations", yieldMaxIter)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
