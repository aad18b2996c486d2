// Package future prices equity forward contracts by cost of carry.
package future

import (
	"errors"
	"fmt"
	"math"

	"github.com/meenmo/quantlib/curve"
)

var (
	// ErrBadSpot is returned for a non-positive spot.
	ErrBadSpot = errors.New("spot must be positive")
	// ErrBadMaturity is returned for a non-positive maturity.
	ErrBadMaturity = errors.New("maturity must be positive")
)

// EquityFuture is a forward contract on an equity underlying with a
// continuous dividend yield. Rate is the financing rate over the contract
// tenor, supplied directly rather than read off a curve.
type EquityFuture struct {
	Spot          float64
	Rate          float64
	DividendYield float64
	Maturity      float64 // years
}

// New validates and builds an EquityFuture.
func New(spot, rate, dividendYield, maturity float64) (EquityFuture, error) {
	if spot <= 0 {
		return EquityFuture{}, fmt.Errorf("future.New: %w (got %g)", ErrBadSpot, spot)
	}
	if maturity <= 0 {
		return EquityFuture{}, fmt.Errorf("future.New: %w (got %g)", ErrBadMaturity, maturity)
	}
	return EquityFuture{
		Spot:          spot,
		Rate:          rate,
		DividendYield: dividendYield,
		Maturity:      maturity,
	}, nil
}

// Price returns the cost-of-carry forward price
// F0 = S0 * exp((r - q) * T).
func (f EquityFuture) Price() float64 {
	return f.Spot * math.Exp((f.Rate-f.DividendYield)*f.Maturity)
}

// Basis returns the carry basis, forward price minus spot.
func (f EquityFuture) Basis() float64 {
	return f.Price() - f.Spot
}

// LongValue returns the mark-to-market value of a long position at an
// intermediate time t, given the then-prevailing spot and a discounting
// curve for the remaining tenor:
//
//	Vt = St * exp(-q*(T-t)) - F0 * DF(T-t)
func (f EquityFuture) LongValue(t, spotT float64, crv curve.Discounter) float64 {
	remaining := f.Maturity - t
	return spotT*math.Exp(-f.DividendYield*remaining) - f.Price()*crv.DiscountFactor(remaining)
}
