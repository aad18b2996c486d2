// Package curve implements the zero-coupon term structure used for
// discounting throughout the library.
//
// A TermStructure is immutable after construction: transformations such as
// ShiftRate and ShiftTime return new instances and never mutate the
// receiver, so a single curve can be shared by any number of concurrent
// pricing calls without synchronization.
package curve

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrLengthMismatch is returned when maturities and rates differ in length.
	ErrLengthMismatch = errors.New("maturities and rates must have same length")
	// ErrEmptyCurve is returned when a curve would be constructed with no knots.
	ErrEmptyCurve = errors.New("term structure has no knots")
	// ErrBadMaturity is returned for non-positive or non-increasing knot maturities.
	ErrBadMaturity = errors.New("knot maturities must be positive and strictly increasing")
)

// Discounter provides zero rates and discount factors for valuation.
//
// Instruments depend on this interface rather than on the concrete
// TermStructure so tests can substitute flat or synthetic curves.
type Discounter interface {
	ZeroRate(t float64) float64
	DiscountFactor(t float64) float64
}

// TermStructure is an ordered set of (maturity, zero rate) knots with
// linear interpolation in rate between knots.
//
// Rates are annualized continuously-compounded decimals (0.03 == 3%/year).
type TermStructure struct {
	maturities []float64
	rates      []float64
}

// New builds a TermStructure from parallel maturity and rate slices.
//
// The knots are copied and sorted by maturity, so the caller's slices are
// not retained. Maturities must be positive and, after sorting, strictly
// increasing (no duplicates).
func New(maturities, rates []float64) (*TermStructure, error) {
	if len(maturities) != len(rates) {
		return nil, fmt.Errorf("curve.New: %w (%d maturities, %d rates)",
			ErrLengthMismatch, len(maturities), len(rates))
	}
	if len(maturities) == 0 {
		return nil, fmt.Errorf("curve.New: %w", ErrEmptyCurve)
	}

	type knot struct{ t, r float64 }
	knots := make([]knot, len(maturities))
	for i := range maturities {
		knots[i] = knot{maturities[i], rates[i]}
	}
	sort.Slice(knots, func(i, j int) bool { return knots[i].t < knots[j].t })

	ts := &TermStructure{
		maturities: make([]float64, len(knots)),
		rates:      make([]float64, len(knots)),
	}
	for i, k := range knots {
		if k.t <= 0 {
			return nil, fmt.Errorf("curve.New: %w (maturity %g)", ErrBadMaturity, k.t)
		}
		if i > 0 && k.t == knots[i-1].t {
			return nil, fmt.Errorf("curve.New: %w (duplicate maturity %g)", ErrBadMaturity, k.t)
		}
		ts.maturities[i] = k.t
		ts.rates[i] = k.r
	}
	return ts, nil
}

// MustNew is New for static curve literals in tests and examples; it panics
// on invalid input.
func MustNew(maturities, rates []float64) *TermStructure {
	ts, err := New(maturities, rates)
	if err != nil {
		panic(err)
	}
	return ts
}

// Len returns the number of knots.
func (ts *TermStructure) Len() int { return len(ts.maturities) }

// Maturities returns a copy of the knot maturities in ascending order.
func (ts *TermStructure) Maturities() []float64 {
	out := make([]float64, len(ts.maturities))
	copy(out, ts.maturities)
	return out
}

// Rates returns a copy of the knot zero rates, ordered as Maturities.
func (ts *TermStructure) Rates() []float64 {
	out := make([]float64, len(ts.rates))
	copy(out, ts.rates)
	return out
}

// MaxMaturity returns the largest knot maturity.
func (ts *TermStructure) MaxMaturity() float64 {
	return ts.maturities[len(ts.maturities)-1]
}

// ZeroRate returns the annualized zero-coupon rate for maturity t.
//
// An exact knot hit returns the stored rate. Below the first knot the rate
// scales linearly with time, r(t) = r(t0)*t/t0. Above the last knot the
// curve is flat at the last rate. Between knots the rate is linearly
// interpolated.
func (ts *TermStructure) ZeroRate(t float64) float64 {
	i := sort.SearchFloat64s(ts.maturities, t)

	if i < len(ts.maturities) && ts.maturities[i] == t {
		return ts.rates[i]
	}
	if i == 0 {
		// Short-end extrapolation: rate proportional to time.
		return ts.rates[0] * t / ts.maturities[0]
	}
	if i == len(ts.maturities) {
		return ts.rates[len(ts.rates)-1]
	}

	t1, t2 := ts.maturities[i-1], ts.maturities[i]
	r1, r2 := ts.rates[i-1], ts.rates[i]
	w := (t - t1) / (t2 - t1)
	return r1 + w*(r2-r1)
}

// DiscountFactor returns DF(t) = exp(-r(t)*t).
func (ts *TermStructure) DiscountFactor(t float64) float64 {
	return math.Exp(-ts.ZeroRate(t) * t)
}

// ShiftRate returns a new curve with every zero rate reduced by delta.
//
// Knots whose shifted rate would go negative are dropped. If the shift
// would drop every knot the curve is degenerate and ErrEmptyCurve is
// returned instead of a curve with undefined ZeroRate.
func (ts *TermStructure) ShiftRate(delta float64) (*TermStructure, error) {
	maturities := make([]float64, 0, len(ts.maturities))
	rates := make([]float64, 0, len(ts.rates))
	for i, m := range ts.maturities {
		r := ts.rates[i] - delta
		if r < 0 {
			continue
		}
		maturities = append(maturities, m)
		rates = append(rates, r)
	}
	if len(maturities) == 0 {
		return nil, fmt.Errorf("curve.ShiftRate: shift %g drops every knot: %w", delta, ErrEmptyCurve)
	}
	return New(maturities, rates)
}

// ShiftTime returns the curve translated forward in time by delta: the new
// curve's rate at maturity m is the current rate at m-delta.
//
// Knots whose shifted sample point m-delta falls outside
// [0, MaxMaturity) are dropped; ErrEmptyCurve is returned if none remain.
func (ts *TermStructure) ShiftTime(delta float64) (*TermStructure, error) {
	maxT := ts.MaxMaturity()
	maturities := make([]float64, 0, len(ts.maturities))
	rates := make([]float64, 0, len(ts.rates))
	for _, m := range ts.maturities {
		shifted := m - delta
		if shifted < 0 || shifted >= maxT {
			continue
		}
		maturities = append(maturities, m)
		rates = append(rates, ts.ZeroRate(shifted))
	}
	if len(maturities) == 0 {
		return nil, fmt.Errorf("curve.ShiftTime: shift %g drops every knot: %w", delta, ErrEmptyCurve)
	}
	return New(maturities, rates)
}
