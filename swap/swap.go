// Package swap values plain vanilla interest rate swaps on a single curve:
// the discount curve doubles as the projection curve and the floating leg
// PV telescopes to notional times a difference of discount factors.
package swap

import (
	"errors"
	"fmt"

	"github.com/meenmo/quantlib/curve"
)

var (
	// ErrBadNotional is returned for a non-positive notional.
	ErrBadNotional = errors.New("notional must be positive")
	// ErrEmptySchedule is returned when no payment times are provided.
	ErrEmptySchedule = errors.New("payment schedule is empty")
	// ErrBadSchedule is returned when payment times are not positive and
	// strictly increasing.
	ErrBadSchedule = errors.New("payment times must be positive and strictly increasing")
)

// PV contains present values for each leg and the net to the payer of fixed.
type PV struct {
	FixedLegPV    float64
	FloatingLegPV float64
	TotalPV       float64
}

// InterestRateSwap pays fixed and receives floating on a shared payment
// schedule expressed in year fractions.
type InterestRateSwap struct {
	Notional     float64
	FixedRate    float64 // annualized decimal
	PaymentTimes []float64
}

// New validates and builds an InterestRateSwap. The payment times are
// copied, so the caller's slice is not retained.
func New(notional, fixedRate float64, paymentTimes []float64) (InterestRateSwap, error) {
	if notional <= 0 {
		return InterestRateSwap{}, fmt.Errorf("swap.New: %w (got %g)", ErrBadNotional, notional)
	}
	if len(paymentTimes) == 0 {
		return InterestRateSwap{}, fmt.Errorf("swap.New: %w", ErrEmptySchedule)
	}
	times := make([]float64, len(paymentTimes))
	copy(times, paymentTimes)
	prev := 0.0
	for _, t := range times {
		if t <= prev {
			return InterestRateSwap{}, fmt.Errorf("swap.New: %w (time %g after %g)", ErrBadSchedule, t, prev)
		}
		prev = t
	}
	return InterestRateSwap{Notional: notional, FixedRate: fixedRate, PaymentTimes: times}, nil
}

// remaining returns the payment times at or after valuation time t.
func (s InterestRateSwap) remaining(t float64) []float64 {
	for i, pt := range s.PaymentTimes {
		if pt >= t {
			return s.PaymentTimes[i:]
		}
	}
	return nil
}

// annuity is sum(accrual_i * DF(time_i - t)) over the remaining schedule.
// The first remaining accrual is measured from the valuation time itself;
// later accruals span consecutive payment times.
func (s InterestRateSwap) annuity(crv curve.Discounter, t float64) float64 {
	sum := 0.0
	prev := t
	for _, pt := range s.PaymentTimes {
		if pt < t {
			continue
		}
		sum += (pt - prev) * crv.DiscountFactor(pt-t)
		prev = pt
	}
	return sum
}

// PVFixedLeg returns the present value of the fixed leg at valuation time t.
func (s InterestRateSwap) PVFixedLeg(crv curve.Discounter, t float64) float64 {
	return s.Notional * s.FixedRate * s.annuity(crv, t)
}

// PVFloatingLeg returns the present value of the floating leg at valuation
// time t using the single-curve telescoping identity
// Notional * (DF(t0') - DF(tN')), where t0' and tN' are the first and last
// remaining payment times shifted by -t.
func (s InterestRateSwap) PVFloatingLeg(crv curve.Discounter, t float64) float64 {
	rem := s.remaining(t)
	if len(rem) == 0 {
		return 0
	}
	first := rem[0] - t
	last := rem[len(rem)-1] - t
	return s.Notional * (crv.DiscountFactor(first) - crv.DiscountFactor(last))
}

// SwapRate returns the par fixed rate that zeroes the swap value at
// valuation time t.
func (s InterestRateSwap) SwapRate(crv curve.Discounter, t float64) float64 {
	rem := s.remaining(t)
	if len(rem) == 0 {
		return 0
	}
	first := rem[0] - t
	last := rem[len(rem)-1] - t
	return (crv.DiscountFactor(first) - crv.DiscountFactor(last)) / s.annuity(crv, t)
}

// PVByLeg returns both leg PVs and the net value to the payer of fixed.
func (s InterestRateSwap) PVByLeg(crv curve.Discounter, t float64) PV {
	fixed := s.PVFixedLeg(crv, t)
	floating := s.PVFloatingLeg(crv, t)
	return PV{
		FixedLegPV:    fixed,
		FloatingLegPV: floating,
		TotalPV:       floating - fixed,
	}
}

// Price returns the swap value to the payer of fixed (receiver of
// floating) at valuation time t.
func (s InterestRateSwap) Price(crv curve.Discounter, t float64) float64 {
	return s.PVByLeg(crv, t).TotalPV
}
