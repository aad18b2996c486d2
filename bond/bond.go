// Package bond values plain vanilla coupon bonds against a zero-coupon
// term structure.
package bond

import (
	"errors"
	"fmt"
	"math"

	"github.com/meenmo/quantlib/curve"
)

var (
	// ErrBadNominal is returned for a non-positive nominal.
	ErrBadNominal = errors.New("nominal must be positive")
	// ErrBadCoupon is returned for a negative coupon rate.
	ErrBadCoupon = errors.New("coupon rate must be non-negative")
	// ErrBadMaturity is returned for a non-positive maturity.
	ErrBadMaturity = errors.New("maturity must be positive")
	// ErrBadFrequency is returned for a payment frequency below one per year.
	ErrBadFrequency = errors.New("payment frequency must be a positive integer")
	// ErrEmptySchedule is returned when maturity and frequency produce no cashflows.
	ErrEmptySchedule = errors.New("cashflow schedule is empty")
)

// Cashflow is a single dated cash payment for a bond.
//
// Time is in years from valuation; amounts are in currency units.
type Cashflow struct {
	Time      float64
	Coupon    float64
	Principal float64
}

func (c Cashflow) Amount() float64 {
	return c.Coupon + c.Principal
}

// CouponBond is a fixed-coupon bullet bond: equal coupons every 1/Frequency
// years and the principal repaid with the final coupon.
type CouponBond struct {
	Nominal    float64
	CouponRate float64 // annualized decimal
	Maturity   float64 // years
	Frequency  int     // payments per year
}

// New validates and builds a CouponBond.
func New(nominal, couponRate, maturity float64, frequency int) (CouponBond, error) {
	b := CouponBond{
		Nominal:    nominal,
		CouponRate: couponRate,
		Maturity:   maturity,
		Frequency:  frequency,
	}
	switch {
	case nominal <= 0:
		return CouponBond{}, fmt.Errorf("bond.New: %w (got %g)", ErrBadNominal, nominal)
	case couponRate < 0:
		return CouponBond{}, fmt.Errorf("bond.New: %w (got %g)", ErrBadCoupon, couponRate)
	case maturity <= 0:
		return CouponBond{}, fmt.Errorf("bond.New: %w (got %g)", ErrBadMaturity, maturity)
	case frequency < 1:
		return CouponBond{}, fmt.Errorf("bond.New: %w (got %d)", ErrBadFrequency, frequency)
	}
	if int(maturity*float64(frequency)) < 1 {
		return CouponBond{}, fmt.Errorf("bond.New: maturity %g at frequency %d: %w",
			maturity, frequency, ErrEmptySchedule)
	}
	return b, nil
}

// Cashflows returns the payment schedule: floor(Maturity*Frequency) coupons
// of Nominal*CouponRate/Frequency at times i/Frequency, with the principal
// added to the final payment.
func (b CouponBond) Cashflows() []Cashflow {
	dt := 1 / float64(b.Frequency)
	n := int(b.Maturity * float64(b.Frequency))
	couponAmount := b.Nominal * b.CouponRate * dt

	flows := make([]Cashflow, n)
	for i := 1; i <= n; i++ {
		flows[i-1] = Cashflow{Time: float64(i) * dt, Coupon: couponAmount}
	}
	flows[n-1].Principal = b.Nominal
	return flows
}

// Price returns the present value of the bond at time zero.
func (b CouponBond) Price(crv curve.Discounter) float64 {
	return b.PriceAt(crv, 0)
}

// PriceAt returns the present value at valuation time t. Cashflows paying
// strictly before t are excluded (already paid); remaining cashflows are
// discounted over their residual tenor.
func (b CouponBond) PriceAt(crv curve.Discounter, t float64) float64 {
	pv := 0.0
	for _, cf := range b.Cashflows() {
		if cf.Time < t {
			continue
		}
		pv += cf.Amount() * crv.DiscountFactor(cf.Time-t)
	}
	return pv
}

// Duration returns the Macaulay duration: the PV-weighted average time to
// receipt of the bond's cashflows.
func (b CouponBond) Duration(crv curve.Discounter) float64 {
	var weighted, pv float64
	for _, cf := range b.Cashflows() {
		dcf := cf.Amount() * crv.DiscountFactor(cf.Time)
		weighted += cf.Time * dcf
		pv += dcf
	}
	return weighted / pv
}

// Convexity returns the second-order price sensitivity to yield, weighted
// by discounted cashflow timing.
func (b CouponBond) Convexity(crv curve.Discounter) float64 {
	dt := 1 / float64(b.Frequency)
	var weighted, pv float64
	for _, cf := range b.Cashflows() {
		dcf := cf.Amount() * crv.DiscountFactor(cf.Time)
		weighted += dcf * cf.Time * (cf.Time + dt)
		pv += dcf
	}
	return weighted / pv
}

// dirtyPriceAndDeriv returns the flat-yield price sum(CF*exp(-y*t)) and its
// derivative with respect to y.
func (b CouponBond) dirtyPriceAndDeriv(y float64) (float64, float64) {
	var price, deriv float64
	for _, cf := range b.Cashflows() {
		disc := math.Exp(-y * cf.Time)
		price += cf.Amount() * disc
		deriv += -cf.Time * cf.Amount() * disc
	}
	return price, deriv
}
