package curve_test

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/meenmo/quantlib/curve"
)

// buildCurve assembles a three-knot curve from generated gaps, guaranteeing
// positive strictly-increasing maturities.
func buildCurve(m1, g1, g2, r1, r2, r3 float64) *curve.TermStructure {
	return curve.MustNew(
		[]float64{m1, m1 + g1, m1 + g1 + g2},
		[]float64{r1, r2, r3},
	)
}

// Property: on an upward-sloping positive curve (positive forwards) the
// discount factor is strictly decreasing in tenor and stays inside (0, 1].
func TestProperty_DiscountFactorMonotone(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(1)

	properties := gopter.NewProperties(parameters)

	properties.Property("discount factors decrease with tenor", prop.ForAll(
		func(m1, g1, g2, r1, i1, i2, t1, t2 float64) bool {
			ts := buildCurve(m1, g1, g2, r1, r1+i1, r1+i1+i2)
			lo, hi := t1, t2
			if lo > hi {
				lo, hi = hi, lo
			}
			if hi-lo < 1e-9 {
				return true
			}
			dfLo, dfHi := ts.DiscountFactor(lo), ts.DiscountFactor(hi)
			if dfLo <= 0 || dfLo > 1 || dfHi <= 0 || dfHi > 1 {
				return false
			}
			return dfHi < dfLo
		},
		gen.Float64Range(0.1, 2),
		gen.Float64Range(0.1, 3),
		gen.Float64Range(0.1, 5),
		gen.Float64Range(0.001, 0.05),
		gen.Float64Range(0, 0.02),
		gen.Float64Range(0, 0.02),
		gen.Float64Range(0.01, 15),
		gen.Float64Range(0.01, 15),
	))

	properties.TestingRun(t)
}

// Property: a zero parallel shift reproduces the curve at every tenor and
// a positive shift raises every knot by exactly the delta.
func TestProperty_ShiftRate(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(2)

	properties := gopter.NewProperties(parameters)

	properties.Property("ShiftRate(0) is the identity", prop.ForAll(
		func(m1, g1, g2, r1, r2, r3, at float64) bool {
			ts := buildCurve(m1, g1, g2, r1, r2, r3)
			shifted, err := ts.ShiftRate(0)
			if err != nil {
				return false
			}
			return shifted.ZeroRate(at) == ts.ZeroRate(at)
		},
		gen.Float64Range(0.1, 2),
		gen.Float64Range(0.1, 3),
		gen.Float64Range(0.1, 5),
		gen.Float64Range(0.001, 0.10),
		gen.Float64Range(0.001, 0.10),
		gen.Float64Range(0.001, 0.10),
		gen.Float64Range(0.01, 15),
	))

	properties.Property("small shift lowers every knot by delta", prop.ForAll(
		func(m1, g1, g2, r1, r2, r3, delta float64) bool {
			ts := buildCurve(m1, g1, g2, r1, r2, r3)
			shifted, err := ts.ShiftRate(delta)
			if err != nil {
				return false
			}
			// delta is below every rate, so no knot can drop.
			if shifted.Len() != ts.Len() {
				return false
			}
			for _, m := range ts.Maturities() {
				if math.Abs(shifted.ZeroRate(m)-(ts.ZeroRate(m)-delta)) > 1e-12 {
					return false
				}
			}
			return true
		},
		gen.Float64Range(0.1, 2),
		gen.Float64Range(0.1, 3),
		gen.Float64Range(0.1, 5),
		gen.Float64Range(0.01, 0.10),
		gen.Float64Range(0.01, 0.10),
		gen.Float64Range(0.01, 0.10),
		gen.Float64Range(0, 0.009),
	))

	properties.TestingRun(t)
}
