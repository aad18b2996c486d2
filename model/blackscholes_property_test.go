package model_test

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/meenmo/quantlib/model"
	"github.com/meenmo/quantlib/option"
)

// Property: C - P = S*exp(-qT) - K*exp(-rT) for every market state where
// both options price.
func TestProperty_PutCallParity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(1)

	properties := gopter.NewProperties(parameters)

	properties.Property("put-call parity holds", prop.ForAll(
		func(spot, strike, rate, q, vol, maturity float64) bool {
			m := model.BlackScholes{Spot: spot, Rate: rate, Vol: vol, DividendYield: q}
			call, err := option.New(option.Call, strike, maturity)
			if err != nil {
				return false
			}
			put, err := option.New(option.Put, strike, maturity)
			if err != nil {
				return false
			}
			cp, err := m.Price(call)
			if err != nil {
				return false
			}
			pp, err := m.Price(put)
			if err != nil {
				return false
			}
			forward := spot*math.Exp(-q*maturity) - strike*math.Exp(-rate*maturity)
			return math.Abs((cp-pp)-forward) < 1e-8
		},
		gen.Float64Range(50, 150),
		gen.Float64Range(50, 150),
		gen.Float64Range(0, 0.10),
		gen.Float64Range(0, 0.05),
		gen.Float64Range(0.05, 0.80),
		gen.Float64Range(0.1, 5),
	))

	properties.TestingRun(t)
}

// Property: a call price stays inside its arbitrage bounds and its delta
// inside [0, 1].
func TestProperty_CallBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(2)

	properties := gopter.NewProperties(parameters)

	properties.Property("call price and delta bounded", prop.ForAll(
		func(spot, strike, rate, vol, maturity float64) bool {
			m := model.BlackScholes{Spot: spot, Rate: rate, Vol: vol}
			call, err := option.New(option.Call, strike, maturity)
			if err != nil {
				return false
			}
			price, err := m.Price(call)
			if err != nil {
				return false
			}
			lower := math.Max(spot-strike*math.Exp(-rate*maturity), 0)
			if price < lower-1e-9 || price > spot+1e-9 {
				return false
			}
			delta, err := m.Delta(call)
			if err != nil {
				return false
			}
			return delta >= 0 && delta <= 1
		},
		gen.Float64Range(50, 150),
		gen.Float64Range(50, 150),
		gen.Float64Range(0, 0.10),
		gen.Float64Range(0.05, 0.80),
		gen.Float64Range(0.1, 5),
	))

	properties.TestingRun(t)
}

// Property: solving the model's own price recovers the volatility.
func TestProperty_ImpliedVolRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(3)

	properties := gopter.NewProperties(parameters)

	properties.Property("implied vol inverts the price", prop.ForAll(
		func(strike, vol, maturity float64) bool {
			m := model.BlackScholes{Spot: 100, Rate: 0.02, Vol: vol}
			call, err := option.New(option.Call, strike, maturity)
			if err != nil {
				return false
			}
			price, err := m.Price(call)
			if err != nil {
				return false
			}
			iv, err := model.SolveImpliedVol(m, call, price)
			if err != nil {
				return false
			}
			return math.Abs(iv-vol) < 1e-4
		},
		gen.Float64Range(80, 120),
		gen.Float64Range(0.10, 1.0),
		gen.Float64Range(0.25, 3),
	))

	properties.TestingRun(t)
}

// Property: payoffs are non-negative and zero on the out-of-the-money side.
func TestProperty_PayoffNonNegative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(4)

	properties := gopter.NewProperties(parameters)

	properties.Property("payoff is non-negative", prop.ForAll(
		func(strike, terminal float64, isPut bool) bool {
			kind := option.Call
			if isPut {
				kind = option.Put
			}
			o, err := option.New(kind, strike, 1)
			if err != nil {
				return false
			}
			payoff := o.Payoff(terminal)
			if payoff < 0 {
				return false
			}
			if isPut && terminal >= strike && payoff != 0 {
				return false
			}
			if !isPut && terminal <= strike && payoff != 0 {
				return false
			}
			return true
		},
		gen.Float64Range(1, 200),
		gen.Float64Range(0, 400),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
