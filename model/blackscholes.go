// Package model provides the option pricing models: the closed-form
// Black-Scholes model with Greeks, the implied-volatility solver that
// inverts it, and the Monte Carlo simulation pricer.
//
// Models are stateless value objects parameterized by market state at
// construction; every pricing call is a pure function of the model fields
// and the option argument.
package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/meenmo/quantlib/option"
)

// ErrDomain is returned for degenerate pricing inputs (non-positive
// volatility, maturity, spot or strike) that would produce undefined or
// infinite results.
var ErrDomain = errors.New("degenerate pricing input")

// BlackScholes prices European options in closed form.
//
// DividendYield and RepoRate both reduce the risk-neutral drift (combined
// cost of carry); only the dividend yield decays the spot leg.
type BlackScholes struct {
	Spot          float64
	Rate          float64
	Vol           float64
	DividendYield float64
	RepoRate      float64
}

func (m BlackScholes) validate(o option.Option) error {
	switch {
	case m.Vol <= 0:
		return fmt.Errorf("BlackScholes: volatility %g: %w", m.Vol, ErrDomain)
	case m.Spot <= 0:
		return fmt.Errorf("BlackScholes: spot %g: %w", m.Spot, ErrDomain)
	case o.Strike <= 0:
		return fmt.Errorf("BlackScholes: strike %g: %w", o.Strike, ErrDomain)
	case o.Maturity <= 0:
		return fmt.Errorf("BlackScholes: maturity %g: %w", o.Maturity, ErrDomain)
	}
	return nil
}

// d1 assumes validate has passed.
func (m BlackScholes) d1(strike, maturity float64) float64 {
	carry := m.Rate - m.DividendYield - m.RepoRate
	return (math.Log(m.Spot/strike) + (carry+0.5*m.Vol*m.Vol)*maturity) /
		(m.Vol * math.Sqrt(maturity))
}

func (m BlackScholes) d2(strike, maturity float64) float64 {
	return m.d1(strike, maturity) - m.Vol*math.Sqrt(maturity)
}

// Price returns the present value of the option.
func (m BlackScholes) Price(o option.Option) (float64, error) {
	if err := m.validate(o); err != nil {
		return 0, err
	}
	d1 := m.d1(o.Strike, o.Maturity)
	d2 := d1 - m.Vol*math.Sqrt(o.Maturity)
	spotLeg := m.Spot * math.Exp(-m.DividendYield*o.Maturity)
	strikeLeg := o.Strike * math.Exp(-m.Rate*o.Maturity)

	switch o.Kind {
	case option.Put:
		return strikeLeg*normCDF(-d2) - spotLeg*normCDF(-d1), nil
	default:
		return spotLeg*normCDF(d1) - strikeLeg*normCDF(d2), nil
	}
}

// Delta returns dPrice/dSpot: Phi(d1) for a call, Phi(d1)-1 for a put.
func (m BlackScholes) Delta(o option.Option) (float64, error) {
	if err := m.validate(o); err != nil {
		return 0, err
	}
	d1 := m.d1(o.Strike, o.Maturity)
	if o.Kind == option.Put {
		return normCDF(d1) - 1, nil
	}
	return normCDF(d1), nil
}

// Gamma returns d2Price/dSpot2, identical for calls and puts.
func (m BlackScholes) Gamma(o option.Option) (float64, error) {
	if err := m.validate(o); err != nil {
		return 0, err
	}
	d1 := m.d1(o.Strike, o.Maturity)
	return normPDF(d1) / (m.Spot * m.Vol * math.Sqrt(o.Maturity)), nil
}

// Vega returns dPrice/dVol per unit of volatility.
func (m BlackScholes) Vega(o option.Option) (float64, error) {
	if err := m.validate(o); err != nil {
		return 0, err
	}
	d1 := m.d1(o.Strike, o.Maturity)
	return m.Spot * normPDF(d1) * math.Sqrt(o.Maturity), nil
}

// WithVol returns a copy of the model with the volatility replaced.
// Used by the implied-volatility solver.
func (m BlackScholes) WithVol(vol float64) BlackScholes {
	m.Vol = vol
	return m
}
