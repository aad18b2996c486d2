// Package option defines the European option contract descriptor shared by
// the analytic and simulation pricing models.
package option

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrBadStrike is returned for a non-positive strike.
	ErrBadStrike = errors.New("strike must be positive")
	// ErrBadMaturity is returned for a non-positive maturity.
	ErrBadMaturity = errors.New("maturity must be positive")
	// ErrBadKind is returned for a Kind outside {Call, Put}.
	ErrBadKind = errors.New("kind must be Call or Put")
)

// Kind tags the option variant. Payoff, price and delta all dispatch on it
// explicitly, so an unhandled variant is a programming error caught at the
// switch, not a silent fallthrough.
type Kind int

const (
	Call Kind = iota
	Put
)

func (k Kind) String() string {
	switch k {
	case Call:
		return "Call"
	case Put:
		return "Put"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Option is an immutable European contract: a strike, a maturity in years
// and a variant.
type Option struct {
	Kind     Kind
	Strike   float64
	Maturity float64
}

// New validates and builds an Option.
func New(kind Kind, strike, maturity float64) (Option, error) {
	if kind != Call && kind != Put {
		return Option{}, fmt.Errorf("option.New: %w (got %d)", ErrBadKind, int(kind))
	}
	if strike <= 0 {
		return Option{}, fmt.Errorf("option.New: %w (got %g)", ErrBadStrike, strike)
	}
	if maturity <= 0 {
		return Option{}, fmt.Errorf("option.New: %w (got %g)", ErrBadMaturity, maturity)
	}
	return Option{Kind: kind, Strike: strike, Maturity: maturity}, nil
}

// Payoff evaluates the contract against a terminal underlying price.
func (o Option) Payoff(terminal float64) float64 {
	switch o.Kind {
	case Put:
		return math.Max(o.Strike-terminal, 0)
	default:
		return math.Max(terminal-o.Strike, 0)
	}
}
