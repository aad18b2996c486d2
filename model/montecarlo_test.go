package model_test

import (
	"errors"
	"math"
	"testing"

	"github.com/meenmo/quantlib/model"
	"github.com/meenmo/quantlib/option"
)

func mustMC(t *testing.T, paths int, seed int64) model.MonteCarlo {
	t.Helper()
	mc, err := model.NewMonteCarlo(100, 0.02, 0, 0.20, paths, seed)
	if err != nil {
		t.Fatalf("NewMonteCarlo error: %v", err)
	}
	return mc
}

func TestNewMonteCarlo_Validation(t *testing.T) {
	t.Parallel()

	if _, err := model.NewMonteCarlo(100, 0.02, 0, 0.20, 0, 1); !errors.Is(err, model.ErrBadPaths) {
		t.Fatalf("expected ErrBadPaths, got %v", err)
	}
	if _, err := model.NewMonteCarlo(0, 0.02, 0, 0.20, 1000, 1); !errors.Is(err, model.ErrDomain) {
		t.Fatalf("expected ErrDomain for zero spot, got %v", err)
	}
	if _, err := model.NewMonteCarlo(100, 0.02, 0, 0, 1000, 1); !errors.Is(err, model.ErrDomain) {
		t.Fatalf("expected ErrDomain for zero vol, got %v", err)
	}
}

func TestMonteCarlo_Reproducible(t *testing.T) {
	t.Parallel()

	call := mustOption(t, option.Call, 100, 1)
	a := mustMC(t, 20000, 42)
	b := mustMC(t, 20000, 42)

	pa, err := a.Price(call)
	if err != nil {
		t.Fatalf("Price error: %v", err)
	}
	pb, err := b.Price(call)
	if err != nil {
		t.Fatalf("Price error: %v", err)
	}
	if pa != pb {
		t.Fatalf("same seed, different prices: %.12f != %.12f", pa, pb)
	}

	c := mustMC(t, 20000, 43)
	pc, err := c.Price(call)
	if err != nil {
		t.Fatalf("Price error: %v", err)
	}
	if pa == pc {
		t.Fatalf("different seeds produced identical prices: %.12f", pa)
	}
}

func TestMonteCarlo_ConvergesToAnalytic(t *testing.T) {
	t.Parallel()

	bs := model.BlackScholes{Spot: 100, Rate: 0.02, Vol: 0.20}
	mc := mustMC(t, 200000, 42)

	for _, kind := range []option.Kind{option.Call, option.Put} {
		o := mustOption(t, kind, 100, 1)
		want, err := bs.Price(o)
		if err != nil {
			t.Fatalf("analytic Price error: %v", err)
		}
		res, err := mc.PriceDetail(o)
		if err != nil {
			t.Fatalf("PriceDetail error: %v", err)
		}
		if res.StdErr <= 0 || res.StdErr > 0.2 {
			t.Fatalf("%v: implausible standard error %g", kind, res.StdErr)
		}
		if diff := math.Abs(res.Price - want); diff > 5*res.StdErr {
			t.Fatalf("%v: simulated %.4f vs analytic %.4f, off by %.4f (> 5 std errs)", kind, res.Price, want, diff)
		}
	}
}

func TestMonteCarlo_GreeksMatchAnalytic(t *testing.T) {
	t.Parallel()

	bs := model.BlackScholes{Spot: 100, Rate: 0.02, Vol: 0.20}
	mc := mustMC(t, 100000, 42)
	call := mustOption(t, option.Call, 100, 1)

	wantDelta, _ := bs.Delta(call)
	delta, err := mc.Delta(call)
	if err != nil {
		t.Fatalf("Delta error: %v", err)
	}
	if math.Abs(delta-wantDelta) > 0.02 {
		t.Fatalf("simulated delta %.4f vs analytic %.4f", delta, wantDelta)
	}

	wantVega, _ := bs.Vega(call)
	vega, err := mc.Vega(call)
	if err != nil {
		t.Fatalf("Vega error: %v", err)
	}
	if math.Abs(vega-wantVega) > 2 {
		t.Fatalf("simulated vega %.2f vs analytic %.2f", vega, wantVega)
	}

	rho, err := mc.Rho(call)
	if err != nil {
		t.Fatalf("Rho error: %v", err)
	}
	// Call rho = K T exp(-rT) Phi(d2) ~= 49 for these inputs.
	if math.Abs(rho-49.0) > 2 {
		t.Fatalf("simulated rho %.2f, want ~49", rho)
	}

	// The second difference over a kinked payoff is noisy at this bump
	// size, so only sanity-check it.
	gamma, err := mc.Gamma(call)
	if err != nil {
		t.Fatalf("Gamma error: %v", err)
	}
	if math.IsNaN(gamma) || math.IsInf(gamma, 0) {
		t.Fatalf("gamma not finite: %g", gamma)
	}
}

func TestMonteCarlo_DeterministicGreeksShareDraws(t *testing.T) {
	t.Parallel()

	call := mustOption(t, option.Call, 100, 1)
	mc := mustMC(t, 5000, 7)

	d1, err := mc.Delta(call)
	if err != nil {
		t.Fatalf("Delta error: %v", err)
	}
	d2, err := mc.Delta(call)
	if err != nil {
		t.Fatalf("Delta error: %v", err)
	}
	if d1 != d2 {
		t.Fatalf("delta not reproducible: %.12f != %.12f", d1, d2)
	}
}
