package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meenmo/quantlib/bond"
	"github.com/meenmo/quantlib/future"
	"github.com/meenmo/quantlib/marketdata"
	"github.com/meenmo/quantlib/model"
	"github.com/meenmo/quantlib/option"
	"github.com/meenmo/quantlib/swap"
)

func snapshotFlag(cmd *cobra.Command) string {
	s, _ := cmd.Flags().GetString("snapshot")
	return s
}

func newCurveCmd(a *app) *cobra.Command {
	var (
		t         float64
		shiftRate float64
		shiftTime float64
	)
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Inspect the term structure",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ts, err := a.loadCurve(snapshotFlag(cmd))
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("shift-rate") {
				if ts, err = ts.ShiftRate(shiftRate); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("shift-time") {
				if ts, err = ts.ShiftTime(shiftTime); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("t") {
				fmt.Printf("zero_rate(%g) = %.6f\n", t, ts.ZeroRate(t))
				fmt.Printf("discount_factor(%g) = %.6f\n", t, ts.DiscountFactor(t))
				return nil
			}
			maturities, rates := ts.Maturities(), ts.Rates()
			fmt.Println("maturity  rate")
			for i := range maturities {
				fmt.Printf("%8.2f  %.4f%%\n", maturities[i], rates[i]*100)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&t, "t", 0, "maturity to query (years)")
	cmd.Flags().Float64Var(&shiftRate, "shift-rate", 0, "parallel rate shift to apply (decimal)")
	cmd.Flags().Float64Var(&shiftTime, "shift-time", 0, "time translation to apply (years)")
	return cmd
}

func newBondCmd(a *app) *cobra.Command {
	var (
		nominal    float64
		couponRate float64
		maturity   float64
		frequency  int
		at         float64
		ytmPrice   float64
	)
	cmd := &cobra.Command{
		Use:   "bond",
		Short: "Value a coupon bond",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ts, err := a.loadCurve(snapshotFlag(cmd))
			if err != nil {
				return err
			}
			b, err := bond.New(nominal, couponRate, maturity, frequency)
			if err != nil {
				return err
			}
			price := b.PriceAt(ts, at)
			fmt.Printf("price:     %.4f\n", price)
			fmt.Printf("duration:  %.4f\n", b.Duration(ts))
			fmt.Printf("convexity: %.4f\n", b.Convexity(ts))
			if cmd.Flags().Changed("ytm-price") {
				y, err := b.YieldToMaturity(ytmPrice)
				if err != nil {
					return err
				}
				fmt.Printf("yield:     %.4f%%\n", y*100)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&nominal, "nominal", 100, "face value")
	cmd.Flags().Float64Var(&couponRate, "coupon", 0, "annual coupon rate (decimal)")
	cmd.Flags().Float64Var(&maturity, "maturity", 1, "maturity (years)")
	cmd.Flags().IntVar(&frequency, "frequency", 1, "coupon payments per year")
	cmd.Flags().Float64Var(&at, "at", 0, "valuation time (years)")
	cmd.Flags().Float64Var(&ytmPrice, "ytm-price", 0, "also solve the yield reproducing this price")
	return cmd
}

func newSwapCmd(a *app) *cobra.Command {
	var (
		notional  float64
		fixedRate float64
		times     []float64
		at        float64
	)
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Value an interest rate swap (pay fixed, receive floating)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ts, err := a.loadCurve(snapshotFlag(cmd))
			if err != nil {
				return err
			}
			s, err := swap.New(notional, fixedRate, times)
			if err != nil {
				return err
			}
			pv := s.PVByLeg(ts, at)
			fmt.Printf("pv fixed leg:    %.2f\n", pv.FixedLegPV)
			fmt.Printf("pv floating leg: %.2f\n", pv.FloatingLegPV)
			fmt.Printf("swap value:      %.2f\n", pv.TotalPV)
			fmt.Printf("par swap rate:   %.4f%%\n", s.SwapRate(ts, at)*100)
			return nil
		},
	}
	cmd.Flags().Float64Var(&notional, "notional", 1_000_000, "swap notional")
	cmd.Flags().Float64Var(&fixedRate, "fixed-rate", 0.03, "fixed rate (decimal)")
	cmd.Flags().Float64SliceVar(&times, "times", []float64{0.5, 1.0}, "payment times (years)")
	cmd.Flags().Float64Var(&at, "at", 0, "valuation time (years)")
	return cmd
}

func newFutureCmd(a *app) *cobra.Command {
	var (
		spot          float64
		rate          float64
		dividendYield float64
		maturity      float64
		at            float64
		spotAt        float64
	)
	cmd := &cobra.Command{
		Use:   "future",
		Short: "Price an equity future by cost of carry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := future.New(spot, rate, dividendYield, maturity)
			if err != nil {
				return err
			}
			fmt.Printf("forward price: %.4f\n", f.Price())
			fmt.Printf("basis:         %.4f\n", f.Basis())
			if cmd.Flags().Changed("at") {
				ts, err := a.loadCurve(snapshotFlag(cmd))
				if err != nil {
					return err
				}
				fmt.Printf("long value:    %.4f\n", f.LongValue(at, spotAt, ts))
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&spot, "spot", 100, "spot price")
	cmd.Flags().Float64Var(&rate, "rate", 0.02, "financing rate (decimal)")
	cmd.Flags().Float64Var(&dividendYield, "dividend", 0, "continuous dividend yield (decimal)")
	cmd.Flags().Float64Var(&maturity, "maturity", 1, "maturity (years)")
	cmd.Flags().Float64Var(&at, "at", 0, "mark-to-market time (years)")
	cmd.Flags().Float64Var(&spotAt, "spot-at", 100, "spot at the mark-to-market time")
	return cmd
}

func parseOptionFlags(cmd *cobra.Command) (option.Option, error) {
	kindStr, _ := cmd.Flags().GetString("kind")
	strike, _ := cmd.Flags().GetFloat64("strike")
	maturity, _ := cmd.Flags().GetFloat64("maturity")

	var kind option.Kind
	switch strings.ToLower(kindStr) {
	case "call":
		kind = option.Call
	case "put":
		kind = option.Put
	default:
		return option.Option{}, fmt.Errorf("unknown option kind %q", kindStr)
	}
	return option.New(kind, strike, maturity)
}

func addOptionFlags(cmd *cobra.Command) {
	cmd.Flags().String("kind", "call", "option kind: call or put")
	cmd.Flags().Float64("strike", 100, "strike")
	cmd.Flags().Float64("maturity", 1, "maturity (years)")
	cmd.Flags().Float64("spot", 100, "spot price")
	cmd.Flags().Float64("rate", 0, "risk-free rate (decimal; 0 = read from curve)")
	cmd.Flags().Float64("vol", 0.2, "volatility (decimal)")
	cmd.Flags().Float64("dividend", 0, "dividend yield (decimal)")
	cmd.Flags().Float64("repo", 0, "repo/borrow rate (decimal)")
}

// resolveRate uses the curve's zero rate at the option maturity unless an
// explicit rate was given.
func (a *app) resolveRate(cmd *cobra.Command, maturity float64) (float64, error) {
	rate, _ := cmd.Flags().GetFloat64("rate")
	if cmd.Flags().Changed("rate") {
		return rate, nil
	}
	ts, err := a.loadCurve(snapshotFlag(cmd))
	if err != nil {
		return 0, err
	}
	return ts.ZeroRate(maturity), nil
}

func newOptionCmd(a *app) *cobra.Command {
	var (
		useMC bool
		paths int
		seed  int64
	)
	cmd := &cobra.Command{
		Use:   "option",
		Short: "Price a European option and its Greeks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := parseOptionFlags(cmd)
			if err != nil {
				return err
			}
			rate, err := a.resolveRate(cmd, o.Maturity)
			if err != nil {
				return err
			}
			spot, _ := cmd.Flags().GetFloat64("spot")
			vol, _ := cmd.Flags().GetFloat64("vol")
			dividend, _ := cmd.Flags().GetFloat64("dividend")
			repo, _ := cmd.Flags().GetFloat64("repo")

			if useMC {
				if paths == 0 {
					paths = a.cfg.Simulation.Paths
				}
				if !cmd.Flags().Changed("seed") {
					seed = a.cfg.Simulation.Seed
				}
				mc, err := model.NewMonteCarlo(spot, rate, dividend, vol, paths, seed)
				if err != nil {
					return err
				}
				detail, err := mc.PriceDetail(o)
				if err != nil {
					return err
				}
				delta, err := mc.Delta(o)
				if err != nil {
					return err
				}
				gamma, err := mc.Gamma(o)
				if err != nil {
					return err
				}
				vega, err := mc.Vega(o)
				if err != nil {
					return err
				}
				rho, err := mc.Rho(o)
				if err != nil {
					return err
				}
				fmt.Printf("price: %.4f (std err %.4f, %d paths)\n", detail.Price, detail.StdErr, paths)
				fmt.Printf("delta: %.4f  gamma: %.6f  vega: %.4f  rho: %.4f\n", delta, gamma, vega, rho)
				return nil
			}

			bs := model.BlackScholes{Spot: spot, Rate: rate, Vol: vol, DividendYield: dividend, RepoRate: repo}
			price, err := bs.Price(o)
			if err != nil {
				return err
			}
			delta, err := bs.Delta(o)
			if err != nil {
				return err
			}
			gamma, err := bs.Gamma(o)
			if err != nil {
				return err
			}
			vega, err := bs.Vega(o)
			if err != nil {
				return err
			}
			fmt.Printf("price: %.4f\n", price)
			fmt.Printf("delta: %.4f  gamma: %.6f  vega: %.4f\n", delta, gamma, vega)
			return nil
		},
	}
	addOptionFlags(cmd)
	cmd.Flags().BoolVar(&useMC, "mc", false, "use the Monte Carlo model")
	cmd.Flags().IntVar(&paths, "paths", 0, "simulation paths (0 = config default)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "simulation seed")
	return cmd
}

func newIVCmd(a *app) *cobra.Command {
	var marketPrice float64
	cmd := &cobra.Command{
		Use:   "iv",
		Short: "Solve the implied volatility of an observed option price",
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := parseOptionFlags(cmd)
			if err != nil {
				return err
			}
			rate, err := a.resolveRate(cmd, o.Maturity)
			if err != nil {
				return err
			}
			spot, _ := cmd.Flags().GetFloat64("spot")
			dividend, _ := cmd.Flags().GetFloat64("dividend")
			repo, _ := cmd.Flags().GetFloat64("repo")

			bs := model.BlackScholes{Spot: spot, Rate: rate, Vol: 0.2, DividendYield: dividend, RepoRate: repo}
			iv, err := model.SolveImpliedVol(bs, o, marketPrice)
			if err != nil {
				return err
			}
			fmt.Printf("implied vol: %.4f%%\n", iv*100)
			return nil
		},
	}
	addOptionFlags(cmd)
	cmd.Flags().Float64Var(&marketPrice, "market-price", 0, "observed option price")
	return cmd
}

func newRefreshCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Rebuild the term-structure snapshot from the rate provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Provider.RatesURL == "" {
				return fmt.Errorf("refresh: provider.rates_url is not configured")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			refresher := &marketdata.Refresher{
				Feed:    marketdata.NewHTTPRateFeed(a.cfg.Provider.RatesURL),
				CSVPath: a.cfg.Snapshot.CSVPath,
				Logger:  a.logger,
			}
			if dsn := a.cfg.Snapshot.PostgresDSN; dsn != "" {
				store, err := marketdata.NewSnapshotStore(ctx, dsn)
				if err != nil {
					return err
				}
				defer store.Close()
				refresher.Store = store
			}

			ts, err := refresher.Run(ctx)
			if err != nil {
				return err
			}
			a.logger.Info().Int("knots", ts.Len()).Float64("max_maturity", ts.MaxMaturity()).
				Msg("term structure refreshed")
			return nil
		},
	}
	return cmd
}
