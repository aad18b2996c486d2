// Command pricer is the command-line front end to the pricing library:
// curve inspection, bond/swap/future valuation, option pricing with the
// analytic and simulation models, implied volatility, and the snapshot
// refresh job.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/meenmo/quantlib/curve"
	"github.com/meenmo/quantlib/internal/config"
	"github.com/meenmo/quantlib/internal/logging"
	"github.com/meenmo/quantlib/marketdata"
)

// app holds the dependencies shared by the subcommands.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// loadCurve reads the configured snapshot, preferring an explicit
// --snapshot flag over the config file.
func (a *app) loadCurve(snapshotFlag string) (*curve.TermStructure, error) {
	path := a.cfg.Snapshot.CSVPath
	if snapshotFlag != "" {
		path = snapshotFlag
	}
	return marketdata.LoadSnapshotCSV(path)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var cfgPath string

	rootCmd := &cobra.Command{
		Use:   "pricer",
		Short: "Price interest-rate and equity-linked instruments",
		Long: `pricer values coupon bonds, interest rate swaps, equity futures and
European options against a zero-coupon term structure snapshot.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			logCfg := logging.DefaultConfig()
			logCfg.Level = cfg.Log.Level
			if cfg.Log.FilePath != "" {
				logCfg.File = true
				logCfg.FilePath = cfg.Log.FilePath
			}
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				logCfg.Level = "debug"
			}
			a.logger = logging.New(logCfg)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("snapshot", "", "term-structure snapshot CSV (overrides config)")

	rootCmd.AddCommand(
		newCurveCmd(a),
		newBondCmd(a),
		newSwapCmd(a),
		newFutureCmd(a),
		newOptionCmd(a),
		newIVCmd(a),
		newRefreshCmd(a),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
