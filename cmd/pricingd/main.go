// Command pricingd serves the pricing library over HTTP for the dashboard
// layer. The term structure is loaded once at startup and shared, read
// only, by every request.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meenmo/quantlib/internal/config"
	"github.com/meenmo/quantlib/internal/logging"
	"github.com/meenmo/quantlib/marketdata"
	"github.com/meenmo/quantlib/server"
)

func main() {
	cfgPath := flag.String("config", "", "config file path")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		bootLogger := logging.New(logging.DefaultConfig())
		bootLogger.Fatal().Err(err).Msg("load config")
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	if cfg.Log.FilePath != "" {
		logCfg.File = true
		logCfg.FilePath = cfg.Log.FilePath
	}
	logger := logging.New(logCfg)

	ts, err := marketdata.LoadSnapshotCSV(cfg.Snapshot.CSVPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Snapshot.CSVPath).Msg("load snapshot")
	}
	logger.Info().Int("knots", ts.Len()).Float64("max_maturity", ts.MaxMaturity()).
		Msg("term structure loaded")

	h := server.New(&server.Context{
		Curve:    ts,
		SimPaths: cfg.Simulation.Paths,
		SimSeed:  cfg.Simulation.Seed,
	}, logger)

	srv := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      h.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.ListenAddr).Msg("pricing server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("pricing server stopped")
}
