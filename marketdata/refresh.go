package marketdata

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/meenmo/quantlib/curve"
)

// Refresher rebuilds the term-structure snapshot from a rate provider and
// persists it. CSVPath and Store are each optional; at least one sink must
// be set.
type Refresher struct {
	Feed    RateFeed
	CSVPath string
	Store   *SnapshotStore
	Logger  zerolog.Logger
}

// Run pulls provider quotes, builds a fresh curve and writes it to every
// configured sink. It returns the refreshed curve so callers can keep
// pricing without a reload.
func (r *Refresher) Run(ctx context.Context) (*curve.TermStructure, error) {
	if r.Feed == nil {
		return nil, fmt.Errorf("marketdata.Refresher: no rate feed configured")
	}
	if r.CSVPath == "" && r.Store == nil {
		return nil, fmt.Errorf("marketdata.Refresher: no snapshot sink configured")
	}

	quotes, err := r.Feed.Rates(ctx)
	if err != nil {
		return nil, fmt.Errorf("marketdata.Refresher: fetch: %w", err)
	}

	maturities := make([]float64, 0, len(quotes))
	for m := range quotes {
		maturities = append(maturities, m)
	}
	sort.Float64s(maturities)

	rates := make([]float64, len(maturities))
	for i, m := range maturities {
		rates[i] = quotes[m] / 100
	}

	ts, err := curve.New(maturities, rates)
	if err != nil {
		return nil, fmt.Errorf("marketdata.Refresher: build curve: %w", err)
	}

	if r.CSVPath != "" {
		if err := SaveSnapshotCSV(r.CSVPath, ts); err != nil {
			return nil, err
		}
		r.Logger.Info().Str("path", r.CSVPath).Int("knots", ts.Len()).Msg("snapshot written")
	}
	if r.Store != nil {
		asOf := time.Now().UTC()
		if err := r.Store.SaveSnapshot(ctx, asOf, ts); err != nil {
			return nil, err
		}
		r.Logger.Info().Time("as_of", asOf).Int("knots", ts.Len()).Msg("snapshot stored")
	}
	return ts, nil
}
