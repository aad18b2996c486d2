package marketdata_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/meenmo/quantlib/marketdata"
)

func TestHTTPRateFeed_Rates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("missing Accept header")
		}
		json.NewEncoder(w).Encode([]marketdata.SnapshotRow{
			{Maturity: 1, Rate: 2.0},
			{Maturity: 5, Rate: 3.0},
		})
	}))
	defer srv.Close()

	feed := marketdata.NewHTTPRateFeed(srv.URL)
	quotes, err := feed.Rates(context.Background())
	if err != nil {
		t.Fatalf("Rates error: %v", err)
	}
	if len(quotes) != 2 || quotes[1] != 2.0 || quotes[5] != 3.0 {
		t.Fatalf("unexpected quotes: %v", quotes)
	}
}

func TestHTTPRateFeed_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := marketdata.NewHTTPRateFeed(srv.URL).Rates(context.Background()); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestHTTPRateFeed_EmptyBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	_, err := marketdata.NewHTTPRateFeed(srv.URL).Rates(context.Background())
	if !errors.Is(err, marketdata.ErrEmptySnapshot) {
		t.Fatalf("expected ErrEmptySnapshot, got %v", err)
	}
}

func TestRefresher_WritesCSVAndReturnsCurve(t *testing.T) {
	t.Parallel()

	feed := marketdata.NewMapRateFeed(map[float64]float64{
		5: 3.0,
		1: 2.0,
		2: 2.5,
	})
	path := filepath.Join(t.TempDir(), "refreshed.csv")
	r := &marketdata.Refresher{
		Feed:    feed,
		CSVPath: path,
		Logger:  zerolog.Nop(),
	}

	ts, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got := ts.ZeroRate(2); math.Abs(got-0.025) > 1e-15 {
		t.Fatalf("refreshed ZeroRate(2) = %g, want 0.025", got)
	}

	loaded, err := marketdata.LoadSnapshotCSV(path)
	if err != nil {
		t.Fatalf("LoadSnapshotCSV error: %v", err)
	}
	if loaded.Len() != 3 {
		t.Fatalf("persisted snapshot has %d knots, want 3", loaded.Len())
	}
}

func TestRefresher_RequiresFeedAndSink(t *testing.T) {
	t.Parallel()

	r := &marketdata.Refresher{Logger: zerolog.Nop()}
	if _, err := r.Run(context.Background()); err == nil {
		t.Fatal("expected error without a feed")
	}

	r.Feed = marketdata.NewMapRateFeed(map[float64]float64{1: 2})
	if _, err := r.Run(context.Background()); err == nil {
		t.Fatal("expected error without a sink")
	}
}

func TestHTTPEquityFeed(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "ACME" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode([]marketdata.Instrument{{Symbol: "ACME", Name: "Acme Corp", Type: "equity"}})
	})
	mux.HandleFunc("/iv/ACME", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("kind") != "put" {
			json.NewEncoder(w).Encode(map[string]float64{"iv": 0.21})
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{"iv": 0.24})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	feed := marketdata.NewHTTPEquityFeed(srv.URL)
	ctx := context.Background()

	hits, err := feed.Find(ctx, "ACME")
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if len(hits) != 1 || hits[0].Symbol != "ACME" {
		t.Fatalf("unexpected search hits: %v", hits)
	}

	iv, err := feed.GetImpliedVolatility(ctx, "ACME", true, 0.25)
	if err != nil {
		t.Fatalf("GetImpliedVolatility error: %v", err)
	}
	if iv != 0.21 {
		t.Fatalf("call IV %g, want 0.21", iv)
	}
	iv, err = feed.GetImpliedVolatility(ctx, "ACME", false, 0.25)
	if err != nil {
		t.Fatalf("GetImpliedVolatility error: %v", err)
	}
	if iv != 0.24 {
		t.Fatalf("put IV %g, want 0.24", iv)
	}

	// Unknown ticker maps the provider's 404 to ErrNoVolatility.
	if _, err := feed.GetImpliedVolatility(ctx, "NOPE", true, 0.25); !errors.Is(err, marketdata.ErrNoVolatility) {
		t.Fatalf("expected ErrNoVolatility, got %v", err)
	}
}

func TestMapEquityFeed(t *testing.T) {
	t.Parallel()

	feed := &marketdata.MapEquityFeed{
		Instruments: []marketdata.Instrument{{Symbol: "ACME", Name: "Acme Corp"}},
		IVs:         map[string]float64{"ACME": 0.3},
	}
	ctx := context.Background()

	hits, err := feed.Find(ctx, "ACME")
	if err != nil || len(hits) != 1 {
		t.Fatalf("Find: hits=%v err=%v", hits, err)
	}
	if _, err := feed.GetImpliedVolatility(ctx, "OTHER", true, 1); !errors.Is(err, marketdata.ErrNoVolatility) {
		t.Fatalf("expected ErrNoVolatility, got %v", err)
	}
}
