package marketdata_test

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/meenmo/quantlib/curve"
	"github.com/meenmo/quantlib/marketdata"
)

func TestCurveFromRows_PercentConversion(t *testing.T) {
	t.Parallel()

	rows := []marketdata.SnapshotRow{
		{Maturity: 1, Rate: 2.0},
		{Maturity: 5, Rate: 3.0},
		{Maturity: 2, Rate: 2.5},
	}
	ts, err := marketdata.CurveFromRows(rows)
	if err != nil {
		t.Fatalf("CurveFromRows error: %v", err)
	}
	if got := ts.ZeroRate(1); math.Abs(got-0.02) > 1e-15 {
		t.Fatalf("ZeroRate(1) = %g, want 0.02", got)
	}
	if got := ts.ZeroRate(2); math.Abs(got-0.025) > 1e-15 {
		t.Fatalf("ZeroRate(2) = %g, want 0.025 (rows should be sorted)", got)
	}
}

func TestCurveFromRows_Empty(t *testing.T) {
	t.Parallel()

	if _, err := marketdata.CurveFromRows(nil); !errors.Is(err, marketdata.ErrEmptySnapshot) {
		t.Fatalf("expected ErrEmptySnapshot, got %v", err)
	}
}

func TestSnapshotCSV_RoundTrip(t *testing.T) {
	t.Parallel()

	ts := curve.MustNew([]float64{0.5, 1, 2, 5, 10}, []float64{0.015, 0.02, 0.025, 0.03, 0.032})
	path := filepath.Join(t.TempDir(), "curve.csv")

	if err := marketdata.SaveSnapshotCSV(path, ts); err != nil {
		t.Fatalf("SaveSnapshotCSV error: %v", err)
	}
	loaded, err := marketdata.LoadSnapshotCSV(path)
	if err != nil {
		t.Fatalf("LoadSnapshotCSV error: %v", err)
	}

	if loaded.Len() != ts.Len() {
		t.Fatalf("knot count changed: %d != %d", loaded.Len(), ts.Len())
	}
	for i, m := range ts.Maturities() {
		want := ts.Rates()[i]
		if got := loaded.ZeroRate(m); math.Abs(got-want) > 1e-12 {
			t.Fatalf("rate at %g: %g, want %g", m, got, want)
		}
	}
}

func TestLoadSnapshotCSV_Missing(t *testing.T) {
	t.Parallel()

	if _, err := marketdata.LoadSnapshotCSV(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRowsFromCurve_Percent(t *testing.T) {
	t.Parallel()

	ts := curve.MustNew([]float64{1, 2}, []float64{0.02, 0.0325})
	rows := marketdata.RowsFromCurve(ts)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if math.Abs(rows[1].Rate-3.25) > 1e-12 {
		t.Fatalf("rate not in percent: %g, want 3.25", rows[1].Rate)
	}
}
