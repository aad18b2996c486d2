// Package marketdata holds the I/O boundary around the pricing core: the
// term-structure snapshot store (CSV and Postgres), the external rate and
// equity feeds, and the curve refresh job.
//
// Nothing in here is needed to price; the core packages receive fully
// constructed curves and market parameters.
package marketdata

import (
	"errors"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/meenmo/quantlib/curve"
)

// ErrEmptySnapshot is returned when a snapshot source yields no rows.
var ErrEmptySnapshot = errors.New("snapshot contains no rows")

// SnapshotRow is one line of the snapshot format: a maturity in years and
// a zero rate stored as a percentage (3.25 means 3.25%/year).
type SnapshotRow struct {
	Maturity float64 `csv:"maturity"`
	Rate     float64 `csv:"rate"`
}

// CurveFromRows converts snapshot rows (percent rates) into a
// TermStructure (decimal rates, sorted by maturity).
func CurveFromRows(rows []SnapshotRow) (*curve.TermStructure, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("marketdata.CurveFromRows: %w", ErrEmptySnapshot)
	}
	maturities := make([]float64, len(rows))
	rates := make([]float64, len(rows))
	for i, r := range rows {
		maturities[i] = r.Maturity
		rates[i] = r.Rate / 100
	}
	return curve.New(maturities, rates)
}

// RowsFromCurve converts a TermStructure back into snapshot rows
// (percent rates).
func RowsFromCurve(ts *curve.TermStructure) []SnapshotRow {
	maturities := ts.Maturities()
	rates := ts.Rates()
	rows := make([]SnapshotRow, len(maturities))
	for i := range maturities {
		rows[i] = SnapshotRow{Maturity: maturities[i], Rate: rates[i] * 100}
	}
	return rows
}

// LoadSnapshotCSV reads a snapshot file and builds the term structure.
func LoadSnapshotCSV(path string) (*curve.TermStructure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("marketdata.LoadSnapshotCSV: %w", err)
	}
	defer f.Close()

	var rows []SnapshotRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("marketdata.LoadSnapshotCSV: parse %s: %w", path, err)
	}
	return CurveFromRows(rows)
}

// SaveSnapshotCSV writes the curve in the snapshot format, replacing any
// existing file.
func SaveSnapshotCSV(path string, ts *curve.TermStructure) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("marketdata.SaveSnapshotCSV: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(RowsFromCurve(ts), f); err != nil {
		return fmt.Errorf("marketdata.SaveSnapshotCSV: write %s: %w", path, err)
	}
	return nil
}
