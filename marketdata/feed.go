package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RateFeed supplies zero-rate quotes (maturity in years -> rate in percent)
// from an external provider. The refresh job rebuilds the snapshot from it.
type RateFeed interface {
	Rates(ctx context.Context) (map[float64]float64, error)
}

// MapRateFeed is a static map-backed feed for development and testing.
type MapRateFeed struct {
	rates map[float64]float64
}

func NewMapRateFeed(rates map[float64]float64) *MapRateFeed {
	return &MapRateFeed{rates: rates}
}

func (m *MapRateFeed) Rates(context.Context) (map[float64]float64, error) {
	out := make(map[float64]float64, len(m.rates))
	for k, v := range m.rates {
		out[k] = v
	}
	return out, nil
}

// HTTPRateFeed pulls quotes from a JSON endpoint returning
// [{"maturity": 1, "rate": 3.25}, ...] with rates in percent.
type HTTPRateFeed struct {
	url    string
	client *http.Client
}

func NewHTTPRateFeed(url string) *HTTPRateFeed {
	return &HTTPRateFeed{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *HTTPRateFeed) Rates(ctx context.Context) (map[float64]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("marketdata.HTTPRateFeed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("marketdata.HTTPRateFeed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("marketdata.HTTPRateFeed: %s returned %s", f.url, resp.Status)
	}

	var rows []SnapshotRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("marketdata.HTTPRateFeed: decode: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("marketdata.HTTPRateFeed: %w", ErrEmptySnapshot)
	}

	out := make(map[float64]float64, len(rows))
	for _, r := range rows {
		out[r.Maturity] = r.Rate
	}
	return out, nil
}
