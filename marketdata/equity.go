package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrNoVolatility is returned when the provider has no implied volatility
// for the requested contract.
var ErrNoVolatility = errors.New("no implied volatility available")

// Candle is one bar of an equity price history.
type Candle struct {
	Time  time.Time `json:"time"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// Instrument is a search hit from the equity provider.
type Instrument struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

// EquityFeed supplies the market data the pricing layer needs for an
// underlying: identifier search, price history and option implied vols.
type EquityFeed interface {
	Find(ctx context.Context, query string) ([]Instrument, error)
	GetHistoric(ctx context.Context, ticker, period string) ([]Candle, error)
	// GetImpliedVolatility returns the implied volatility (decimal) of the
	// first listed option of the given variant expiring after maturity
	// years; ErrNoVolatility when the provider has none.
	GetImpliedVolatility(ctx context.Context, ticker string, isCall bool, maturity float64) (float64, error)
}

// HTTPEquityFeed talks to a quote-provider REST API:
//
//	GET {base}/search?q=...                 -> [Instrument]
//	GET {base}/historic/{ticker}?period=1y  -> [Candle]
//	GET {base}/iv/{ticker}?kind=call&t=0.25 -> {"iv": 0.21}
type HTTPEquityFeed struct {
	baseURL string
	client  *http.Client
}

func NewHTTPEquityFeed(baseURL string) *HTTPEquityFeed {
	return &HTTPEquityFeed{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *HTTPEquityFeed) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := f.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("marketdata.HTTPEquityFeed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("marketdata.HTTPEquityFeed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("marketdata.HTTPEquityFeed: %s: %w", path, ErrNoVolatility)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("marketdata.HTTPEquityFeed: %s returned %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("marketdata.HTTPEquityFeed: decode %s: %w", path, err)
	}
	return nil
}

func (f *HTTPEquityFeed) Find(ctx context.Context, query string) ([]Instrument, error) {
	var out []Instrument
	q := url.Values{"q": {query}}
	if err := f.get(ctx, "/search", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *HTTPEquityFeed) GetHistoric(ctx context.Context, ticker, period string) ([]Candle, error) {
	var out []Candle
	q := url.Values{"period": {period}}
	if err := f.get(ctx, "/historic/"+url.PathEscape(ticker), q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *HTTPEquityFeed) GetImpliedVolatility(ctx context.Context, ticker string, isCall bool, maturity float64) (float64, error) {
	kind := "call"
	if !isCall {
		kind = "put"
	}
	var out struct {
		IV float64 `json:"iv"`
	}
	q := url.Values{
		"kind": {kind},
		"t":    {fmt.Sprintf("%g", maturity)},
	}
	if err := f.get(ctx, "/iv/"+url.PathEscape(ticker), q, &out); err != nil {
		return 0, err
	}
	if out.IV <= 0 {
		return 0, fmt.Errorf("marketdata.HTTPEquityFeed: %s: %w", ticker, ErrNoVolatility)
	}
	return out.IV, nil
}

// MapEquityFeed is a static in-memory feed for development and testing.
type MapEquityFeed struct {
	Instruments []Instrument
	Candles     map[string][]Candle
	IVs         map[string]float64 // ticker -> decimal vol
}

func (m *MapEquityFeed) Find(_ context.Context, query string) ([]Instrument, error) {
	var out []Instrument
	for _, ins := range m.Instruments {
		if ins.Symbol == query || ins.Name == query {
			out = append(out, ins)
		}
	}
	return out, nil
}

func (m *MapEquityFeed) GetHistoric(_ context.Context, ticker, _ string) ([]Candle, error) {
	return m.Candles[ticker], nil
}

func (m *MapEquityFeed) GetImpliedVolatility(_ context.Context, ticker string, _ bool, _ float64) (float64, error) {
	iv, ok := m.IVs[ticker]
	if !ok {
		return 0, fmt.Errorf("marketdata.MapEquityFeed: %s: %w", ticker, ErrNoVolatility)
	}
	return iv, nil
}
