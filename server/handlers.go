package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/meenmo/quantlib/bond"
	"github.com/meenmo/quantlib/curve"
	"github.com/meenmo/quantlib/future"
	"github.com/meenmo/quantlib/model"
	"github.com/meenmo/quantlib/option"
	"github.com/meenmo/quantlib/swap"
)

type curveResponse struct {
	Maturities []float64 `json:"maturities"`
	Rates      []float64 `json:"rates"`
}

// CurveHandler returns the knots of the active term structure.
func (h *Handler) CurveHandler(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, curveResponse{
		Maturities: h.ctx.Curve.Maturities(),
		Rates:      h.ctx.Curve.Rates(),
	})
}

// ZeroRateHandler returns the zero rate and discount factor at ?t=.
func (h *Handler) ZeroRateHandler(w http.ResponseWriter, r *http.Request) {
	t, err := strconv.ParseFloat(r.URL.Query().Get("t"), 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("query parameter t: %w", err))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]float64{
		"t":               t,
		"zero_rate":       h.ctx.Curve.ZeroRate(t),
		"discount_factor": h.ctx.Curve.DiscountFactor(t),
	})
}

type shiftRequest struct {
	RateDelta *float64 `json:"rate_delta,omitempty"`
	TimeDelta *float64 `json:"time_delta,omitempty"`
}

// ShiftHandler applies a rate or time shift and returns the new knots.
func (h *Handler) ShiftHandler(w http.ResponseWriter, r *http.Request) {
	var req shiftRequest
	if !h.decode(w, r, &req) {
		return
	}

	var (
		shifted *curve.TermStructure
		err     error
	)
	switch {
	case req.RateDelta != nil:
		shifted, err = h.ctx.Curve.ShiftRate(*req.RateDelta)
	case req.TimeDelta != nil:
		shifted, err = h.ctx.Curve.ShiftTime(*req.TimeDelta)
	default:
		h.writeError(w, http.StatusBadRequest, errors.New("one of rate_delta or time_delta is required"))
		return
	}
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	h.writeJSON(w, http.StatusOK, curveResponse{
		Maturities: shifted.Maturities(),
		Rates:      shifted.Rates(),
	})
}

type optionRequest struct {
	Kind          string   `json:"kind"` // "call" or "put"
	Strike        float64  `json:"strike"`
	Maturity      float64  `json:"maturity"`
	Spot          float64  `json:"spot"`
	Rate          *float64 `json:"rate,omitempty"` // default: zero rate at maturity
	Vol           float64  `json:"vol"`
	DividendYield float64  `json:"dividend_yield"`
	RepoRate      float64  `json:"repo_rate"`
	Model         string   `json:"model"` // "analytic" (default) or "simulation"
	Paths         int      `json:"paths,omitempty"`
	Seed          *int64   `json:"seed,omitempty"`
}

func parseKind(s string) (option.Kind, error) {
	switch s {
	case "call", "Call", "":
		return option.Call, nil
	case "put", "Put":
		return option.Put, nil
	default:
		return 0, fmt.Errorf("unknown option kind %q", s)
	}
}

func (h *Handler) optionInputs(req optionRequest) (option.Option, float64, error) {
	kind, err := parseKind(req.Kind)
	if err != nil {
		return option.Option{}, 0, err
	}
	o, err := option.New(kind, req.Strike, req.Maturity)
	if err != nil {
		return option.Option{}, 0, err
	}
	rate := h.ctx.Curve.ZeroRate(req.Maturity)
	if req.Rate != nil {
		rate = *req.Rate
	}
	return o, rate, nil
}

type optionResponse struct {
	Price  float64  `json:"price"`
	Delta  float64  `json:"delta"`
	Gamma  float64  `json:"gamma"`
	Vega   float64  `json:"vega"`
	Rho    *float64 `json:"rho,omitempty"`
	StdErr *float64 `json:"std_err,omitempty"`
	Model  string   `json:"model"`
	Rate   float64  `json:"rate"`
}

// OptionPriceHandler prices a European option with the analytic or the
// simulation model and returns price and Greeks.
func (h *Handler) OptionPriceHandler(w http.ResponseWriter, r *http.Request) {
	var req optionRequest
	if !h.decode(w, r, &req) {
		return
	}
	o, rate, err := h.optionInputs(req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.Model == "simulation" {
		h.priceSimulated(w, req, o, rate)
		return
	}

	bs := model.BlackScholes{
		Spot:          req.Spot,
		Rate:          rate,
		Vol:           req.Vol,
		DividendYield: req.DividendYield,
		RepoRate:      req.RepoRate,
	}
	resp := optionResponse{Model: "analytic", Rate: rate}
	if resp.Price, err = bs.Price(o); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if resp.Delta, err = bs.Delta(o); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if resp.Gamma, err = bs.Gamma(o); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if resp.Vega, err = bs.Vega(o); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) priceSimulated(w http.ResponseWriter, req optionRequest, o option.Option, rate float64) {
	paths := req.Paths
	if paths == 0 {
		paths = h.ctx.SimPaths
	}
	seed := h.ctx.SimSeed
	if req.Seed != nil {
		seed = *req.Seed
	}
	mc, err := model.NewMonteCarlo(req.Spot, rate, req.DividendYield, req.Vol, paths, seed)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	detail, err := mc.PriceDetail(o)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	resp := optionResponse{
		Model:  "simulation",
		Rate:   rate,
		Price:  detail.Price,
		StdErr: &detail.StdErr,
	}
	if resp.Delta, err = mc.Delta(o); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if resp.Gamma, err = mc.Gamma(o); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if resp.Vega, err = mc.Vega(o); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	rho, err := mc.Rho(o)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	resp.Rho = &rho
	h.writeJSON(w, http.StatusOK, resp)
}

type impliedVolRequest struct {
	optionRequest
	MarketPrice float64 `json:"market_price"`
}

// ImpliedVolHandler inverts the analytic model against an observed price.
// An unpriceable quote returns 200 with solved=false rather than an error:
// it is an expected outcome, not a failure of the service.
func (h *Handler) ImpliedVolHandler(w http.ResponseWriter, r *http.Request) {
	var req impliedVolRequest
	if !h.decode(w, r, &req) {
		return
	}
	o, rate, err := h.optionInputs(req.optionRequest)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	bs := model.BlackScholes{
		Spot:          req.Spot,
		Rate:          rate,
		Vol:           0.2, // placeholder; the solver scans vol itself
		DividendYield: req.DividendYield,
		RepoRate:      req.RepoRate,
	}
	iv, err := model.SolveImpliedVol(bs, o, req.MarketPrice)
	if err != nil {
		if errors.Is(err, model.ErrNoSolution) {
			h.writeJSON(w, http.StatusOK, map[string]interface{}{"solved": false})
			return
		}
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"solved": true, "implied_vol": iv})
}

type bondRequest struct {
	Nominal    float64 `json:"nominal"`
	CouponRate float64 `json:"coupon_rate"`
	Maturity   float64 `json:"maturity"`
	Frequency  int     `json:"frequency"`
	At         float64 `json:"at,omitempty"`
}

// BondHandler values a coupon bond against the active curve.
func (h *Handler) BondHandler(w http.ResponseWriter, r *http.Request) {
	var req bondRequest
	if !h.decode(w, r, &req) {
		return
	}
	b, err := bond.New(req.Nominal, req.CouponRate, req.Maturity, req.Frequency)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]float64{
		"price":     b.PriceAt(h.ctx.Curve, req.At),
		"duration":  b.Duration(h.ctx.Curve),
		"convexity": b.Convexity(h.ctx.Curve),
	})
}

type swapRequest struct {
	Notional     float64   `json:"notional"`
	FixedRate    float64   `json:"fixed_rate"`
	PaymentTimes []float64 `json:"payment_times"`
	At           float64   `json:"at,omitempty"`
}

// SwapHandler values an interest rate swap against the active curve.
func (h *Handler) SwapHandler(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, err := swap.New(req.Notional, req.FixedRate, req.PaymentTimes)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	pv := s.PVByLeg(h.ctx.Curve, req.At)
	h.writeJSON(w, http.StatusOK, map[string]float64{
		"pv_fixed_leg":    pv.FixedLegPV,
		"pv_floating_leg": pv.FloatingLegPV,
		"price":           pv.TotalPV,
		"swap_rate":       s.SwapRate(h.ctx.Curve, req.At),
	})
}

type futureRequest struct {
	Spot          float64  `json:"spot"`
	Rate          float64  `json:"rate"`
	DividendYield float64  `json:"dividend_yield"`
	Maturity      float64  `json:"maturity"`
	At            *float64 `json:"at,omitempty"`
	SpotAt        *float64 `json:"spot_at,omitempty"`
}

// FutureHandler prices an equity future; when at/spot_at are supplied it
// also marks a long position to market against the active curve.
func (h *Handler) FutureHandler(w http.ResponseWriter, r *http.Request) {
	var req futureRequest
	if !h.decode(w, r, &req) {
		return
	}
	f, err := future.New(req.Spot, req.Rate, req.DividendYield, req.Maturity)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	resp := map[string]float64{
		"price": f.Price(),
		"basis": f.Basis(),
	}
	if req.At != nil && req.SpotAt != nil {
		resp["long_value"] = f.LongValue(*req.At, *req.SpotAt, h.ctx.Curve)
	}
	h.writeJSON(w, http.StatusOK, resp)
}
