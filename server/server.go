// Package server exposes the pricing surface as a JSON HTTP API for the
// dashboard layer.
//
// Handlers hold an explicit Context constructed once at startup and passed
// by reference into every pricing call; there are no process-wide cached
// curves or models.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/meenmo/quantlib/curve"
)

// Context is the pricing context shared by all handlers: the discounting
// curve and the simulation defaults.
type Context struct {
	Curve    *curve.TermStructure
	SimPaths int
	SimSeed  int64
}

// Handler serves the pricing API.
type Handler struct {
	ctx    *Context
	logger zerolog.Logger
}

// New builds a Handler around a pricing context.
func New(ctx *Context, logger zerolog.Logger) *Handler {
	return &Handler{ctx: ctx, logger: logger}
}

// Router returns the API route table.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/curve", h.CurveHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/curve/zero", h.ZeroRateHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/curve/shift", h.ShiftHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/option/price", h.OptionPriceHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/option/impliedvol", h.ImpliedVolHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/bond/price", h.BondHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/swap/price", h.SwapHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/future/price", h.FutureHandler).Methods(http.MethodPost)
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.logger.Debug().Err(err).Int("status", status).Msg("request failed")
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}
