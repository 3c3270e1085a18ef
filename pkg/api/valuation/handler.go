// Package valuation serves the DCF endpoints: forward valuation, implied
// growth (Reverse DCF), sensitivity grid, projection chart and optional
// narrative. Handlers hold no computational logic beyond marshalling; the
// math lives in pkg/core.
package valuation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"reverse_dcf/pkg/api/config"
	"reverse_dcf/pkg/core/dcf"
	"reverse_dcf/pkg/core/insight"
	"reverse_dcf/pkg/core/market"
	"reverse_dcf/pkg/core/sensitivity"
	"reverse_dcf/pkg/core/solver"
	"reverse_dcf/pkg/core/store"
)

// Handler wires the valuation endpoints to their collaborators.
type Handler struct {
	Provider  market.Provider
	Cache     *store.SnapshotCache
	Options   *config.Store
	Narrative *insight.Generator
}

// NewHandler builds a handler. Provider and cache may be nil for
// manual-entry-only deployments.
func NewHandler(provider market.Provider, cache *store.SnapshotCache, opts *config.Store) *Handler {
	return &Handler{
		Provider:  provider,
		Cache:     cache,
		Options:   opts,
		Narrative: &insight.Generator{},
	}
}

// ---- Requests / responses ----

// ModelParams are the assumptions a request supplies alongside market data.
// Callers give either an explicit WACC or a discount_rate block to derive
// one from CAPM parameters.
type ModelParams struct {
	WACC           float64                 `json:"wacc,omitempty"`
	DiscountRate   *dcf.DiscountRateInputs `json:"discount_rate,omitempty"`
	TerminalGrowth float64                 `json:"terminal_growth"`
	HorizonYears   int                     `json:"horizon_years"`
}

// EffectiveWACC resolves the discount rate: an explicit WACC wins, otherwise
// it is derived from the CAPM block.
func (p ModelParams) EffectiveWACC() float64 {
	if p.WACC == 0 && p.DiscountRate != nil {
		return dcf.DeriveWACC(*p.DiscountRate).WACC
	}
	return p.WACC
}

// DCFRequest drives the forward model from fully explicit inputs.
type DCFRequest struct {
	Inputs dcf.ValuationInputs `json:"inputs"`
	Growth float64             `json:"growth"`
}

// ImpliedRequest drives the reverse solver. Either Ticker (fetched via the
// provider and cache) or Manual (a raw snapshot payload, lenient JSON/Hjson)
// supplies the market data; Params supplies the model assumptions.
type ImpliedRequest struct {
	Ticker      string      `json:"ticker,omitempty"`
	Manual      string      `json:"manual,omitempty"`
	Params      ModelParams `json:"params"`
	TargetPrice float64     `json:"target_price,omitempty"` // default: snapshot price
}

// ImpliedResponse pairs the solve result with the data it ran on.
type ImpliedResponse struct {
	Snapshot    *market.Snapshot    `json:"snapshot"`
	Inputs      dcf.ValuationInputs `json:"inputs"`
	TargetPrice float64             `json:"target_price"`
	Result      solver.SolverResult `json:"result"`
	Valuation   dcf.ValuationResult `json:"valuation"` // forward model at the implied growth
}

// SensitivityRequest sweeps WACC and terminal growth around fixed inputs.
type SensitivityRequest struct {
	Inputs               dcf.ValuationInputs `json:"inputs"`
	Growth               float64             `json:"growth"`
	WACCValues           []float64           `json:"wacc_values"`
	TerminalGrowthValues []float64           `json:"terminal_growth_values"`
}

// SensitivityResponse carries the grid with undefined cells as null (JSON
// has no NaN).
type SensitivityResponse struct {
	WACCValues           []float64    `json:"wacc_values"`
	TerminalGrowthValues []float64    `json:"terminal_growth_values"`
	ValuePerShare        [][]*float64 `json:"value_per_share"`
}

// errorResponse tells the frontend which corrective action applies:
// bad_input (fix the data), degenerate_model (fix the assumptions),
// no_solution_in_range (widen the bounds or accept the verdict).
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ---- Endpoints ----

// HandleDCF serves POST /api/valuation/dcf.
func (h *Handler) HandleDCF(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}

	var req DCFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := dcf.ValueEquity(req.Inputs, req.Growth)
	if err != nil {
		writeModelError(w, err)
		return
	}
	json.NewEncoder(w).Encode(res)
}

// HandleImplied serves POST /api/valuation/implied.
func (h *Handler) HandleImplied(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}

	var req ImpliedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := h.resolveSnapshot(r.Context(), &req)
	if err != nil {
		writeModelError(w, err)
		return
	}

	inputs := dcf.ValuationInputs{
		BaseFCF:           snap.FreeCashFlow,
		WACC:              req.Params.EffectiveWACC(),
		TerminalGrowth:    req.Params.TerminalGrowth,
		HorizonYears:      req.Params.HorizonYears,
		SharesOutstanding: snap.SharesOutstanding,
		NetDebt:           snap.NetDebt(),
	}

	target := req.TargetPrice
	if target == 0 {
		target = snap.CurrentPrice
	}
	if target == 0 && snap.MarketCap > 0 && snap.SharesOutstanding > 0 {
		target = snap.MarketCap / snap.SharesOutstanding
	}

	fmt.Printf("[VALUATION] implied solve: %s target=%.2f wacc=%.3f tg=%.3f horizon=%d\n",
		snap.Ticker, target, inputs.WACC, inputs.TerminalGrowth, inputs.HorizonYears)

	result, err := solver.SolveImpliedGrowth(inputs, target, h.Options.Options())
	if err != nil {
		writeModelError(w, err)
		return
	}

	// Forward model at the implied growth for the detail panel.
	valRes, err := dcf.ValueEquity(inputs, result.ImpliedGrowthRate)
	if err != nil {
		writeModelError(w, err)
		return
	}

	json.NewEncoder(w).Encode(ImpliedResponse{
		Snapshot:    snap,
		Inputs:      inputs,
		TargetPrice: target,
		Result:      result,
		Valuation:   valRes,
	})
}

// HandleSensitivity serves POST /api/valuation/sensitivity.
func (h *Handler) HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}

	var req SensitivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.WACCValues) == 0 || len(req.TerminalGrowthValues) == 0 {
		writeModelError(w, &dcf.InvalidInputError{Field: "wacc_values", Reason: "both axes must be non-empty"})
		return
	}

	grid := sensitivity.BuildGrid(req.Inputs, req.Growth, req.WACCValues, req.TerminalGrowthValues)

	resp := SensitivityResponse{
		WACCValues:           grid.WACCValues,
		TerminalGrowthValues: grid.TerminalGrowthValues,
		ValuePerShare:        make([][]*float64, len(grid.ValuePerShare)),
	}
	for i, row := range grid.ValuePerShare {
		out := make([]*float64, len(row))
		for j, v := range row {
			if !math.IsNaN(v) {
				val := v
				out[j] = &val
			}
		}
		resp.ValuePerShare[i] = out
	}
	json.NewEncoder(w).Encode(resp)
}

// HandleChart serves POST /api/valuation/chart with a PNG of the projected
// cash flows.
func (h *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}

	var req DCFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := dcf.ValueEquity(req.Inputs, req.Growth)
	if err != nil {
		writeModelError(w, err)
		return
	}

	png, err := RenderProjectionChart(req.Inputs, req.Growth, res)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// HandleNarrative serves POST /api/valuation/narrative. Returns 503 when no
// LLM key is configured so the frontend can hide the panel.
func (h *Handler) HandleNarrative(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}
	if !h.Narrative.Available() {
		http.Error(w, "Narrative generation not configured", http.StatusServiceUnavailable)
		return
	}

	var req ImpliedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := h.resolveSnapshot(r.Context(), &req)
	if err != nil {
		writeModelError(w, err)
		return
	}
	inputs := dcf.ValuationInputs{
		BaseFCF:           snap.FreeCashFlow,
		WACC:              req.Params.EffectiveWACC(),
		TerminalGrowth:    req.Params.TerminalGrowth,
		HorizonYears:      req.Params.HorizonYears,
		SharesOutstanding: snap.SharesOutstanding,
		NetDebt:           snap.NetDebt(),
	}
	target := req.TargetPrice
	if target == 0 {
		target = snap.CurrentPrice
	}

	result, err := solver.SolveImpliedGrowth(inputs, target, h.Options.Options())
	if err != nil {
		writeModelError(w, err)
		return
	}

	text, err := h.Narrative.Narrative(r.Context(), inputs, target, result)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"narrative": text})
}

// ---- Helpers ----

// resolveSnapshot turns an implied/narrative request into market data:
// manual payload wins, then cache, then live fetch (which repopulates the
// cache).
func (h *Handler) resolveSnapshot(ctx context.Context, req *ImpliedRequest) (*market.Snapshot, error) {
	if req.Manual != "" {
		return market.ParseManualSnapshot(req.Manual)
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		return nil, &dcf.InvalidInputError{Field: "ticker", Reason: "supply a ticker or a manual snapshot"}
	}

	if h.Cache != nil {
		if snap, err := h.Cache.Get(ctx, ticker); err == nil && snap != nil {
			fmt.Printf("[VALUATION] cache hit for %s\n", ticker)
			return snap, nil
		}
	}

	if h.Provider == nil {
		return nil, &dcf.InvalidInputError{Field: "ticker", Reason: "no data provider configured; use manual entry"}
	}
	snap, err := h.Provider.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	if h.Cache != nil {
		if err := h.Cache.Put(ctx, snap, "quote-api"); err != nil {
			fmt.Printf("[WARNING] snapshot cache write failed: %v\n", err)
		}
	}
	return snap, nil
}

// allowPost writes CORS headers and filters non-POST methods.
func allowPost(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return false
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// writeModelError maps the error taxonomy onto HTTP so the frontend can
// route the user to the right fix.
func writeModelError(w http.ResponseWriter, err error) {
	var invalid *dcf.InvalidInputError
	var degen *dcf.DegenerateModelError
	var noconv *solver.NoConvergenceError

	w.Header().Set("Content-Type", "application/json")
	switch {
	case errors.As(err, &invalid):
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorResponse{Code: "bad_input", Message: err.Error()})
	case errors.As(err, &degen):
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(errorResponse{Code: "degenerate_model", Message: err.Error()})
	case errors.As(err, &noconv):
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(errorResponse{Code: "no_solution_in_range", Message: err.Error()})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errorResponse{Code: "internal", Message: err.Error()})
	}
}
