package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"reverse_dcf/pkg/core/solver"
)

func TestHandleSolverOptions(t *testing.T) {
	h := NewHandler(NewStore(solver.DefaultOptions()))

	// GET returns the seeded defaults.
	req := httptest.NewRequest(http.MethodGet, "/api/config/solver", nil)
	w := httptest.NewRecorder()
	h.HandleSolverOptions(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var opts solver.Options
	if err := json.Unmarshal(w.Body.Bytes(), &opts); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if opts.GMin != -0.5 || opts.GMax != 1.5 {
		t.Errorf("Expected default bounds, got [%f, %f]", opts.GMin, opts.GMax)
	}

	// POST replaces them.
	body := `{"g_min":-0.9,"g_max":3.0,"tolerance_g":1e-5,"max_iterations_primary":50,"max_iterations_fallback":100,"method":"FALLBACK"}`
	req = httptest.NewRequest(http.MethodPost, "/api/config/solver", strings.NewReader(body))
	w = httptest.NewRecorder()
	h.HandleSolverOptions(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := h.Store.Options(); got.GMax != 3.0 || got.Method != solver.MethodFallback {
		t.Errorf("Options not updated: %+v", got)
	}
}

func TestHandleSolverOptionsRejectsInvalid(t *testing.T) {
	h := NewHandler(NewStore(solver.DefaultOptions()))

	body := `{"g_min":2.0,"g_max":1.0,"tolerance_g":1e-6,"max_iterations_primary":100,"max_iterations_fallback":200}`
	req := httptest.NewRequest(http.MethodPost, "/api/config/solver", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.HandleSolverOptions(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for inverted bounds, got %d", w.Code)
	}

	// Store keeps the previous options.
	if got := h.Store.Options(); got.GMin != -0.5 {
		t.Errorf("Store mutated by invalid update: %+v", got)
	}
}
