// Package config exposes the solver options over HTTP so the frontend can
// widen bounds or loosen tolerances without a restart.
package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"reverse_dcf/pkg/core/solver"
)

// Store holds the runtime solver options behind a lock. Handlers read a
// copy per request, so a solve in flight never sees a half-updated set.
type Store struct {
	mu   sync.RWMutex
	opts solver.Options
}

// NewStore creates a store seeded with opts.
func NewStore(opts solver.Options) *Store {
	return &Store{opts: opts}
}

// Options returns the current option set by value.
func (s *Store) Options() solver.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// Update validates and swaps in a new option set.
func (s *Store) Update(opts solver.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.opts = opts
	s.mu.Unlock()
	return nil
}

// Handler serves the solver-option endpoints.
type Handler struct {
	Store *Store
}

// NewHandler creates a config handler over the given store.
func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

// HandleSolverOptions serves GET (current options) and POST (replace
// options) on /api/config/solver.
func (h *Handler) HandleSolverOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	switch r.Method {
	case http.MethodGet:
		json.NewEncoder(w).Encode(h.Store.Options())

	case http.MethodPost:
		var opts solver.Options
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := h.Store.Update(opts); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fmt.Printf("[CONFIG] solver options updated: g in [%.2f, %.2f], tol %g\n",
			opts.GMin, opts.GMax, opts.ToleranceG)
		json.NewEncoder(w).Encode(h.Store.Options())

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
