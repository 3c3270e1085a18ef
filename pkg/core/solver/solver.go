// Package solver back-solves the growth rate a market price implies under a
// single-stage DCF ("Reverse DCF"). It treats the problem as univariate
// root-finding on the residual f(g) = modeled price(g) - observed price over
// a bounded interval, with a Brent primary method and a plain-bisection
// fallback. Every path terminates within a fixed iteration budget.
package solver

import (
	"errors"
	"fmt"
	"math"

	"reverse_dcf/pkg/core/dcf"
)

// Method identifies which root finder produced a result.
type Method string

const (
	MethodPrimary  Method = "PRIMARY"  // Brent
	MethodFallback Method = "FALLBACK" // Bisection
	MethodAuto     Method = "AUTO"     // Options only: Brent first, bisection on failure
)

// bracketShrinkRetries bounds how many times an endpoint that fails to
// evaluate is pulled toward the midpoint before giving up.
const bracketShrinkRetries = 8

// Options configures the bounded search. Zero value is not usable; start
// from DefaultOptions.
type Options struct {
	GMin                  float64 `json:"g_min" yaml:"g_min"`
	GMax                  float64 `json:"g_max" yaml:"g_max"`
	ToleranceG            float64 `json:"tolerance_g" yaml:"tolerance_g"`
	MaxIterationsPrimary  int     `json:"max_iterations_primary" yaml:"max_iterations_primary"`
	MaxIterationsFallback int     `json:"max_iterations_fallback" yaml:"max_iterations_fallback"`
	Method                Method  `json:"method" yaml:"method"` // AUTO, PRIMARY or FALLBACK
}

// DefaultOptions returns the standard search configuration: growth bounded
// to [-50%, +150%] per year, 1e-6 tolerance on g.
func DefaultOptions() Options {
	return Options{
		GMin:                  -0.5,
		GMax:                  1.5,
		ToleranceG:            1e-6,
		MaxIterationsPrimary:  100,
		MaxIterationsFallback: 200,
		Method:                MethodAuto,
	}
}

// Validate checks option coherence before a solve.
func (o Options) Validate() error {
	if o.GMin >= o.GMax {
		return &dcf.InvalidInputError{Field: "g_min", Reason: "must be below g_max"}
	}
	if o.ToleranceG <= 0 {
		return &dcf.InvalidInputError{Field: "tolerance_g", Reason: "must be positive"}
	}
	if o.MaxIterationsPrimary < 1 || o.MaxIterationsFallback < 1 {
		return &dcf.InvalidInputError{Field: "max_iterations", Reason: "must be at least 1"}
	}
	switch o.Method {
	case MethodAuto, MethodPrimary, MethodFallback, "":
	default:
		return &dcf.InvalidInputError{Field: "method", Reason: "must be AUTO, PRIMARY or FALLBACK"}
	}
	return nil
}

// SolverResult reports one completed solve. Immutable once returned.
type SolverResult struct {
	ImpliedGrowthRate  float64 `json:"implied_growth_rate"`
	IterationsUsed     int     `json:"iterations_used"`
	Converged          bool    `json:"converged"`
	Method             Method  `json:"method"`
	ResidualAtSolution float64 `json:"residual_at_solution"`
}

// NoConvergenceError reports that no root was found in the searched interval
// within the iteration budget. BestResidual lets the caller distinguish
// "price unreachable in range" from "almost converged".
type NoConvergenceError struct {
	BestResidual float64
	Lo, Hi       float64
	Iterations   int
}

func (e *NoConvergenceError) Error() string {
	return fmt.Sprintf("implied growth not found in [%.4f, %.4f] after %d iterations (best residual %.6g)",
		e.Lo, e.Hi, e.Iterations, e.BestResidual)
}

// SolveImpliedGrowth finds the constant annual growth rate at which the DCF
// model reproduces targetPrice per share.
//
// The residual is probed at both interval endpoints; a sign change brackets
// the root. Endpoints where the model refuses to evaluate (overflow at
// extreme growth) are pulled inward a bounded number of times. The bracket
// is then handed to Brent, or to bisection when Brent is disabled via
// Options.Method or fails internally.
func SolveImpliedGrowth(in dcf.ValuationInputs, targetPrice float64, opts Options) (SolverResult, error) {
	if targetPrice <= 0 {
		return SolverResult{}, &dcf.InvalidInputError{Field: "target_price", Reason: "must be positive"}
	}
	if err := in.Validate(); err != nil {
		return SolverResult{}, err
	}
	if err := opts.Validate(); err != nil {
		return SolverResult{}, err
	}

	f := Residual(in, targetPrice)

	lo, flo, err := probeEndpoint(f, opts.GMin, opts.GMax)
	if err != nil {
		return SolverResult{}, err
	}
	hi, fhi, err := probeEndpoint(f, opts.GMax, opts.GMin)
	if err != nil {
		return SolverResult{}, err
	}

	// Exact hits at an endpoint are legitimate roots.
	if flo == 0 {
		return SolverResult{ImpliedGrowthRate: lo, IterationsUsed: 0, Converged: true, Method: MethodPrimary}, nil
	}
	if fhi == 0 {
		return SolverResult{ImpliedGrowthRate: hi, IterationsUsed: 0, Converged: true, Method: MethodPrimary}, nil
	}

	if flo*fhi > 0 {
		best := flo
		if math.Abs(fhi) < math.Abs(flo) {
			best = fhi
		}
		return SolverResult{}, &NoConvergenceError{BestResidual: best, Lo: lo, Hi: hi}
	}

	method := opts.Method
	if method == "" {
		method = MethodAuto
	}

	if method == MethodAuto || method == MethodPrimary {
		root, iters, converged, berr := brent(f, lo, hi, flo, fhi, opts.ToleranceG, opts.MaxIterationsPrimary)
		if berr == nil && converged {
			return finish(f, root, iters, MethodPrimary)
		}
		if method == MethodPrimary {
			if berr != nil {
				return SolverResult{}, berr
			}
			res, _ := f(root)
			return SolverResult{}, &NoConvergenceError{BestResidual: res, Lo: lo, Hi: hi, Iterations: iters}
		}
		// AUTO: fall through to bisection on the original bracket.
	}

	root, iters, converged, berr := bisect(f, lo, hi, flo, opts.ToleranceG, opts.MaxIterationsFallback)
	if berr != nil {
		return SolverResult{}, berr
	}
	if !converged {
		res, _ := f(root)
		return SolverResult{}, &NoConvergenceError{BestResidual: res, Lo: lo, Hi: hi, Iterations: iters}
	}
	return finish(f, root, iters, MethodFallback)
}

// probeEndpoint evaluates f at x, shrinking x toward the far endpoint when
// the model cannot evaluate there (DegenerateModelError from overflow at
// extreme growth). Non-model errors propagate unchanged.
func probeEndpoint(f Func, x, far float64) (float64, float64, error) {
	for i := 0; i <= bracketShrinkRetries; i++ {
		fx, err := f(x)
		if err == nil {
			return x, fx, nil
		}
		var degen *dcf.DegenerateModelError
		if !errors.As(err, &degen) {
			return 0, 0, err
		}
		x = x + (far-x)/2
	}
	lo, hi := x, far
	if lo > hi {
		lo, hi = hi, lo
	}
	return 0, 0, &NoConvergenceError{Lo: lo, Hi: hi}
}

// finish re-evaluates the residual at the accepted root for diagnostics.
func finish(f Func, root float64, iters int, m Method) (SolverResult, error) {
	residual, err := f(root)
	if err != nil {
		// Should not happen for a root inside a validated bracket.
		return SolverResult{}, err
	}
	return SolverResult{
		ImpliedGrowthRate:  root,
		IterationsUsed:     iters,
		Converged:          true,
		Method:             m,
		ResidualAtSolution: residual,
	}, nil
}
