package solver

import "reverse_dcf/pkg/core/dcf"

// Func is a univariate real function that may refuse to evaluate at a point
// (e.g. numeric overflow at extreme growth rates). Root finders in this
// package operate on Func and know nothing about valuation.
type Func func(x float64) (float64, error)

// Residual builds the function whose root is the implied growth rate:
//
//	f(g) = ValueEquity(inputs, g).ValuePerShare - targetPrice
//
// For BaseFCF > 0 and a valid WACC/terminal-growth spread, f is strictly
// increasing in g, which is what makes bracketing sound. With a negative
// BaseFCF the residual can be non-monotonic; in that case the solver
// returns whichever bracketed root it converges to first (multiple roots
// are undefined behavior, matching the model's documented domain).
func Residual(in dcf.ValuationInputs, targetPrice float64) Func {
	return func(g float64) (float64, error) {
		res, err := dcf.ValueEquity(in, g)
		if err != nil {
			return 0, err
		}
		return res.ValuePerShare - targetPrice, nil
	}
}
