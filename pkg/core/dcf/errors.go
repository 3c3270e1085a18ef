package dcf

import "fmt"

// InvalidInputError reports malformed or out-of-domain model inputs.
// It is terminal for the call that raised it; the caller fixes the input,
// the engine never retries.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %q: %s", e.Field, e.Reason)
}

// DegenerateModelError reports a Gordon Growth denominator at or below
// epsilon (WACC <= terminal growth + eps). The terminal value formula is
// undefined there, so the model refuses to evaluate rather than emit
// Inf or a sign-flipped value.
type DegenerateModelError struct {
	WACC           float64
	TerminalGrowth float64
}

func (e *DegenerateModelError) Error() string {
	return fmt.Sprintf("terminal growth must be below WACC: wacc=%.6f terminal_growth=%.6f (spread < %g)",
		e.WACC, e.TerminalGrowth, EpsDenominator)
}
