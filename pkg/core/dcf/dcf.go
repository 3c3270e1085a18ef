// Package dcf implements a single-stage Discounted Cash Flow model:
// free cash flow compounding at one constant growth rate over an explicit
// horizon, plus a Gordon Growth terminal value.
//
// Every function here is pure and closed-form. All iteration (implied
// growth back-solving) lives in pkg/core/solver on top of this package.
package dcf

import "math"

// EpsDenominator is the minimum spread required between WACC and terminal
// growth. Below this the perpetuity denominator is numerically meaningless.
const EpsDenominator = 1e-6

// ValuationInputs holds the fixed parameters of a single-stage DCF.
// The growth rate is passed separately so the solver can vary it while
// everything else stays constant.
type ValuationInputs struct {
	BaseFCF           float64 `json:"base_fcf" yaml:"base_fcf"`                     // Last reported annual FCF (absolute units)
	WACC              float64 `json:"wacc" yaml:"wacc"`                             // Discount rate, e.g. 0.10
	TerminalGrowth    float64 `json:"terminal_growth" yaml:"terminal_growth"`       // Perpetuity growth, e.g. 0.025
	HorizonYears      int     `json:"horizon_years" yaml:"horizon_years"`           // Explicit projection years, >= 1
	SharesOutstanding float64 `json:"shares_outstanding" yaml:"shares_outstanding"` // Must be > 0
	NetDebt           float64 `json:"net_debt" yaml:"net_debt"`                     // Total debt - cash; negative means net cash
}

// ValuationResult holds the valuation outputs. Derived deterministically from
// ValuationInputs plus a growth rate; never mutated after construction.
type ValuationResult struct {
	PVCashFlows     float64   `json:"pv_cash_flows"`
	PVTerminalValue float64   `json:"pv_terminal_value"`
	EnterpriseValue float64   `json:"enterprise_value"`
	EquityValue     float64   `json:"equity_value"`
	ValuePerShare   float64   `json:"value_per_share"`
	ProjectedFCF    []float64 `json:"projected_fcf"` // Year 1..HorizonYears
}

// Validate checks the structural invariants that hold regardless of the
// growth rate being evaluated.
func (in ValuationInputs) Validate() error {
	if in.HorizonYears < 1 {
		return &InvalidInputError{Field: "horizon_years", Reason: "must be at least 1"}
	}
	if in.SharesOutstanding <= 0 {
		return &InvalidInputError{Field: "shares_outstanding", Reason: "must be positive"}
	}
	if in.WACC <= 0 || in.WACC >= 1 {
		return &InvalidInputError{Field: "wacc", Reason: "must be in (0, 1)"}
	}
	if in.WACC-in.TerminalGrowth <= EpsDenominator {
		return &DegenerateModelError{WACC: in.WACC, TerminalGrowth: in.TerminalGrowth}
	}
	return nil
}

// ValueEquity runs the forward DCF for one growth rate.
//
// 1. FCF_i = BaseFCF * (1+g)^i for i = 1..HorizonYears
// 2. PV(FCF) = sum FCF_i / (1+WACC)^i
// 3. TV = FCF_N * (1+g_t) / (WACC - g_t)    (Gordon Growth)
// 4. PV(TV) = TV / (1+WACC)^N
// 5. EV = PV(FCF) + PV(TV); Equity = EV - NetDebt; per-share = Equity / Shares
//
// Double precision throughout, no rounding. Any non-finite intermediate
// (overflow at extreme growth rates) surfaces as DegenerateModelError so the
// caller never sees Inf or NaN.
func ValueEquity(in ValuationInputs, growth float64) (ValuationResult, error) {
	if err := in.Validate(); err != nil {
		return ValuationResult{}, err
	}

	projected := make([]float64, in.HorizonYears)
	var pvFCF float64
	fcf := in.BaseFCF
	discount := 1.0
	for i := 0; i < in.HorizonYears; i++ {
		fcf *= 1 + growth
		discount *= 1 + in.WACC
		projected[i] = fcf
		pvFCF += fcf / discount
	}

	tv := fcf * (1 + in.TerminalGrowth) / (in.WACC - in.TerminalGrowth)
	pvTV := tv / discount

	ev := pvFCF + pvTV
	equity := ev - in.NetDebt
	perShare := equity / in.SharesOutstanding

	if math.IsNaN(perShare) || math.IsInf(perShare, 0) || math.IsInf(pvFCF, 0) {
		return ValuationResult{}, &DegenerateModelError{WACC: in.WACC, TerminalGrowth: in.TerminalGrowth}
	}

	return ValuationResult{
		PVCashFlows:     pvFCF,
		PVTerminalValue: pvTV,
		EnterpriseValue: ev,
		EquityValue:     equity,
		ValuePerShare:   perShare,
		ProjectedFCF:    projected,
	}, nil
}
