package dcf

// DiscountRateInputs holds market parameters for deriving a WACC when the
// caller does not supply one directly.
type DiscountRateInputs struct {
	UnleveredBeta     float64 `json:"unlevered_beta"`
	RiskFreeRate      float64 `json:"risk_free_rate"`
	MarketRiskPremium float64 `json:"market_risk_premium"`
	PreTaxCostOfDebt  float64 `json:"pre_tax_cost_of_debt"`
	TaxRate           float64 `json:"tax_rate"`
	DebtToEquity      float64 `json:"debt_to_equity"` // Target leverage (D/E)
}

// DiscountRate holds the derived cost of capital and its components.
type DiscountRate struct {
	LeveredBeta  float64 `json:"levered_beta"`
	CostOfEquity float64 `json:"cost_of_equity"`
	CostOfDebt   float64 `json:"cost_of_debt"` // After-tax
	WACC         float64 `json:"wacc"`
	WeightDebt   float64 `json:"weight_debt"`
	WeightEquity float64 `json:"weight_equity"`
}

// DeriveWACC computes the discount rate from CAPM plus the Hamada equation.
//
// BetaL = BetaU * (1 + (1-t)*(D/E))
// Ke = Rf + BetaL * MRP
// Kd = PreTaxKd * (1 - t)
// Wd = (D/E) / (1 + D/E), We = 1 / (1 + D/E)
// WACC = Ke*We + Kd*Wd
func DeriveWACC(in DiscountRateInputs) DiscountRate {
	leveredBeta := in.UnleveredBeta * (1 + (1-in.TaxRate)*in.DebtToEquity)
	ke := in.RiskFreeRate + leveredBeta*in.MarketRiskPremium
	kd := in.PreTaxCostOfDebt * (1 - in.TaxRate)

	wd := in.DebtToEquity / (1 + in.DebtToEquity)
	we := 1.0 / (1 + in.DebtToEquity)

	return DiscountRate{
		LeveredBeta:  leveredBeta,
		CostOfEquity: ke,
		CostOfDebt:   kd,
		WACC:         ke*we + kd*wd,
		WeightDebt:   wd,
		WeightEquity: we,
	}
}
