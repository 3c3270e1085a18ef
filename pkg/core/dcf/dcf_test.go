package dcf

import (
	"errors"
	"math"
	"testing"
)

func baseInputs() ValuationInputs {
	return ValuationInputs{
		BaseFCF:           100,
		WACC:              0.09,
		TerminalGrowth:    0.02,
		HorizonYears:      5,
		SharesOutstanding: 10,
		NetDebt:           50,
	}
}

func TestValueEquity(t *testing.T) {
	// Hand-checked: FCF_i = 100*1.05^i, discounted at 9%.
	// PV(FCF) = 447.57446, TV = 127.62816*1.02/0.07, PV(TV) = 1208.69336,
	// EV = 1656.26782, equity = 1606.26782, per-share = 160.62678.
	res, err := ValueEquity(baseInputs(), 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(res.PVCashFlows-447.57446) > 1e-4 {
		t.Errorf("Expected PV(FCF) 447.57446, got %f", res.PVCashFlows)
	}
	if math.Abs(res.PVTerminalValue-1208.69336) > 1e-4 {
		t.Errorf("Expected PV(TV) 1208.69336, got %f", res.PVTerminalValue)
	}
	if math.Abs(res.EnterpriseValue-1656.26782) > 1e-4 {
		t.Errorf("Expected EV 1656.26782, got %f", res.EnterpriseValue)
	}
	if math.Abs(res.ValuePerShare-160.62678) > 1e-4 {
		t.Errorf("Expected per-share 160.62678, got %f", res.ValuePerShare)
	}

	if len(res.ProjectedFCF) != 5 {
		t.Fatalf("Expected 5 projected years, got %d", len(res.ProjectedFCF))
	}
	if math.Abs(res.ProjectedFCF[0]-105.0) > 1e-9 {
		t.Errorf("Expected year-1 FCF 105, got %f", res.ProjectedFCF[0])
	}
	if math.Abs(res.ProjectedFCF[4]-127.62815625) > 1e-8 {
		t.Errorf("Expected year-5 FCF 127.62815625, got %f", res.ProjectedFCF[4])
	}
}

func TestValueEquityNetCash(t *testing.T) {
	// Negative net debt (net cash) adds to equity value.
	in := baseInputs()
	in.NetDebt = -50

	res, err := ValueEquity(in, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.EquityValue-(res.EnterpriseValue+50)) > 1e-9 {
		t.Errorf("Expected equity = EV + 50, got EV=%f equity=%f", res.EnterpriseValue, res.EquityValue)
	}
}

func TestDegenerateGuard(t *testing.T) {
	// WACC == terminal growth must fail loudly, never return Inf/NaN.
	in := baseInputs()
	in.TerminalGrowth = in.WACC

	_, err := ValueEquity(in, 0.05)
	var degen *DegenerateModelError
	if !errors.As(err, &degen) {
		t.Fatalf("Expected DegenerateModelError, got %v", err)
	}

	// Barely inside the epsilon band fails the same way.
	in.TerminalGrowth = in.WACC - EpsDenominator/2
	if _, err := ValueEquity(in, 0.05); err == nil {
		t.Error("Expected error inside epsilon band, got nil")
	}
}

func TestInvalidInputs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ValuationInputs)
	}{
		{"zero shares", func(in *ValuationInputs) { in.SharesOutstanding = 0 }},
		{"negative shares", func(in *ValuationInputs) { in.SharesOutstanding = -1 }},
		{"zero horizon", func(in *ValuationInputs) { in.HorizonYears = 0 }},
		{"negative horizon", func(in *ValuationInputs) { in.HorizonYears = -3 }},
		{"wacc above 1", func(in *ValuationInputs) { in.WACC = 1.5 }},
		{"non-positive wacc", func(in *ValuationInputs) { in.WACC = 0 }},
	}

	for _, tc := range cases {
		in := baseInputs()
		tc.mutate(&in)
		_, err := ValueEquity(in, 0.05)
		if err == nil {
			t.Errorf("%s: expected error, got nil", tc.name)
			continue
		}
		var invalid *InvalidInputError
		var degen *DegenerateModelError
		if !errors.As(err, &invalid) && !errors.As(err, &degen) {
			t.Errorf("%s: unexpected error type %T", tc.name, err)
		}
	}
}

func TestMonotonicInGrowth(t *testing.T) {
	// With positive base FCF, per-share value must strictly increase in g.
	// This is what makes the reverse solver's bracketing sound.
	in := baseInputs()
	prev := math.Inf(-1)
	for g := -0.4; g <= 1.4; g += 0.05 {
		res, err := ValueEquity(in, g)
		if err != nil {
			t.Fatalf("unexpected error at g=%f: %v", g, err)
		}
		if res.ValuePerShare <= prev {
			t.Fatalf("Value not increasing at g=%f: %f <= %f", g, res.ValuePerShare, prev)
		}
		prev = res.ValuePerShare
	}
}

func TestDeriveWACC(t *testing.T) {
	// BetaU=1.0, t=25%, D/E=0.5 -> BetaL = 1*(1+0.75*0.5) = 1.375
	// Ke = 0.04 + 1.375*0.05 = 0.10875; Kd = 0.06*0.75 = 0.045
	// Wd = 0.5/1.5 = 1/3, We = 2/3
	// WACC = 0.10875*2/3 + 0.045/3 = 0.0725 + 0.015 = 0.0875
	dr := DeriveWACC(DiscountRateInputs{
		UnleveredBeta:     1.0,
		RiskFreeRate:      0.04,
		MarketRiskPremium: 0.05,
		PreTaxCostOfDebt:  0.06,
		TaxRate:           0.25,
		DebtToEquity:      0.5,
	})

	if math.Abs(dr.LeveredBeta-1.375) > 1e-9 {
		t.Errorf("Expected levered beta 1.375, got %f", dr.LeveredBeta)
	}
	if math.Abs(dr.CostOfEquity-0.10875) > 1e-9 {
		t.Errorf("Expected Ke 0.10875, got %f", dr.CostOfEquity)
	}
	if math.Abs(dr.WACC-0.0875) > 1e-9 {
		t.Errorf("Expected WACC 0.0875, got %f", dr.WACC)
	}
}
