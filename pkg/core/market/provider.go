// Package market fetches the handful of numeric fields the valuation engine
// consumes: price, market cap, free cash flow, share count, debt and cash.
// Data comes from a public quote API with an HTML-scrape fallback, or from
// manually supplied payloads subject to the same validation.
package market

import (
	"context"

	"reverse_dcf/pkg/core/dcf"
)

// Snapshot is the fixed schema the data provider returns. All money fields
// are absolute units (not millions). Revenue and NetIncome are carried for
// display; the engine itself only consumes FCF, shares, debt and cash.
type Snapshot struct {
	Ticker             string  `json:"ticker"`
	CompanyName        string  `json:"company_name"`
	CurrentPrice       float64 `json:"current_price"`
	MarketCap          float64 `json:"market_cap"`
	FreeCashFlow       float64 `json:"free_cash_flow"`
	SharesOutstanding  float64 `json:"shares_outstanding"`
	TotalDebt          float64 `json:"total_debt"`
	CashAndEquivalents float64 `json:"cash_and_equivalents"`
	Revenue            float64 `json:"revenue"`
	NetIncome          float64 `json:"net_income"`
}

// NetDebt is total debt minus cash; negative means net cash.
func (s *Snapshot) NetDebt() float64 {
	return s.TotalDebt - s.CashAndEquivalents
}

// Validate checks the fields the valuation engine depends on. A snapshot
// that fails here should be corrected via manual entry, not retried.
func (s *Snapshot) Validate() error {
	if s.CurrentPrice <= 0 {
		return &dcf.InvalidInputError{Field: "current_price", Reason: "must be positive"}
	}
	if s.SharesOutstanding <= 0 {
		return &dcf.InvalidInputError{Field: "shares_outstanding", Reason: "must be positive"}
	}
	if s.FreeCashFlow == 0 {
		return &dcf.InvalidInputError{Field: "free_cash_flow", Reason: "missing; supply manually"}
	}
	return nil
}

// Provider fetches a snapshot for a ticker. Implementations: QuoteClient
// (live HTTP) and the snapshot cache in pkg/core/store.
type Provider interface {
	Fetch(ctx context.Context, ticker string) (*Snapshot, error)
}
