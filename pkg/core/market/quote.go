package market

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"reverse_dcf/pkg/core/utils"
)

const (
	// Quote summary endpoint: price, share count, cap, balance sheet and
	// cash flow highlights in one call.
	quoteSummaryURL = "https://query1.finance.yahoo.com/v10/finance/quoteSummary/%s?modules=price,defaultKeyStatistics,financialData"

	// HTML quote page, used as fallback when the JSON endpoint is blocked
	// or rate-limited.
	quotePageURL = "https://finance.yahoo.com/quote/%s"

	// Browser-ish User-Agent; the endpoints reject the Go default.
	quoteUserAgent = "Mozilla/5.0 (compatible; ReverseDCF/1.0)"
)

// QuoteClient fetches live market snapshots over HTTP. It tries the JSON
// quote-summary endpoint first (fast path), repairs sloppy payloads before
// giving up on them, and falls back to scraping the HTML quote page.
type QuoteClient struct {
	httpClient *http.Client
	baseURL    string // Override for tests; empty means the live endpoint
	pageURL    string
}

// NewQuoteClient creates a client with a 30s timeout.
func NewQuoteClient() *QuoteClient {
	return &QuoteClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

var _ Provider = (*QuoteClient)(nil)

// quoteSummaryResponse mirrors the subset of the quote-summary payload we
// read. Numeric fields arrive wrapped as {"raw": N, "fmt": "..."}.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				ShortName          string   `json:"shortName"`
				RegularMarketPrice rawValue `json:"regularMarketPrice"`
				MarketCap          rawValue `json:"marketCap"`
			} `json:"price"`
			DefaultKeyStatistics struct {
				SharesOutstanding rawValue `json:"sharesOutstanding"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				FreeCashflow        rawValue `json:"freeCashflow"`
				OperatingCashflow   rawValue `json:"operatingCashflow"`
				CapitalExpenditures rawValue `json:"capitalExpenditures"`
				TotalDebt           rawValue `json:"totalDebt"`
				TotalCash           rawValue `json:"totalCash"`
				TotalRevenue        rawValue `json:"totalRevenue"`
				NetIncome           rawValue `json:"netIncomeToCommon"`
			} `json:"financialData"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"quoteSummary"`
}

type rawValue struct {
	Raw float64 `json:"raw"`
}

// Fetch retrieves a snapshot for ticker. The JSON endpoint is the fast
// path; on transport failure or an unusable payload it scrapes the quote
// page instead. The returned snapshot is validated by the caller (the API
// layer routes validation failures to manual entry).
func (c *QuoteClient) Fetch(ctx context.Context, ticker string) (*Snapshot, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker must not be empty")
	}

	snap, err := c.fetchQuoteSummary(ctx, ticker)
	if err == nil {
		return snap, nil
	}
	fmt.Printf("[MARKET] quote-summary failed for %s (%v), trying HTML fallback\n", ticker, err)

	snap, serr := c.scrapeQuotePage(ctx, ticker)
	if serr != nil {
		return nil, fmt.Errorf("quote fetch failed for %s: %v (fallback: %w)", ticker, err, serr)
	}
	return snap, nil
}

func (c *QuoteClient) fetchQuoteSummary(ctx context.Context, ticker string) (*Snapshot, error) {
	url := fmt.Sprintf(c.summaryURL(), ticker)

	body, err := c.get(ctx, url, "application/json")
	if err != nil {
		return nil, err
	}

	// Truncated or otherwise sloppy payloads show up in practice; run the
	// repair chain before rejecting.
	var parsed quoteSummaryResponse
	if _, err := utils.SmartParse(string(body), &parsed); err != nil {
		return nil, fmt.Errorf("unparseable quote summary: %w", err)
	}

	if len(parsed.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no quote result for %s", ticker)
	}
	r := parsed.QuoteSummary.Result[0]

	fcf := r.FinancialData.FreeCashflow.Raw
	if fcf == 0 {
		// Same fallback the balance of providers use: OCF + CapEx, with
		// CapEx reported as a negative number.
		fcf = r.FinancialData.OperatingCashflow.Raw + r.FinancialData.CapitalExpenditures.Raw
	}

	return &Snapshot{
		Ticker:             ticker,
		CompanyName:        r.Price.ShortName,
		CurrentPrice:       r.Price.RegularMarketPrice.Raw,
		MarketCap:          r.Price.MarketCap.Raw,
		FreeCashFlow:       fcf,
		SharesOutstanding:  r.DefaultKeyStatistics.SharesOutstanding.Raw,
		TotalDebt:          r.FinancialData.TotalDebt.Raw,
		CashAndEquivalents: r.FinancialData.TotalCash.Raw,
		Revenue:            r.FinancialData.TotalRevenue.Raw,
		NetIncome:          r.FinancialData.NetIncome.Raw,
	}, nil
}

// scrapeQuotePage pulls price and market cap out of the quote page markup.
// It recovers fewer fields than the JSON endpoint; the result typically
// needs manual completion before a valuation can run.
func (c *QuoteClient) scrapeQuotePage(ctx context.Context, ticker string) (*Snapshot, error) {
	url := fmt.Sprintf(c.htmlURL(), ticker)

	body, err := c.get(ctx, url, "text/html")
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("quote page parse failed: %w", err)
	}

	snap := &Snapshot{Ticker: ticker}

	doc.Find("fin-streamer").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		field, _ := s.Attr("data-field")
		val, ok := s.Attr("data-value")
		if !ok {
			return true
		}
		f, perr := strconv.ParseFloat(val, 64)
		if perr != nil {
			return true
		}
		switch field {
		case "regularMarketPrice":
			if snap.CurrentPrice == 0 {
				snap.CurrentPrice = f
			}
		case "marketCap":
			if snap.MarketCap == 0 {
				snap.MarketCap = f
			}
		}
		return true
	})

	if name := doc.Find("h1").First().Text(); name != "" {
		snap.CompanyName = strings.TrimSpace(name)
	}

	if snap.CurrentPrice == 0 {
		return nil, fmt.Errorf("quote page for %s had no usable price", ticker)
	}
	return snap, nil
}

func (c *QuoteClient) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", quoteUserAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

func (c *QuoteClient) summaryURL() string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return quoteSummaryURL
}

func (c *QuoteClient) htmlURL() string {
	if c.pageURL != "" {
		return c.pageURL
	}
	return quotePageURL
}
