package utils

import (
	"testing"
)

type quotePayload struct {
	Price  float64 `json:"price"`
	Shares float64 `json:"shares"`
}

func TestSmartParseStrictJSON(t *testing.T) {
	var p quotePayload
	normalized, err := SmartParse(`{"price": 140.5, "shares": 24.3}`, &p)
	if err != nil {
		t.Fatalf("Should have parsed: %v", err)
	}
	if p.Price != 140.5 || p.Shares != 24.3 {
		t.Errorf("Bad decode: %+v", p)
	}
	if normalized == "" {
		t.Error("Expected normalized payload")
	}
}

func TestSmartParseRepairsSloppyJSON(t *testing.T) {
	cases := []string{
		`{'price': 140.5, 'shares': 24.3}`,                   // single quotes
		`{"price": 140.5, "shares": 24.3,}`,                  // trailing comma
		`{"price": 140.5, "shares": 24.3`,                    // unclosed object
		"```json\n{\"price\": 140.5, \"shares\": 24.3}\n```", // fenced
	}
	for _, input := range cases {
		var p quotePayload
		if _, err := SmartParse(input, &p); err != nil {
			t.Errorf("Should have repaired %q: %v", input, err)
			continue
		}
		if p.Price != 140.5 {
			t.Errorf("Bad decode of %q: %+v", input, p)
		}
	}
}

func TestSmartParseHJSON(t *testing.T) {
	input := `{
  # analyst annotation survives parsing
  price: 140.5
  shares: 24.3
}`
	var p quotePayload
	if _, err := SmartParse(input, &p); err != nil {
		t.Fatalf("Should have parsed Hjson: %v", err)
	}
	if p.Price != 140.5 || p.Shares != 24.3 {
		t.Errorf("Bad decode: %+v", p)
	}
}

// A multi-line Hjson document must reach the Hjson branch: the repairer
// would otherwise fold everything after the first unquoted value into one
// string and decode a zero-valued struct.
func TestSmartParseHJSONMultiField(t *testing.T) {
	input := `{
  ticker: EXPL
  current_price: 140.0
  shares_outstanding: 24.3e9
  free_cash_flow: 30e9
}`
	var snap struct {
		Ticker string  `json:"ticker"`
		Price  float64 `json:"current_price"`
		Shares float64 `json:"shares_outstanding"`
		FCF    float64 `json:"free_cash_flow"`
	}
	if _, err := SmartParse(input, &snap); err != nil {
		t.Fatalf("Should have parsed Hjson snapshot: %v", err)
	}
	if snap.Ticker != "EXPL" {
		t.Errorf("Bad ticker: %q", snap.Ticker)
	}
	if snap.Price != 140.0 {
		t.Errorf("Price lost in parse: %f", snap.Price)
	}
	if snap.Shares != 24.3e9 {
		t.Errorf("Shares should decode exactly, got %v", snap.Shares)
	}
	if snap.FCF != 30e9 {
		t.Errorf("Bad FCF: %f", snap.FCF)
	}
}

func TestSmartParseRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "   \n\t "} {
		var p quotePayload
		if _, err := SmartParse(input, &p); err == nil {
			t.Errorf("Input %q should fail", input)
		}
	}
}

func TestParseHJSONToStruct(t *testing.T) {
	var p quotePayload
	err := ParseHJSONToStruct("price: 1\nshares: 2\n", &p)
	if err != nil {
		t.Fatalf("Should have parsed: %v", err)
	}
	if p.Price != 1 || p.Shares != 2 {
		t.Errorf("Bad decode: %+v", p)
	}
}

func TestCleanMarkdown(t *testing.T) {
	in := "```markdown\n# Note\nImplied growth looks demanding.\n```"
	out := CleanMarkdown(in)
	if out != "# Note\nImplied growth looks demanding." {
		t.Errorf("Unexpected cleanup result: %q", out)
	}
	if !ValidateMarkdown(out) {
		t.Error("Cleaned markdown should validate")
	}
}
