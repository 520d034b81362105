package renderer

import (
	"strings"
	"testing"

	"github.com/jd/greenpoint"
	"github.com/jd/greenpoint/date"
)

func TestAmountUnknownCurrency(t *testing.T) {
	if got := Amount(12.345, "ZZZ"); got != "12.35 ZZZ" {
		t.Errorf("Amount = %q, want plain fallback", got)
	}
}

func TestSignedAmount(t *testing.T) {
	if got := SignedAmount(0, "EUR"); got != "-" {
		t.Errorf("SignedAmount(0) = %q, want -", got)
	}
	if got := SignedAmount(12.5, "ZZZ"); got != "+12.50 ZZZ" {
		t.Errorf("SignedAmount(+) = %q", got)
	}
	if got := SignedAmount(-12.5, "ZZZ"); got != "-12.50 ZZZ" {
		t.Errorf("SignedAmount(-) = %q", got)
	}
}

func TestQuantity(t *testing.T) {
	if got := quantity(10); got != "10" {
		t.Errorf("quantity(10) = %q", got)
	}
	if got := quantity(2.5); got != "2.5" {
		t.Errorf("quantity(2.5) = %q", got)
	}
}

func TestName(t *testing.T) {
	if got := name("short", 30); got != "short" {
		t.Errorf("name = %q", got)
	}
	if got := name("a very long instrument name indeed", 10); len([]rune(got)) != 10 || !strings.HasSuffix(got, "…") {
		t.Errorf("name = %q, want 10 runes ending in an ellipsis", got)
	}
}

func testSnapshot(t *testing.T) *greenpoint.PortfolioSnapshot {
	t.Helper()
	close := 130.0
	snap, err := greenpoint.Snapshot(greenpoint.PortfolioInput{
		Operations: map[string][]greenpoint.Operation{
			"US0378331005": {
				{ISIN: "US0378331005", Type: greenpoint.Trade, Date: date.MustParse("2021-01-01"), Quantity: 10, Price: 100, Currency: "EUR"},
				{ISIN: "US0378331005", Type: greenpoint.Trade, Date: date.MustParse("2021-02-01"), Quantity: -4, Price: 120, Currency: "EUR"},
			},
			"GB00B03MM408": {
				{ISIN: "GB00B03MM408", Type: greenpoint.Trade, Date: date.MustParse("2021-01-01"), Quantity: 5, Price: 20, Currency: "EUR"},
				{ISIN: "GB00B03MM408", Type: greenpoint.Trade, Date: date.MustParse("2021-03-01"), Quantity: -5, Price: 25, Currency: "EUR"},
			},
		},
		CashOperations: []greenpoint.CashOperation{
			{Type: greenpoint.Deposit, Date: date.MustParse("2021-01-01"), Amount: 2000, Currency: "EUR"},
		},
		Quotes: map[string]*greenpoint.QuoteTimeSeries{
			"US0378331005": greenpoint.NewQuoteTimeSeries(greenpoint.Quote{Date: date.MustParse("2021-02-10"), Close: &close}),
		},
	}, nil)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	return snap
}

func TestSnapshotMarkdown(t *testing.T) {
	out := SnapshotMarkdown(testSnapshot(t))

	if !strings.Contains(out, "US0378331005") {
		t.Errorf("output misses the open position:\n%s", out)
	}
	// The closed position is not an open holding.
	if strings.Contains(out, "GB00B03MM408") {
		t.Errorf("output shows a closed position:\n%s", out)
	}
	if !strings.Contains(out, "2021-02-10") {
		t.Errorf("output misses the last quote date:\n%s", out)
	}
	if !strings.Contains(out, "## Cash") {
		t.Errorf("output misses the cash section:\n%s", out)
	}
}

func TestPositionsMarkdown(t *testing.T) {
	out := PositionsMarkdown(testSnapshot(t), true)

	for _, want := range []string{"US0378331005", "GB00B03MM408", "## Realized Gain", "## Cash"} {
		if !strings.Contains(out, want) {
			t.Errorf("output misses %q:\n%s", want, out)
		}
	}

	// Without includeAll the closed row disappears but its realized gain
	// still counts in the total.
	open := PositionsMarkdown(testSnapshot(t), false)
	if strings.Contains(open, "GB00B03MM408") {
		t.Errorf("output shows a closed position:\n%s", open)
	}
	if !strings.Contains(open, "## Realized Gain") {
		t.Errorf("output misses the realized gain section:\n%s", open)
	}
}

func TestPositionsMarkdownUndefinedPrice(t *testing.T) {
	// Two accounts whose holdings cancel out: the merged row has zero
	// quantity and no meaningful price, and must render a placeholder
	// rather than a zero amount.
	long, err := greenpoint.Snapshot(greenpoint.PortfolioInput{
		Operations: map[string][]greenpoint.Operation{
			"US0378331005": {
				{ISIN: "US0378331005", Type: greenpoint.Trade, Date: date.MustParse("2021-01-01"), Quantity: 10, Price: 100, Currency: "EUR"},
			},
		},
	}, nil)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	short, err := greenpoint.Snapshot(greenpoint.PortfolioInput{
		Operations: map[string][]greenpoint.Operation{
			"US0378331005": {
				{ISIN: "US0378331005", Type: greenpoint.Trade, Date: date.MustParse("2021-01-01"), Quantity: -10, Price: 100, Currency: "EUR"},
			},
		},
	}, nil)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	merged, err := greenpoint.MergeSnapshots(long, short)
	if err != nil {
		t.Fatalf("MergeSnapshots: %v", err)
	}
	out := PositionsMarkdown(merged, true)
	if !strings.Contains(out, "| ? |") {
		t.Errorf("output misses the undefined price placeholder:\n%s", out)
	}
}
