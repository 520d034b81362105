package renderer

import (
	"fmt"
	"strings"

	"github.com/jd/greenpoint"
)

// SnapshotMarkdown renders the open positions of a snapshot, mark-to-market:
// quantity, cost basis, latest market price, unrealized gain and the gain
// since the previous trading day. Closed positions are omitted, unless
// their quantity went negative, which signals a reconciliation bug worth
// seeing.
func SnapshotMarkdown(s *greenpoint.PortfolioSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio\n\n")
	if s.AsOf != nil {
		fmt.Fprintf(&b, "As of %s.\n\n", s.AsOf)
	}

	fmt.Fprintln(&b, "| Instrument | Qty | B. Price | M. Price | Gain | Daily Gain | Last Quote |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|:---|")
	for _, row := range s.Rows {
		if row.State.Quantity == 0 {
			continue
		}
		cur := row.State.Currency
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			name(rowName(row), 30),
			quantity(row.State.Quantity),
			basisPrice(row),
			marketPrice(row),
			gainCell(row.PotentialGain, cur),
			gainCell(func() (float64, bool) { return row.PotentialGainSince(-2) }, cur),
			lastQuoteDate(row),
		)
	}

	b.WriteString(cashMarkdown(s.Cash))
	return b.String()
}

// PositionsMarkdown renders the full accounting state of every instrument:
// realized figures, cumulative bought/sold averages, fees, taxes and
// dividends. With includeAll false, fully closed positions are skipped.
func PositionsMarkdown(s *greenpoint.PortfolioSnapshot, includeAll bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Transactions\n\n")
	if s.AsOf != nil {
		fmt.Fprintf(&b, "As of %s.\n\n", s.AsOf)
	}

	fmt.Fprintln(&b, "| Instrument | Qty | Price | Gain | Div. | Fees | Taxes | Bought | Sold | Avg P.B. | Avg P.S. | First | Last |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|:---|:---|")
	for _, row := range s.Rows {
		if !includeAll && row.State.Quantity == 0 {
			continue
		}
		st := row.State
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			name(rowName(row), 30),
			quantity(st.Quantity),
			basisPrice(row),
			SignedAmount(st.Gain, st.Currency),
			Amount(st.Dividend, st.Currency),
			Amount(st.Fees, st.Currency),
			Amount(st.Taxes, st.Currency),
			quantity(st.Bought),
			quantity(st.Sold),
			Amount(st.AveragePriceBought, st.Currency),
			Amount(st.AveragePriceSold, st.Currency),
			st.DateFirst,
			st.DateLast,
		)
	}

	// One realized gain total per currency present in the rows.
	totals := make(map[string]float64)
	for _, row := range s.Rows {
		totals[row.State.Currency] += row.State.Gain
	}
	if len(totals) > 0 {
		fmt.Fprintf(&b, "\n## Realized Gain\n\n")
		for _, cur := range sortedKeys(totals) {
			fmt.Fprintf(&b, "- %s\n", SignedAmount(totals[cur], cur))
		}
	}

	b.WriteString(cashMarkdown(s.Cash))
	return b.String()
}

func cashMarkdown(cash map[string]float64) string {
	if len(cash) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n## Cash\n\n")
	fmt.Fprintln(&b, "| Currency | Balance |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, cur := range sortedKeys(cash) {
		fmt.Fprintf(&b, "| %s | %s |\n", cur, Amount(cash[cur], cur))
	}
	return b.String()
}

func rowName(row greenpoint.HoldingRow) string {
	if n := row.Instrument.Name(); n != "" {
		return n
	}
	return row.State.ISIN
}

func basisPrice(row greenpoint.HoldingRow) string {
	if row.PriceUndefined {
		return "?"
	}
	return Amount(row.State.Price, row.State.Currency)
}

func marketPrice(row greenpoint.HoldingRow) string {
	q, ok := row.LatestQuote()
	if !ok || q.Close == nil {
		return "?"
	}
	return Amount(*q.Close, row.State.Currency)
}

func gainCell(f func() (float64, bool), cur string) string {
	v, ok := f()
	if !ok {
		return "?"
	}
	return SignedAmount(v, cur)
}

func lastQuoteDate(row greenpoint.HoldingRow) string {
	q, ok := row.LatestQuote()
	if !ok {
		return "?"
	}
	return q.Date.String()
}
