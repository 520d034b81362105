package greenpoint

import (
	"slices"
	"strings"

	"github.com/jd/greenpoint/date"
)

// PortfolioInput carries the materialized event streams for one portfolio
// (typically one brokerage account). The maps are keyed by ISIN.
type PortfolioInput struct {
	Instruments    map[string]Instrument
	Operations     map[string][]Operation
	CashOperations []CashOperation
	Quotes         map[string]*QuoteTimeSeries
}

// HoldingRow is the reportable state of one instrument: its accounting
// fold plus the mark-to-market figures derived from the quote series.
type HoldingRow struct {
	Instrument Instrument
	State      PositionState

	// PriceUndefined marks a cross-account merge whose combined quantity
	// is zero: a weighted average price cannot be computed there, and the
	// row must report it as absent rather than zero.
	PriceUndefined bool

	quotes *QuoteTimeSeries
}

// LatestQuote returns the most recent quote known for the instrument.
func (r HoldingRow) LatestQuote() (Quote, bool) {
	if r.quotes == nil {
		return Quote{}, false
	}
	return r.quotes.Latest()
}

// MarketValue returns quantity times the latest closing price, or false
// when no usable quote exists.
func (r HoldingRow) MarketValue() (float64, bool) {
	q, ok := r.LatestQuote()
	if !ok || q.Close == nil {
		return 0, false
	}
	return r.State.Quantity * *q.Close, true
}

// PotentialGain returns the unrealized gain of the open position,
// mark-to-market against the cost basis, or false when it cannot be
// computed (no quote, or undefined merged price).
func (r HoldingRow) PotentialGain() (float64, bool) {
	q, ok := r.LatestQuote()
	if !ok || q.Close == nil || r.PriceUndefined {
		return 0, false
	}
	return (*q.Close - r.State.Price) * r.State.Quantity, true
}

// PotentialGainSince returns the gain of the open position since the quote
// at the given ordinal index (negative counts from the end, so -2 is the
// trading day before the latest). It returns false when either quote is
// missing a close.
func (r HoldingRow) PotentialGainSince(n int) (float64, bool) {
	latest, ok := r.LatestQuote()
	if !ok || latest.Close == nil || r.quotes == nil {
		return 0, false
	}
	ref, err := r.quotes.At(n)
	if err != nil || ref.Close == nil {
		return 0, false
	}
	return (*latest.Close - *ref.Close) * r.State.Quantity, true
}

// PortfolioSnapshot is a plain, reportable view of a portfolio at a point
// in time: one row per instrument that had operations, plus per-currency
// cash balances. Presentation layers render it; this package never formats.
type PortfolioSnapshot struct {
	AsOf *date.Date // nil means "all operations", i.e. now
	Rows []HoldingRow
	Cash map[string]float64
}

// RealizedGain sums the realized gain over all rows.
func (s *PortfolioSnapshot) RealizedGain() float64 {
	var total float64
	for _, r := range s.Rows {
		total += r.State.Gain
	}
	return total
}

// Row returns the row for the given ISIN.
func (s *PortfolioSnapshot) Row(isin string) (HoldingRow, bool) {
	for _, r := range s.Rows {
		if r.State.ISIN == isin {
			return r, true
		}
	}
	return HoldingRow{}, false
}

// Snapshot replays every instrument's operations and composes the result
// with cash balances and quote series into a reportable snapshot.
//
// When asOf is non-nil, operations dated after it are ignored, and
// instruments whose operation list becomes empty are skipped entirely.
// Each instrument's stream is folded independently; an input-contract
// violation in any stream (mixed instrument or currency) aborts the whole
// snapshot.
func Snapshot(in PortfolioInput, asOf *date.Date) (*PortfolioSnapshot, error) {
	snap := &PortfolioSnapshot{
		AsOf: asOf,
		Cash: CashBalances(in.CashOperations, asOf),
	}

	for isin, ops := range in.Operations {
		if asOf != nil {
			kept := make([]Operation, 0, len(ops))
			for _, op := range ops {
				if !op.Date.After(*asOf) {
					kept = append(kept, op)
				}
			}
			ops = kept
		}
		if len(ops) == 0 {
			continue
		}
		SortOperations(ops)
		state, err := Position(ops)
		if err != nil {
			return nil, err
		}
		snap.Rows = append(snap.Rows, HoldingRow{
			Instrument: in.Instruments[isin],
			State:      state,
			quotes:     in.Quotes[isin],
		})
	}

	sortRows(snap.Rows)
	return snap, nil
}

// sortRows orders rows by instrument name, falling back to ISIN so rows
// without a resolved instrument still sort deterministically.
func sortRows(rows []HoldingRow) {
	slices.SortFunc(rows, func(a, b HoldingRow) int {
		if c := strings.Compare(a.Instrument.Name(), b.Instrument.Name()); c != 0 {
			return c
		}
		return strings.Compare(a.State.ISIN, b.State.ISIN)
	})
}

// MergeSnapshots combines snapshots from several source portfolios (e.g.
// multiple brokerage accounts holding the same security) into one view.
//
// Rows for the same ISIN are combined: quantities, realized figures and
// fees add up, and the cost basis is reweighted as the quantity-weighted
// average of the source prices. When the combined quantity is zero the
// combined price is undefined and the row is marked PriceUndefined.
// Combining rows recorded in different currencies is a contract violation.
func MergeSnapshots(snaps ...*PortfolioSnapshot) (*PortfolioSnapshot, error) {
	merged := &PortfolioSnapshot{Cash: make(map[string]float64)}
	byISIN := make(map[string]int) // isin -> index in merged.Rows

	for _, snap := range snaps {
		for cur, amount := range snap.Cash {
			merged.Cash[cur] += amount
		}
		for _, row := range snap.Rows {
			i, ok := byISIN[row.State.ISIN]
			if !ok {
				byISIN[row.State.ISIN] = len(merged.Rows)
				merged.Rows = append(merged.Rows, row)
				continue
			}
			combined, err := combineRows(merged.Rows[i], row)
			if err != nil {
				return nil, err
			}
			merged.Rows[i] = combined
		}
	}

	sortRows(merged.Rows)
	return merged, nil
}

func combineRows(a, b HoldingRow) (HoldingRow, error) {
	if a.State.Currency != b.State.Currency {
		return HoldingRow{}, MixedCurrencyError{ISIN: a.State.ISIN, Want: a.State.Currency, Got: b.State.Currency}
	}

	s := a.State
	o := b.State
	quantity := s.Quantity + o.Quantity

	c := PositionState{
		ISIN:      s.ISIN,
		Currency:  s.Currency,
		Quantity:  quantity,
		Bought:    s.Bought + o.Bought,
		Sold:      s.Sold + o.Sold,
		Fees:      s.Fees + o.Fees,
		Taxes:     s.Taxes + o.Taxes,
		Dividend:  s.Dividend + o.Dividend,
		Gain:      s.Gain + o.Gain,
		Trades:    s.Trades + o.Trades,
		DateFirst: s.DateFirst,
		DateLast:  s.DateLast,
	}
	if o.DateFirst.Before(c.DateFirst) {
		c.DateFirst = o.DateFirst
	}
	if o.DateLast.After(c.DateLast) {
		c.DateLast = o.DateLast
	}

	undefined := quantity == 0
	if !undefined {
		c.Price = (s.Price*s.Quantity + o.Price*o.Quantity) / quantity
	}
	if bought := c.Bought; bought != 0 {
		c.AveragePriceBought = (s.AveragePriceBought*s.Bought + o.AveragePriceBought*o.Bought) / bought
	}
	if sold := c.Sold; sold != 0 {
		c.AveragePriceSold = (s.AveragePriceSold*s.Sold + o.AveragePriceSold*o.Sold) / sold
	}

	quotes := a.quotes
	if quotes == nil {
		quotes = b.quotes
	}
	return HoldingRow{
		Instrument:     a.Instrument,
		State:          c,
		PriceUndefined: undefined,
		quotes:         quotes,
	}, nil
}
