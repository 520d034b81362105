package greenpoint

import (
	"errors"
	"fmt"

	"github.com/jd/greenpoint/date"
)

// ErrNoOperations is returned by Position when the operation slice is empty.
var ErrNoOperations = errors.New("no operations to process")

// MixedInstrumentError reports that one Position call received operations
// for more than one instrument.
type MixedInstrumentError struct {
	Want, Got string // the offending ISINs
}

func (e MixedInstrumentError) Error() string {
	return fmt.Sprintf("operations mix instruments: %s and %s", e.Want, e.Got)
}

// MixedCurrencyError reports that one Position call received operations
// in more than one currency.
type MixedCurrencyError struct {
	ISIN      string
	Want, Got string // the offending currency codes
}

func (e MixedCurrencyError) Error() string {
	return fmt.Sprintf("operations for %s mix currencies: %s and %s", e.ISIN, e.Want, e.Got)
}

// PositionState is the accounting state of one instrument after replaying
// its operations.
//
// Price is the weighted average cost per unit of the currently open holding
// partition. Quantity may be negative when the broker data records more
// disposals than acquisitions; that is surfaced as-is so callers can flag
// the reconciliation bug, never rejected.
type PositionState struct {
	ISIN     string
	Currency string

	Quantity float64 // running signed position
	Price    float64 // weighted average cost of the open partition

	Bought             float64 // cumulative acquired quantity
	Sold               float64 // cumulative disposed quantity
	AveragePriceBought float64
	AveragePriceSold   float64

	Fees     float64
	Taxes    float64
	Dividend float64
	Gain     float64 // realized gain, proceeds minus cost basis

	Trades    int
	DateFirst date.Date
	DateLast  date.Date
}

// Closed reports whether the position is fully closed.
func (s PositionState) Closed() bool { return s.Quantity == 0 }

// Position replays a stream of operations for a single instrument and
// returns the resulting accounting state.
//
// All operations must share one instrument and one currency and be sorted
// in the canonical order produced by SortOperations. The fold is
// deterministic: replaying the same slice from scratch always reproduces
// the same state.
//
// Cost basis follows holding partitions: a disposal never changes Price,
// but once Quantity returns to exactly zero the next acquisition re-seeds
// the cost basis from scratch, because the acquisition weighting formula
// gives no weight to an empty position. A closed-and-reopened position is
// a new lot, not a continuation.
func Position(ops []Operation) (PositionState, error) {
	if len(ops) == 0 {
		return PositionState{}, ErrNoOperations
	}

	s := PositionState{
		ISIN:      ops[0].ISIN,
		Currency:  ops[0].Currency,
		DateFirst: ops[0].Date,
		DateLast:  ops[0].Date,
	}

	for _, op := range ops {
		if op.ISIN != s.ISIN {
			return PositionState{}, MixedInstrumentError{Want: s.ISIN, Got: op.ISIN}
		}
		if op.Currency != s.Currency {
			return PositionState{}, MixedCurrencyError{ISIN: s.ISIN, Want: s.Currency, Got: op.Currency}
		}

		s.Fees += op.Fees
		s.Taxes += op.Taxes
		if op.Date.Before(s.DateFirst) {
			s.DateFirst = op.Date
		}
		if op.Date.After(s.DateLast) {
			s.DateLast = op.Date
		}

		switch op.Type {
		case Trade:
			switch {
			case op.Quantity > 0:
				s.acquire(op)
			case op.Quantity < 0:
				s.dispose(op)
			}
		case Dividend:
			s.Dividend += op.Amount()
		case Tax:
			// Already accumulated into Taxes above. No position effect.
		}
	}
	return s, nil
}

// acquire applies a positive-quantity trade.
func (s *PositionState) acquire(op Operation) {
	amount := op.Amount()
	total := s.Quantity + op.Quantity
	// The zero guard matters when a short position is being covered back
	// to flat: the quantity delta still applies, the averages are left
	// untouched rather than divided by zero.
	if total != 0 {
		s.Price = (s.Price*s.Quantity + amount) / total
		s.AveragePriceBought = (s.AveragePriceBought*s.Bought + amount) / total
	}
	s.Quantity = total
	s.Bought += op.Quantity
	s.Trades++
}

// dispose applies a negative-quantity trade, realizing gain against the
// current cost basis. Price is deliberately left untouched: the remaining
// units keep their basis, and if the position closes completely the next
// acquire re-seeds it.
func (s *PositionState) dispose(op Operation) {
	disposed := -op.Quantity // magnitude of the disposal
	s.Gain += (op.Price - s.Price) * disposed
	s.Quantity += op.Quantity

	amount := disposed * op.Price
	total := disposed + s.Sold
	if total != 0 {
		s.AveragePriceSold = (s.AveragePriceSold*s.Sold + amount) / total
	}
	s.Sold += disposed
	s.Trades++
}
