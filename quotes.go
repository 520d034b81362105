package greenpoint

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jd/greenpoint/date"
)

// Quote is one daily price bar for an instrument.
//
// All price fields and the volume are optional, because no single provider
// reliably covers the full OHLCV set. For storage and merge purposes two
// quotes are the same observation iff their dates are equal; every other
// field is payload.
type Quote struct {
	Date   date.Date
	Open   *float64
	Close  *float64
	High   *float64
	Low    *float64
	Volume *int64
}

// fill returns q with its nil fields taken from o. Populated fields are
// never overwritten.
func (q Quote) fill(o Quote) Quote {
	if q.Open == nil {
		q.Open = o.Open
	}
	if q.Close == nil {
		q.Close = o.Close
	}
	if q.High == nil {
		q.High = o.High
	}
	if q.Low == nil {
		q.Low = o.Low
	}
	if q.Volume == nil {
		q.Volume = o.Volume
	}
	return q
}

// ErrIndexOutOfRange is returned by QuoteTimeSeries.At for an ordinal index
// outside the series.
var ErrIndexOutOfRange = errors.New("quote index out of range")

// QuoteTimeSeries is an ordered, per-instrument store of daily quotes.
//
// It keeps days and quotes in two parallel slices sorted by date, so every
// boundary lookup is a binary search and range queries stay sub-linear as
// the series grows.
type QuoteTimeSeries struct {
	days   []date.Date
	quotes []Quote
}

// NewQuoteTimeSeries builds a series from a set of observations.
// Observations sharing a date overwrite each other, last write wins;
// callers that need field-level reconciliation merge with MergeQuotes
// before building the series.
func NewQuoteTimeSeries(quotes ...Quote) *QuoteTimeSeries {
	s := &QuoteTimeSeries{}
	for _, q := range quotes {
		s.Append(q)
	}
	return s
}

// Len returns the number of quotes in the series.
func (s *QuoteTimeSeries) Len() int { return len(s.days) }

// search locates q.Date in the sorted day index.
func (s *QuoteTimeSeries) search(on date.Date) (int, bool) {
	return slices.BinarySearchFunc(s.days, on, date.Date.Compare)
}

// Append inserts a quote at its date position, replacing any quote already
// stored for that day.
func (s *QuoteTimeSeries) Append(q Quote) *QuoteTimeSeries {
	i, found := s.search(q.Date)
	if found {
		s.quotes[i] = q
		return s
	}
	s.days = slices.Insert(s.days, i, q.Date)
	s.quotes = slices.Insert(s.quotes, i, q)
	return s
}

// Get returns the quote stored exactly on that day.
// "No quote yet" is an expected state, not an error.
func (s *QuoteTimeSeries) Get(on date.Date) (Quote, bool) {
	if i, found := s.search(on); found {
		return s.quotes[i], true
	}
	return Quote{}, false
}

// At returns the i-th quote by date ascending. Negative indices count from
// the end, so At(-1) is the most recent quote. It returns
// ErrIndexOutOfRange when the series is empty or the index falls outside
// it.
func (s *QuoteTimeSeries) At(i int) (Quote, error) {
	n := len(s.quotes)
	j := i
	if j < 0 {
		j += n
	}
	if j < 0 || j >= n {
		return Quote{}, fmt.Errorf("%w: index %d, len %d", ErrIndexOutOfRange, i, n)
	}
	return s.quotes[j], nil
}

// Latest returns the most recent quote in the series.
func (s *QuoteTimeSeries) Latest() (Quote, bool) {
	if len(s.quotes) == 0 {
		return Quote{}, false
	}
	return s.quotes[len(s.quotes)-1], true
}

// Range returns the quotes with from <= date <= to, in chronological
// order. A nil bound leaves that side unbounded. The returned slice is a
// copy and safe to retain.
func (s *QuoteTimeSeries) Range(from, to *date.Date) []Quote {
	lo := 0
	if from != nil {
		lo, _ = s.search(*from) // lower bound: first day >= from
	}
	hi := len(s.days)
	if to != nil {
		i, found := s.search(*to)
		if found {
			hi = i + 1 // inclusive upper bound
		} else {
			hi = i
		}
	}
	if lo >= hi {
		return nil
	}
	return slices.Clone(s.quotes[lo:hi])
}

// LatestOnOrBefore returns the quote on the given day, or the most recent
// one before it. It returns false when no quote exists at or before the
// day.
func (s *QuoteTimeSeries) LatestOnOrBefore(on date.Date) (Quote, bool) {
	i, found := s.search(on)
	if found {
		return s.quotes[i], true
	}
	if i == 0 {
		return Quote{}, false
	}
	return s.quotes[i-1], true
}

// MergeQuotes reconciles same-day observations from several providers.
//
// Batches must be passed in the declared provider priority order: for each
// calendar date, the first batch to populate a field wins, and later
// batches only fill fields still missing. The result is sorted by date and
// deterministic for a fixed batch order, whatever concurrency produced the
// batches.
func MergeQuotes(batches ...[]Quote) []Quote {
	merged := NewQuoteTimeSeries()
	for _, batch := range batches {
		for _, q := range batch {
			if prev, ok := merged.Get(q.Date); ok {
				merged.Append(prev.fill(q))
				continue
			}
			merged.Append(q)
		}
	}
	return slices.Clone(merged.quotes)
}
