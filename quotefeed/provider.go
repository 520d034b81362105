// Package quotefeed refreshes daily quote history from several
// independent price-data providers and merges the results into a single
// best-effort series.
//
// Providers differ in reliability and field coverage, so a refresh fans
// out to all of them, tolerates individual failures, and reconciles
// same-day bars field by field in a fixed priority order.
package quotefeed

import (
	"context"

	"github.com/jd/greenpoint"
	"github.com/jd/greenpoint/date"
)

// Provider fetches daily quotes for one instrument over an inclusive date
// range. Implementations must be safe for concurrent use; each call is an
// independent task in the refresh fan-out, and the caller bounds its
// lifetime through ctx.
type Provider interface {
	Name() string
	FetchDaily(ctx context.Context, inst greenpoint.Instrument, from, to date.Date) ([]greenpoint.Quote, error)
}

// Result captures the outcome of one provider call: either the fetched
// quotes or the error, never an exception crossing the task boundary.
type Result struct {
	Provider string
	Quotes   []greenpoint.Quote
	Err      error
}

// Report lists per-provider outcomes of one refresh, in provider priority
// order.
type Report []Result

// Failed returns the results of providers that errored.
func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Fetched returns the total number of quotes fetched across providers,
// before merging.
func (r Report) Fetched() int {
	var n int
	for _, res := range r {
		n += len(res.Quotes)
	}
	return n
}
