package quotefeed

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jd/greenpoint"
	"github.com/jd/greenpoint/date"
)

// Feed refreshes quote history for instruments from a fixed set of
// providers.
type Feed struct {
	providers []Provider
	limit     int
	log       zerolog.Logger
}

// New returns a Feed over the given providers. The slice order is the
// priority order used by the merge; put the most trusted provider first.
// limit bounds how many provider calls run at once; zero or negative
// means one worker per provider.
func New(providers []Provider, limit int, log zerolog.Logger) *Feed {
	if limit <= 0 {
		limit = len(providers)
	}
	return &Feed{providers: providers, limit: limit, log: log}
}

// Refresh fetches the [from, to] range from every provider concurrently
// and merges the results into a quote series.
//
// Provider calls are independent tasks with no shared mutable state; a
// provider failure or empty result degrades coverage but never aborts the
// refresh. The merge always walks providers in their declared priority
// order, not arrival order, so a refresh over the same provider responses
// is reproducible. The returned Report carries each provider's outcome so
// callers can surface partial coverage.
func (f *Feed) Refresh(ctx context.Context, inst greenpoint.Instrument, from, to date.Date) (*greenpoint.QuoteTimeSeries, Report) {
	report := make(Report, len(f.providers))

	var g errgroup.Group
	g.SetLimit(f.limit)
	for i, p := range f.providers {
		i, p := i, p
		g.Go(func() error {
			quotes, err := p.FetchDaily(ctx, inst, from, to)
			report[i] = Result{Provider: p.Name(), Quotes: quotes, Err: err}
			if err != nil {
				f.log.Warn().Err(err).
					Str("provider", p.Name()).
					Str("isin", inst.ISIN()).
					Msg("quote provider failed, coverage degraded")
			}
			return nil
		})
	}
	g.Wait() // workers never return errors, they capture them

	batches := make([][]greenpoint.Quote, 0, len(report))
	for _, res := range report {
		if res.Err != nil {
			continue
		}
		batches = append(batches, res.Quotes)
	}
	merged := greenpoint.MergeQuotes(batches...)

	f.log.Debug().
		Str("isin", inst.ISIN()).
		Int("fetched", report.Fetched()).
		Int("merged", len(merged)).
		Int("failed", len(report.Failed())).
		Msg("quote refresh done")

	return greenpoint.NewQuoteTimeSeries(merged...), report
}
