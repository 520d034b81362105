package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/jd/greenpoint"
	"github.com/jd/greenpoint/date"
)

// updateCmd refreshes stored quote history from the providers.
type updateCmd struct {
	from string
	isin string
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "refresh quote history from the price providers" }
func (*updateCmd) Usage() string {
	return `gp update [-from <date>] [-isin <isin>]

  Fetches daily quotes from all configured providers in parallel, merges
  them per day (a provider never overwrites a field another provider
  already filled) and appends them to each instrument's stored history.
  By default all instruments present in the ledgers are refreshed since
  their last stored quote.
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Refresh quotes starting at this date")
	f.StringVar(&c.isin, "isin", "", "Refresh this instrument only")
}

func (c *updateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	feed, err := newFeed(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	instruments, err := loadInstruments(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	isins, err := c.targets(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	to := date.Today()
	failures := 0
	for _, isin := range isins {
		inst, ok := instruments[isin]
		if !ok {
			Log.Warn().Str("isin", isin).Msg("instrument not in table, skipping refresh")
			continue
		}

		series, err := loadQuotes(cfg, isin)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}

		from, err := c.since(cfg, series)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}

		fresh, report := feed.Refresh(ctx, inst, from, to)
		if len(report.Failed()) == len(report) {
			// Every provider failed: keep the stored history untouched.
			failures++
			continue
		}
		for _, q := range fresh.Range(nil, nil) {
			if prev, ok := series.Get(q.Date); ok {
				q = mergeStored(prev, q)
			}
			series.Append(q)
		}
		if err := saveQuotes(cfg, isin, series); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("%s: %d quotes (%d providers failed)\n", isin, series.Len(), len(report.Failed()))
	}

	if failures > 0 {
		fmt.Fprintf(os.Stderr, "%d instruments could not be refreshed at all\n", failures)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// targets lists the ISINs to refresh: the explicit one, or every
// instrument appearing in the ledgers.
func (c *updateCmd) targets(cfg Config) ([]string, error) {
	if c.isin != "" {
		return []string{c.isin}, nil
	}
	opsPerLedger, _, err := loadLedgers(cfg)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var isins []string
	for _, ops := range opsPerLedger {
		for _, op := range ops {
			if !seen[op.ISIN] {
				seen[op.ISIN] = true
				isins = append(isins, op.ISIN)
			}
		}
	}
	return isins, nil
}

// since decides where the refresh range starts: the -from flag, the day
// after the last stored quote, or the configured history depth for an
// instrument never refreshed before.
func (c *updateCmd) since(cfg Config, series *greenpoint.QuoteTimeSeries) (date.Date, error) {
	if c.from != "" {
		return date.Parse(c.from)
	}
	if last, ok := series.Latest(); ok {
		return last.Date.Add(1), nil
	}
	return date.Today().Add(-cfg.Quotefeed.HistoryDays), nil
}

// mergeStored fills a freshly fetched bar with fields only the stored
// history has. Fresh provider data wins, history only fills gaps.
func mergeStored(stored, fresh greenpoint.Quote) greenpoint.Quote {
	merged := greenpoint.MergeQuotes([]greenpoint.Quote{fresh}, []greenpoint.Quote{stored})
	return merged[0]
}
