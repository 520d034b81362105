// Package cmd implements the CLI application over the accounting engine.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/jd/greenpoint"
	"github.com/jd/greenpoint/date"
	"github.com/jd/greenpoint/quotefeed"
)

// parseAsOf parses an optional -d flag value. Empty means "no cutoff".
func parseAsOf(s string) (*date.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Register registers all subcommands on the commander.
func Register(c *subcommands.Commander) {
	c.Register(&showCmd{}, "portfolio")
	c.Register(&txsCmd{}, "portfolio")
	c.Register(&updateCmd{}, "quotes")
	c.Register(&fmtCmd{}, "ledger")
	c.Register(&checkCmd{}, "ledger")
}

// The CLI is short lived, so the config path and logger live in globals.

var configPath = flag.String("config", "greenpoint.toml", "Path to the configuration file")

// Log is the application logger, configured by main.
var Log = zerolog.Nop()

func loadConfig() (Config, error) { return LoadConfig(*configPath) }

// loadLedgers decodes every configured ledger file into its event streams.
// The returned slices are parallel to cfg.Ledgers.
func loadLedgers(cfg Config) (ops [][]greenpoint.Operation, cash [][]greenpoint.CashOperation, err error) {
	for _, path := range cfg.Ledgers {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open ledger %q: %w", path, err)
		}
		o, c, err := greenpoint.DecodeLedger(f)
		f.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("ledger %q: %w", path, err)
		}
		ops = append(ops, o)
		cash = append(cash, c)
	}
	return ops, cash, nil
}

// loadInstruments decodes the instrument table. A missing table is not an
// error: snapshots degrade to showing ISINs instead of names.
func loadInstruments(cfg Config) (map[string]greenpoint.Instrument, error) {
	f, err := os.Open(cfg.Instruments)
	if os.IsNotExist(err) {
		Log.Warn().Str("file", cfg.Instruments).Msg("no instrument table, rows will show raw ISINs")
		return map[string]greenpoint.Instrument{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	instruments, err := greenpoint.DecodeInstruments(f)
	if err != nil {
		return nil, fmt.Errorf("instruments %q: %w", cfg.Instruments, err)
	}
	byISIN := make(map[string]greenpoint.Instrument, len(instruments))
	for _, inst := range instruments {
		byISIN[inst.ISIN()] = inst
	}
	return byISIN, nil
}

func quotesFile(cfg Config, isin string) string {
	return filepath.Join(cfg.QuotesDir, isin+".jsonl")
}

// loadQuotes decodes one instrument's stored quote history. A missing
// file is an empty series.
func loadQuotes(cfg Config, isin string) (*greenpoint.QuoteTimeSeries, error) {
	f, err := os.Open(quotesFile(cfg, isin))
	if os.IsNotExist(err) {
		return greenpoint.NewQuoteTimeSeries(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	quotes, err := greenpoint.DecodeQuotes(f)
	if err != nil {
		return nil, fmt.Errorf("quotes for %s: %w", isin, err)
	}
	return greenpoint.NewQuoteTimeSeries(quotes...), nil
}

func saveQuotes(cfg Config, isin string, series *greenpoint.QuoteTimeSeries) error {
	if err := os.MkdirAll(cfg.QuotesDir, 0755); err != nil {
		return err
	}
	f, err := os.Create(quotesFile(cfg, isin))
	if err != nil {
		return err
	}
	defer f.Close()
	return greenpoint.EncodeQuotes(f, series)
}

// newResolver builds the instrument resolver: the configured table with
// the TTL cache in front. Repeated ISINs across ledgers resolve once per
// TTL; a slow upstream can replace the table without touching callers.
func newResolver(cfg Config) (greenpoint.Resolver, error) {
	instruments, err := loadInstruments(cfg)
	if err != nil {
		return nil, err
	}
	var table []greenpoint.Instrument
	for _, inst := range instruments {
		table = append(table, inst)
	}
	static := greenpoint.NewStaticResolver(table)
	return greenpoint.NewCachedResolver(static, cfg.Resolver.CacheTTL.Duration), nil
}

// newFeed builds the quote feed from the configured provider list.
func newFeed(cfg Config) (*quotefeed.Feed, error) {
	var providers []quotefeed.Provider
	for _, name := range cfg.Quotefeed.Providers {
		switch name {
		case "eodhd":
			key := os.Getenv("EODHD_API_KEY")
			if key == "" {
				Log.Warn().Msg("EODHD_API_KEY not set, using the demo key (limited tickers)")
				key = "demo"
			}
			providers = append(providers, quotefeed.NewEODHD(key))
		case "tradegate":
			providers = append(providers, quotefeed.NewTradegate())
		default:
			return nil, fmt.Errorf("unknown quote provider %q in config", name)
		}
	}
	return quotefeed.New(providers, cfg.Quotefeed.Concurrency, Log), nil
}

// snapshotAll snapshots every configured ledger and merges them into a
// single cross-account view.
func snapshotAll(cfg Config, asOf *date.Date) (*greenpoint.PortfolioSnapshot, error) {
	opsPerLedger, cashPerLedger, err := loadLedgers(cfg)
	if err != nil {
		return nil, err
	}
	instruments, err := loadInstruments(cfg)
	if err != nil {
		return nil, err
	}

	var snaps []*greenpoint.PortfolioSnapshot
	for i := range opsPerLedger {
		in := greenpoint.PortfolioInput{
			Instruments:    instruments,
			Operations:     groupByISIN(opsPerLedger[i]),
			CashOperations: cashPerLedger[i],
			Quotes:         map[string]*greenpoint.QuoteTimeSeries{},
		}
		for isin := range in.Operations {
			series, err := loadQuotes(cfg, isin)
			if err != nil {
				return nil, err
			}
			in.Quotes[isin] = series
		}
		snap, err := greenpoint.Snapshot(in, asOf)
		if err != nil {
			return nil, fmt.Errorf("ledger %q: %w", cfg.Ledgers[i], err)
		}
		snaps = append(snaps, snap)
	}
	return greenpoint.MergeSnapshots(snaps...)
}

func groupByISIN(ops []greenpoint.Operation) map[string][]greenpoint.Operation {
	grouped := make(map[string][]greenpoint.Operation)
	for _, op := range ops {
		grouped[op.ISIN] = append(grouped[op.ISIN], op)
	}
	return grouped
}
