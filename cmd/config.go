package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the application configuration, loaded from a TOML file.
// Secrets (the EODHD API key) are read from the environment so the file
// can be committed next to the ledgers.
type Config struct {
	// Ledgers lists the JSONL event files, one per brokerage account.
	// Snapshots over several ledgers are merged per instrument.
	Ledgers []string `toml:"ledgers"`
	// Instruments is the JSONL instrument table.
	Instruments string `toml:"instruments"`
	// QuotesDir holds one <ISIN>.jsonl quote history per instrument.
	QuotesDir string `toml:"quotes_dir"`

	Quotefeed QuotefeedConfig `toml:"quotefeed"`
	Resolver  ResolverConfig  `toml:"resolver"`
}

// QuotefeedConfig configures the quote refresh fan-out.
type QuotefeedConfig struct {
	// Providers in priority order; the first one wins field conflicts.
	Providers []string `toml:"providers"`
	// Concurrency bounds parallel provider calls. 0 means one worker
	// per provider.
	Concurrency int `toml:"concurrency"`
	// HistoryDays is how far back a refresh reaches when an instrument
	// has no stored quotes yet.
	HistoryDays int `toml:"history_days"`
}

// ResolverConfig configures the instrument resolution cache.
type ResolverConfig struct {
	CacheTTL duration `toml:"cache_ttl"`
}

// duration lets TOML carry values like "24h".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// LoadConfig reads the TOML file and applies defaults for everything the
// file leaves out. A missing file yields the pure defaults.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		Ledgers:     []string{"ledger.jsonl"},
		Instruments: "instruments.jsonl",
		QuotesDir:   ".quotes",
		Quotefeed: QuotefeedConfig{
			Providers:   []string{"eodhd", "tradegate"},
			Concurrency: 2,
			HistoryDays: 365,
		},
		Resolver: ResolverConfig{CacheTTL: duration{24 * time.Hour}},
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("cannot read config %q: %w", path, err)
	}
	return cfg, nil
}
