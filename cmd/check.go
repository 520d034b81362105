package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/jd/greenpoint"
)

// checkCmd reconciles the ledgers against the instrument table.
type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "reconcile ledger ISINs against the instrument table" }
func (*checkCmd) Usage() string {
	return `gp check

  Resolves every ISIN appearing in the ledgers and reports the ones the
  instrument table does not know. Unknown instruments still fold into
  snapshots, but show raw ISINs and cannot be refreshed.
`
}

func (*checkCmd) SetFlags(*flag.FlagSet) {}

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	resolver, err := newResolver(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	opsPerLedger, _, err := loadLedgers(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	unknown := 0
	for i, ops := range opsPerLedger {
		for isin := range groupByISIN(ops) {
			inst, err := resolver.Resolve(ctx, isin)
			var u greenpoint.UnknownInstrumentError
			if errors.As(err, &u) {
				fmt.Printf("%s: unknown instrument %s\n", cfg.Ledgers[i], u.ISIN)
				unknown++
				continue
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return subcommands.ExitFailure
			}
			Log.Debug().Str("isin", isin).Str("name", inst.Name()).Msg("resolved")
		}
	}

	if unknown > 0 {
		fmt.Fprintf(os.Stderr, "%d unknown instruments\n", unknown)
		return subcommands.ExitFailure
	}
	fmt.Println("all instruments resolved")
	return subcommands.ExitSuccess
}
