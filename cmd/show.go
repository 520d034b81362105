package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/jd/greenpoint/renderer"
)

// showCmd displays the open positions mark-to-market.
type showCmd struct {
	date string
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "display open positions with market prices and gains" }
func (*showCmd) Usage() string {
	return `gp show [-d <date>]

  Displays the open positions across all configured ledgers, valued with
  the latest stored quotes: quantity, cost basis, market price, unrealized
  gain and gain since the previous trading day.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Value the portfolio as of this date (default: all operations)")
}

func (c *showCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	asOf, err := parseAsOf(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	snap, err := snapshotAll(cfg, asOf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building snapshot: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.SnapshotMarkdown(snap))
	return subcommands.ExitSuccess
}
