package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/jd/greenpoint/renderer"
)

// txsCmd displays the full accounting state per instrument.
type txsCmd struct {
	date string
	all  bool
}

func (*txsCmd) Name() string     { return "txs" }
func (*txsCmd) Synopsis() string { return "display the full accounting state of every instrument" }
func (*txsCmd) Usage() string {
	return `gp txs [-d <date>] [-all]

  Displays per-instrument accounting rows: position, cost basis, realized
  gain, dividends, fees, taxes and the cumulative bought/sold averages.
  With -all, fully closed positions are shown too.
`
}

func (c *txsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Replay operations up to this date only")
	f.BoolVar(&c.all, "all", false, "Include instruments whose position is closed")
}

func (c *txsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	printMarkdown(renderer.PositionsMarkdown(snap, c.all))
	return subcommands.ExitSuccess
}
