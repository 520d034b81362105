package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/jd/greenpoint"
)

// fmtCmd rewrites ledger files into canonical form.
type fmtCmd struct{}

func (*fmtCmd) Name() string     { return "fmt" }
func (*fmtCmd) Synopsis() string { return "rewrite ledger files into canonical form" }
func (*fmtCmd) Usage() string {
	return `gp fmt

  Reads every configured ledger, validates it, sorts operations into the
  canonical replay order (date ascending, acquisitions before disposals on
  the same day) and writes the file back.
`
}

func (*fmtCmd) SetFlags(*flag.FlagSet) {}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	for _, path := range cfg.Ledgers {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot read ledger %q: %v\n", path, err)
			return subcommands.ExitFailure
		}
		ops, cash, err := greenpoint.DecodeLedger(bytes.NewReader(data))
		if err != nil {
			fmt.Fprintf(os.Stderr, "ledger %q: %v\n", path, err)
			return subcommands.ExitFailure
		}

		var buf bytes.Buffer
		if err := greenpoint.EncodeLedger(&buf, ops, cash); err != nil {
			fmt.Fprintf(os.Stderr, "ledger %q: %v\n", path, err)
			return subcommands.ExitFailure
		}
		if bytes.Equal(data, buf.Bytes()) {
			continue
		}
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "cannot write ledger %q: %v\n", path, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("formatted %s\n", path)
	}
	return subcommands.ExitSuccess
}
