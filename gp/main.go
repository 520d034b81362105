package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/jd/greenpoint/cmd"
)

func main() {
	// Secrets like EODHD_API_KEY may live in a .env next to the ledgers.
	godotenv.Load()

	level := zerolog.WarnLevel
	if os.Getenv("GP_DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	cmd.Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
