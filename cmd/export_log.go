package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type exportLogCmd struct{}

func (*exportLogCmd) Name() string     { return "export-log" }
func (*exportLogCmd) Synopsis() string { return "copy the price log to a file" }
func (*exportLogCmd) Usage() string {
	return `cst export-log <file>

  Copies the price log to the given destination, e.g. for a backup before
  editing the holdings.
`
}

func (*exportLogCmd) SetFlags(*flag.FlagSet) {}

func (*exportLogCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected: export-log <file>")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	l, err := openLog(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := l.ExportTo(f.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Exported %s to %s\n", l.Path, f.Arg(0))
	return subcommands.ExitSuccess
}
