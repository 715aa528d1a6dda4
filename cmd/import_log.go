package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type importLogCmd struct{}

func (*importLogCmd) Name() string     { return "import-log" }
func (*importLogCmd) Synopsis() string { return "replace the price log with a validated CSV file" }
func (*importLogCmd) Usage() string {
	return `cst import-log <file>

  Validates the given CSV file (strict YYYY-MM-DD dates, numeric amounts)
  and replaces the price log with it. An invalid file leaves the current
  log untouched.
`
}

func (*importLogCmd) SetFlags(*flag.FlagSet) {}

func (*importLogCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected: import-log <file>")
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
	if err := l.ImportFrom(f.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Imported %s into %s\n", f.Arg(0), l.Path)
	return subcommands.ExitSuccess
}
