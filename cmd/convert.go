package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	tracker "github.com/ashiven/cs2tracker"
)

type convertCmd struct {
	list bool
}

func (*convertCmd) Name() string     { return "convert" }
func (*convertCmd) Synopsis() string { return "convert an amount between currencies" }
func (*convertCmd) Usage() string {
	return `cst convert <amount> <from> <to>
cst convert -list

  Converts an amount using the built-in rate table, e.g.:

$ cst convert 11.70 USD EUR
`
}

func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "list the supported currency codes")
}

func (c *convertCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.list {
		fmt.Println(strings.Join(tracker.Currencies(), " "))
		return subcommands.ExitSuccess
	}

	if f.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "expected: convert <amount> <from> <to>")
		return subcommands.ExitUsageError
	}
	amount, err := decimal.NewFromString(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid amount %q\n", f.Arg(0))
		return subcommands.ExitUsageError
	}
	from := strings.ToUpper(f.Arg(1))
	to := strings.ToUpper(f.Arg(2))
	for _, code := range []string{from, to} {
		if !tracker.KnownCurrency(code) {
			fmt.Fprintf(os.Stderr, "unknown currency %q, see 'cst convert -list'\n", code)
			return subcommands.ExitUsageError
		}
	}

	converted := tracker.Convert(amount, from, to)
	fmt.Printf("%s %s = %s%s\n", amount.StringFixed(2), from, converted.StringFixed(2), tracker.Symbol(to))
	return subcommands.ExitSuccess
}
