package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/ashiven/cs2tracker/renderer"
)

type historyCmd struct {
	limit int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the recorded inventory value over time" }
func (*historyCmd) Usage() string {
	return `cst history [-n <rows>]

  Displays the price log as a table, newest day first, converted to the
  configured display currency.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 0, "number of rows to display, 0 for all")
}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if l.Empty() {
		fmt.Println("The price log is empty. Run 'cst scrape' to record a first day.")
		return subcommands.ExitSuccess
	}

	h, err := l.Read(true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if c.limit > 0 && h.Len() > c.limit {
		h.Dates = h.Dates[:c.limit]
		for source, series := range h.Totals {
			series.USD = series.USD[:c.limit]
			series.Converted = series.Converted[:c.limit]
			h.Totals[source] = series
		}
	}

	printMarkdown(renderer.HistoryMarkdown(h))
	return subcommands.ExitSuccess
}
