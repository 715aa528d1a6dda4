package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	tracker "github.com/ashiven/cs2tracker"
	"github.com/ashiven/cs2tracker/notify"
	"github.com/ashiven/cs2tracker/renderer"
	"github.com/ashiven/cs2tracker/scrape"
)

type scrapeCmd struct {
	quiet bool
}

func (*scrapeCmd) Name() string     { return "scrape" }
func (*scrapeCmd) Synopsis() string { return "price every owned item and record today's totals" }
func (*scrapeCmd) Usage() string {
	return `cst scrape [-q]

  Prices every owned item of the configuration against the configured
  parser's market sources, prints the per-source totals and upserts
  today's row of the price log. With discord notifications enabled, the
  recent history is posted to the configured webhook afterwards.
`
}

func (c *scrapeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.quiet, "q", false, "only print the run summary")
}

func (c *scrapeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	s, err := scrape.New(cfg, *logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if !c.quiet {
		s.Progress = printProgress
	}
	if cfg.Settings.DiscordNotifications && cfg.Settings.DiscordWebhookURL != "" {
		n := notify.NewDiscord(cfg.Settings.DiscordWebhookURL, s.Log)
		s.Sink = func(map[tracker.MarketSource]scrape.Totals) error { return n.Notify() }
	}

	if err := s.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.SummaryMarkdown(s.Parser.Sources(), s.Totals(), cfg.Settings.Currency))

	if last := s.Errors().Last(); last != nil {
		fmt.Fprintf(os.Stderr, "last error: [%s] %s\n", last.Kind, last.Message)
	}
	return subcommands.ExitSuccess
}

// printProgress writes one line per priced item; the summary events are
// rendered as a table at the end of the run instead.
func printProgress(e scrape.Event) {
	if e.Summary {
		return
	}
	fmt.Printf("Owned: %-6d %-10s %-50s $%-10s total: $%s\n",
		e.Owned, e.Source.Title(), e.Item, e.Price.StringFixed(2), e.Extended.StringFixed(2))
}
