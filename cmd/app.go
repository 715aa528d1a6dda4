// Package cmd implements the CLI application to track a CS2 inventory.
package cmd

import (
	"flag"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	tracker "github.com/ashiven/cs2tracker"
	"github.com/ashiven/cs2tracker/pricelog"
	"github.com/ashiven/cs2tracker/scrape"
)

// Commands lists every subcommand.
// A main package registers them and executes the user-selected one.
var Commands = []subcommands.Command{
	&scrapeCmd{},
	&historyCmd{},
	&convertCmd{},
	&importLogCmd{},
	&exportLogCmd{},
	&proxyCmd{},
	&discordCmd{},
}

// As a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables.

var configFile = flag.String("config-file", "config.ini", "Path to the holdings configuration file (INI format)")
var logFile = flag.String("log-file", "price_logs.csv", "Path to the price log file (CSV format)")

// loadConfig reads the configuration file backing every subcommand.
func loadConfig() (*tracker.Config, error) {
	return tracker.LoadConfig(*configFile)
}

// openLog opens the price log with the column order of the configured parser.
func openLog(cfg *tracker.Config) (*pricelog.Log, error) {
	parser, err := scrape.ParserFor(cfg.Settings.Parser)
	if err != nil {
		return nil, err
	}
	return pricelog.New(*logFile, parser.Sources(), cfg.Settings.Currency), nil
}

// printMarkdown renders a markdown document for the terminal, falling back
// to the raw text when no renderer can be built.
func printMarkdown(doc string) {
	out, err := glamour.Render(doc, "auto")
	if err != nil {
		fmt.Println(doc)
		return
	}
	fmt.Print(out)
}
