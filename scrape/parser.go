// Package scrape turns the holdings model into daily per-source totals: a
// pluggable parser resolves and reads market pages, and the orchestrator
// walks the holdings, accumulates totals and manages the error taxonomy.
package scrape

import (
	"fmt"

	"github.com/shopspring/decimal"

	tracker "github.com/ashiven/cs2tracker"
	"github.com/ashiven/cs2tracker/fetch"
)

// Parser is one interchangeable pricing strategy. Exactly one parser is
// active per run; adding a variant never touches the orchestrator.
type Parser interface {
	// Name is the configuration tag of the variant.
	Name() string
	// Sources lists the market sources this parser can price.
	Sources() []tracker.MarketSource
	// NeedsThrottle reports whether an inter-request delay is required to
	// stay under anonymous rate limits.
	NeedsThrottle() bool
	// ItemPageURL maps an item (and source) to the endpoint to fetch.
	ItemPageURL(item tracker.Item, source tracker.MarketSource) string
	// ItemPrice extracts the item's USD price from a fetched page. A missing
	// item or field yields a *ParseError.
	ItemPrice(page *fetch.Page, item tracker.Item, source tracker.MarketSource) (decimal.Decimal, error)
}

// ParserFor returns the parser variant registered under the given
// configuration tag.
func ParserFor(name string) (Parser, error) {
	switch name {
	case "csgotrader", "":
		return CSGOTraderParser{}, nil
	case "steam":
		return SteamParser{}, nil
	case "clash":
		return ClashParser{}, nil
	}
	return nil, fmt.Errorf("unknown parser %q (want csgotrader, steam or clash)", name)
}

// toDecimal converts the loosely typed numbers found in price JSON, which
// arrive as float64 or, from sloppier endpoints, as strings.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case string:
		d, err := decimal.NewFromString(n)
		return d, err == nil
	case int:
		return decimal.NewFromInt(int64(n)), true
	}
	return decimal.Zero, false
}
