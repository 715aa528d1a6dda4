package scrape

import (
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	tracker "github.com/ashiven/cs2tracker"
	"github.com/ashiven/cs2tracker/fetch"
)

const csgotraderPriceList = "https://prices.csgotrader.app/latest/%s.json"

// steamWindows is the descending time-window fallback for the primary
// source: the most recent non-empty aggregate wins.
var steamWindows = []string{"last_24h", "last_7d", "last_30d", "last_90d"}

// sourcePaths maps each secondary source to the jsonpath of its price field
// inside one price-table entry, with source-specific fallbacks tried in
// order (a listing's starting price first, then the most recent sale).
var sourcePaths = map[tracker.MarketSource][]string{
	tracker.Buff163:  {"$.starting_at.price", "$.highest_order.price"},
	tracker.Skinport: {"$.starting_at", "$.suggested_price"},
	tracker.CSFloat:  {"$.price"},
}

// CSGOTraderParser reads the aggregated price tables published by
// csgotrader.app: one JSON document per market source mapping display names
// to price records. One fetch prices the whole inventory for a source, so
// no throttling is needed.
type CSGOTraderParser struct{}

func (CSGOTraderParser) Name() string { return "csgotrader" }

func (CSGOTraderParser) Sources() []tracker.MarketSource {
	return []tracker.MarketSource{tracker.Steam, tracker.Buff163, tracker.CSFloat}
}

func (CSGOTraderParser) NeedsThrottle() bool { return false }

func (CSGOTraderParser) ItemPageURL(_ tracker.Item, source tracker.MarketSource) string {
	return fmt.Sprintf(csgotraderPriceList, source)
}

func (CSGOTraderParser) ItemPrice(page *fetch.Page, item tracker.Item, source tracker.MarketSource) (decimal.Decimal, error) {
	var table map[string]any
	if err := page.JSON(&table); err != nil {
		return decimal.Zero, &ParseError{Parser: "csgotrader", Item: item.Name(), Reason: "unreadable price table"}
	}

	name := item.Name()
	if source == tracker.Buff163 || source == tracker.Skinport {
		// These tables key "Holo-Foil" sticker variants with a slash.
		name = strings.ReplaceAll(name, "Holo-Foil", "Holo/Foil")
	}

	entry, ok := table[name]
	if !ok || entry == nil {
		return decimal.Zero, &ParseError{Parser: "csgotrader", Item: name, Reason: "no price info for item"}
	}

	switch source {
	case tracker.Steam:
		for _, window := range steamWindows {
			if price, ok := lookup(entry, "$."+window); ok {
				return price, nil
			}
		}
		return decimal.Zero, &ParseError{Parser: "csgotrader", Item: name, Reason: "no steam price in the past 3 months"}
	case tracker.Youpin898:
		// Youpin entries are bare numbers.
		if price, ok := toDecimal(entry); ok {
			return price, nil
		}
		return decimal.Zero, &ParseError{Parser: "csgotrader", Item: name, Reason: "no recent youpin price"}
	default:
		paths, ok := sourcePaths[source]
		if !ok {
			return decimal.Zero, &ParseError{Parser: "csgotrader", Item: name, Reason: fmt.Sprintf("unsupported source %q", source)}
		}
		for _, path := range paths {
			if price, ok := lookup(entry, path); ok {
				return price, nil
			}
		}
		return decimal.Zero, &ParseError{Parser: "csgotrader", Item: name, Reason: fmt.Sprintf("no recent %s listing", source)}
	}
}

// lookup extracts a positive price at a jsonpath inside one table entry.
// Missing paths, nulls and zero values all count as "no price".
func lookup(entry any, path string) (decimal.Decimal, bool) {
	val, err := jsonpath.Get(path, entry)
	if err != nil || val == nil {
		return decimal.Zero, false
	}
	price, ok := toDecimal(val)
	if !ok || price.IsZero() {
		return decimal.Zero, false
	}
	return price, true
}
