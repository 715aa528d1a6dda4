package scrape

import (
	"github.com/shopspring/decimal"

	tracker "github.com/ashiven/cs2tracker"
	"github.com/ashiven/cs2tracker/fetch"
)

const clashItemAPI = "https://inventory.clash.gg/api/GetItemPrice?id="

// ClashParser prices one item per request against the clash.gg item API.
type ClashParser struct{}

func (ClashParser) Name() string                    { return "clash" }
func (ClashParser) Sources() []tracker.MarketSource { return []tracker.MarketSource{tracker.Steam} }
func (ClashParser) NeedsThrottle() bool             { return true }

func (ClashParser) ItemPageURL(item tracker.Item, _ tracker.MarketSource) string {
	return clashItemAPI + item.EncodedName()
}

func (ClashParser) ItemPrice(page *fetch.Page, item tracker.Item, _ tracker.MarketSource) (decimal.Decimal, error) {
	var payload struct {
		Success      any `json:"success"`
		AveragePrice any `json:"average_price"`
	}
	if err := page.JSON(&payload); err != nil {
		return decimal.Zero, &ParseError{Parser: "clash", Item: item.Name(), Reason: "unreadable response"}
	}
	if ok, isBool := payload.Success.(bool); (isBool && !ok) || payload.Success == "false" {
		return decimal.Zero, &ParseError{Parser: "clash", Item: item.Name(), Reason: "response reported failure"}
	}
	price, ok := toDecimal(payload.AveragePrice)
	if !ok || price.IsZero() {
		return decimal.Zero, &ParseError{Parser: "clash", Item: item.Name(), Reason: "failed to find item price"}
	}
	return price, nil
}
