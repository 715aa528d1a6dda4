package scrape

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	tracker "github.com/ashiven/cs2tracker"
	"github.com/ashiven/cs2tracker/fetch"
)

const steamSearchURL = "https://steamcommunity.com/market/search?q="

// SteamParser prices items straight off Steam Community Market search pages.
// Capsule sections resolve to one shared search page listing the whole
// event, so the fetch cache turns a section into a single request. Steam
// rate limits anonymous clients aggressively, hence the throttle.
type SteamParser struct{}

func (SteamParser) Name() string                    { return "steam" }
func (SteamParser) Sources() []tracker.MarketSource { return []tracker.MarketSource{tracker.Steam} }
func (SteamParser) NeedsThrottle() bool             { return true }

func (SteamParser) ItemPageURL(item tracker.Item, _ tracker.MarketSource) string {
	if item.SharedPage != "" {
		return item.SharedPage
	}
	return steamSearchURL + item.EncodedName()
}

// ItemPrice locates the anchor whose href is the item's canonical listing
// URL, then the price span nested inside it. The span text looks like
// "Starting at: $1.23 USD"; the third token carries the amount.
func (SteamParser) ItemPrice(page *fetch.Page, item tracker.Item, _ tracker.MarketSource) (decimal.Decimal, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return decimal.Zero, &ParseError{Parser: "steam", Item: item.Name(), Reason: "unreadable page"}
	}

	var listing *goquery.Selection
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if href, _ := sel.Attr("href"); href == item.Href {
			listing = sel
			return false
		}
		return true
	})
	if listing == nil {
		return decimal.Zero, &ParseError{Parser: "steam", Item: item.Name(), Reason: "failed to find item listing"}
	}

	span := listing.Find("span.normal_price").First()
	if span.Length() == 0 {
		return decimal.Zero, &ParseError{Parser: "steam", Item: item.Name(), Reason: "failed to find price span in item listing"}
	}

	fields := strings.Fields(span.Text())
	if len(fields) < 3 {
		return decimal.Zero, &ParseError{Parser: "steam", Item: item.Name(), Reason: "unrecognized price text"}
	}
	price, err := decimal.NewFromString(strings.ReplaceAll(fields[2], "$", ""))
	if err != nil {
		return decimal.Zero, &ParseError{Parser: "steam", Item: item.Name(), Reason: "unrecognized price text"}
	}
	return price, nil
}
