package tracker

import (
	"slices"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ReferenceCurrency is the bridge currency of the static rate table.
// Every stored rate is expressed in units per one EUR, so a conversion
// between two non-EUR currencies hops through EUR.
const ReferenceCurrency = "EUR"

// rates holds units of currency per 1 EUR. The table is static on purpose:
// a display currency that drifts by a few percent is preferable to a network
// dependency in the middle of a scrape run.
var rates = map[string]decimal.Decimal{
	"EUR": decimal.NewFromInt(1),
	"USD": decimal.RequireFromString("1.17"),
	"GBP": decimal.RequireFromString("0.87"),
	"CHF": decimal.RequireFromString("0.94"),
	"PLN": decimal.RequireFromString("4.26"),
	"SEK": decimal.RequireFromString("11.04"),
	"NOK": decimal.RequireFromString("11.74"),
	"DKK": decimal.RequireFromString("7.46"),
	"CZK": decimal.RequireFromString("24.4"),
	"HUF": decimal.RequireFromString("393.6"),
	"RON": decimal.RequireFromString("5.07"),
	"BGN": decimal.RequireFromString("1.96"),
	"TRY": decimal.RequireFromString("48.2"),
	"CAD": decimal.RequireFromString("1.61"),
	"AUD": decimal.RequireFromString("1.79"),
	"NZD": decimal.RequireFromString("1.99"),
	"JPY": decimal.RequireFromString("172.3"),
	"CNY": decimal.RequireFromString("8.33"),
	"KRW": decimal.RequireFromString("1627"),
	"HKD": decimal.RequireFromString("9.12"),
	"SGD": decimal.RequireFromString("1.50"),
	"INR": decimal.RequireFromString("103.1"),
	"BRL": decimal.RequireFromString("6.34"),
	"MXN": decimal.RequireFromString("21.8"),
	"ZAR": decimal.RequireFromString("20.6"),
	"ILS": decimal.RequireFromString("3.92"),
	"PHP": decimal.RequireFromString("66.8"),
	"THB": decimal.RequireFromString("37.6"),
	"IDR": decimal.RequireFromString("19150"),
	"MYR": decimal.RequireFromString("4.93"),
}

// Convert converts an amount between currency codes, bridging through the
// reference currency when neither side is EUR. The result is rounded to two
// decimal places. Any unknown currency yields zero: a broken display currency
// must never abort a run that already holds good USD totals.
func Convert(amount decimal.Decimal, from, to string) decimal.Decimal {
	if from == to {
		return amount.Round(2)
	}
	fromRate, ok := rates[from]
	if !ok {
		return decimal.Zero
	}
	toRate, ok := rates[to]
	if !ok {
		return decimal.Zero
	}
	return amount.Div(fromRate).Mul(toRate).Round(2)
}

// Symbol returns the display symbol for a currency code, falling back to the
// code itself when go-money knows no grapheme for it.
func Symbol(currency string) string {
	if c := money.GetCurrency(currency); c != nil && c.Grapheme != "" {
		return c.Grapheme
	}
	return currency
}

// Currencies returns the sorted list of currency codes the converter supports.
func Currencies() []string {
	codes := make([]string, 0, len(rates))
	for code := range rates {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// KnownCurrency reports whether code is present in the rate table.
func KnownCurrency(code string) bool {
	_, ok := rates[code]
	return ok
}
