package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"

	tracker "github.com/ashiven/cs2tracker"
	"github.com/ashiven/cs2tracker/scrape"
)

// SummaryMarkdown renders the per-source totals of one scrape run, with an
// overall row summing the sources.
func SummaryMarkdown(sources []tracker.MarketSource, totals map[tracker.MarketSource]scrape.Totals, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Run Totals")

	symbol := tracker.Symbol(currency)
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Source", "Total (USD)", fmt.Sprintf("Total (%s)", currency)},
		Rows:      [][]string{},
	}

	overallUSD, overall := decimal.Zero, decimal.Zero
	for _, source := range sources {
		t := totals[source]
		table.Rows = append(table.Rows, []string{
			source.Title(),
			t.USD.StringFixed(2) + "$",
			t.Converted.StringFixed(2) + symbol,
		})
		overallUSD = overallUSD.Add(t.USD)
		overall = overall.Add(t.Converted)
	}
	if len(sources) > 1 {
		table.Rows = append(table.Rows, []string{
			"Overall",
			overallUSD.StringFixed(2) + "$",
			overall.StringFixed(2) + symbol,
		})
	}
	doc.Table(table)

	return doc.String()
}
