// Package renderer turns the tracker's data into markdown for terminal
// display.
package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/ashiven/cs2tracker/pricelog"
)

// HistoryMarkdown renders the price log as a markdown table, one row per
// recorded day and one column per market source.
func HistoryMarkdown(h *pricelog.History) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Price History (%s)", h.Currency))

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft},
		Header:    []string{"Date"},
		Rows:      [][]string{},
	}
	for _, source := range h.Sources {
		table.Alignment = append(table.Alignment, md.AlignRight)
		table.Header = append(table.Header, source.Title())
	}
	for i, on := range h.Dates {
		row := []string{on.String()}
		for _, source := range h.Sources {
			row = append(row, h.Amount(source, i))
		}
		table.Rows = append(table.Rows, row)
	}
	doc.Table(table)

	return doc.String()
}
