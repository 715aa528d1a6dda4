// Package pricelog persists one row of per-source USD totals per calendar
// day and reads them back converted to the display currency.
package pricelog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	tracker "github.com/ashiven/cs2tracker"
	"github.com/ashiven/cs2tracker/date"
)

// Log is the append-or-replace daily record of scrape totals. Amounts are
// stored in USD with a trailing "$"; the display currency only exists at
// read time, so changing it never rewrites the file.
type Log struct {
	Path     string
	Sources  []tracker.MarketSource
	Currency string
}

// New returns a log at path whose columns follow the given source order.
func New(path string, sources []tracker.MarketSource, currency string) *Log {
	return &Log{Path: path, Sources: sources, Currency: currency}
}

// Series is one market source's column, oldest row first unless the whole
// history was read newest first.
type Series struct {
	USD       []decimal.Decimal
	Converted []decimal.Decimal
}

// History is the parsed log: one date per row and one series per source,
// in the log's column order.
type History struct {
	Currency string
	Sources  []tracker.MarketSource
	Dates    []date.Date
	Totals   map[tracker.MarketSource]Series
}

// Len returns the number of rows.
func (h *History) Len() int { return len(h.Dates) }

// Amount formats the converted total of one source on row i, with the
// display currency's symbol appended.
func (h *History) Amount(source tracker.MarketSource, i int) string {
	return h.Totals[source].Converted[i].StringFixed(2) + tracker.Symbol(h.Currency)
}

// Save upserts today's row: a second run on the same day replaces the
// earlier totals instead of appending. Columns follow l.Sources; a source
// missing from totals is written as zero.
func (l *Log) Save(totals map[tracker.MarketSource]decimal.Decimal) error {
	rows, err := l.rows()
	if err != nil {
		return err
	}

	today := date.Today().String()
	row := make([]string, 0, 1+len(l.Sources))
	row = append(row, today)
	for _, source := range l.Sources {
		row = append(row, totals[source].StringFixed(2)+"$")
	}

	replaced := false
	for i := range rows {
		if len(rows[i]) > 0 && rows[i][0] == today {
			rows[i] = row
			replaced = true
			break
		}
	}
	if !replaced {
		rows = append(rows, row)
	}
	return l.write(rows)
}

// Read parses the whole log. Rows shorter than the source list are padded
// with zeros, so a file written before a source was added still loads.
func (l *Log) Read(newestFirst bool) (*History, error) {
	rows, err := l.rows()
	if err != nil {
		return nil, err
	}

	h := &History{
		Currency: l.Currency,
		Sources:  l.Sources,
		Totals:   make(map[tracker.MarketSource]Series, len(l.Sources)),
	}
	for i, row := range rows {
		if len(row) == 0 {
			return nil, fmt.Errorf("%s: row %d is empty", l.Path, i+1)
		}
		on, err := date.Parse(row[0])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", l.Path, i+1, err)
		}
		h.Dates = append(h.Dates, on)
	}

	for col, source := range l.Sources {
		series := Series{
			USD:       make([]decimal.Decimal, 0, len(rows)),
			Converted: make([]decimal.Decimal, 0, len(rows)),
		}
		for i, row := range rows {
			usd := decimal.Zero
			if col+1 < len(row) {
				usd, err = parseAmount(row[col+1])
				if err != nil {
					return nil, fmt.Errorf("%s: row %d: %w", l.Path, i+1, err)
				}
			}
			series.USD = append(series.USD, usd)
			series.Converted = append(series.Converted, tracker.Convert(usd, "USD", l.Currency))
		}
		h.Totals[source] = series
	}

	if newestFirst {
		reverse(h.Dates)
		for source, series := range h.Totals {
			reverse(series.USD)
			reverse(series.Converted)
			h.Totals[source] = series
		}
	}
	return h, nil
}

// Empty reports whether the log holds no rows yet.
func (l *Log) Empty() bool {
	rows, err := l.rows()
	return err != nil || len(rows) == 0
}

// ImportFrom validates src as a price log and replaces this log with its
// contents. A file that fails validation leaves the log untouched.
func (l *Log) ImportFrom(src string) error {
	if err := ValidateFile(src); err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(l.Path, data, 0o644)
}

// ExportTo copies the log file to dst verbatim.
func (l *Log) ExportTo(dst string) error {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

// ValidateFile checks that every row of the file at path is a strict
// YYYY-MM-DD date followed by amounts, each a number with at most one
// trailing currency symbol.
func ValidateFile(path string) error {
	rows, err := readRows(path)
	if err != nil {
		return err
	}
	for i, row := range rows {
		if len(row) == 0 {
			return fmt.Errorf("%s: row %d is empty", path, i+1)
		}
		if _, err := date.Parse(row[0]); err != nil {
			return fmt.Errorf("%s: row %d: %w", path, i+1, err)
		}
		for _, cell := range row[1:] {
			if _, err := parseAmount(cell); err != nil {
				return fmt.Errorf("%s: row %d: %w", path, i+1, err)
			}
		}
	}
	return nil
}

func (l *Log) rows() ([][]string, error) { return readRows(l.Path) }

func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // column count grew over time
	return r.ReadAll()
}

func (l *Log) write(rows [][]string) error {
	if dir := filepath.Dir(l.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(l.Path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// parseAmount reads a stored amount, tolerating one trailing currency
// symbol rune like "7.50$".
func parseAmount(cell string) (decimal.Decimal, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	if r, size := utf8.DecodeLastRuneInString(s); !unicode.IsDigit(r) {
		s = s[:len(s)-size]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad amount %q", cell)
	}
	return d, nil
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
