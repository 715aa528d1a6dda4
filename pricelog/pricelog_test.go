package pricelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	tracker "github.com/ashiven/cs2tracker"
	"github.com/ashiven/cs2tracker/date"
)

func newTestLog(t *testing.T, currency string) *Log {
	t.Helper()
	path := filepath.Join(t.TempDir(), "price_logs.csv")
	return New(path, []tracker.MarketSource{tracker.Steam, tracker.Buff163}, currency)
}

func TestSaveUpsertsSameDay(t *testing.T) {
	l := newTestLog(t, "USD")

	first := map[tracker.MarketSource]decimal.Decimal{
		tracker.Steam:   decimal.RequireFromString("3.00"),
		tracker.Buff163: decimal.RequireFromString("1.00"),
	}
	second := map[tracker.MarketSource]decimal.Decimal{
		tracker.Steam:   decimal.RequireFromString("7.5"),
		tracker.Buff163: decimal.RequireFromString("2.25"),
	}
	if err := l.Save(first); err != nil {
		t.Fatal(err)
	}
	if err := l.Save(second); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(l.Path)
	if err != nil {
		t.Fatal(err)
	}
	got := strings.TrimSpace(string(data))
	want := date.Today().String() + ",7.50$,2.25$"
	if got != want {
		t.Errorf("log file = %q, want %q", got, want)
	}
}

func TestReadAfterSave(t *testing.T) {
	l := newTestLog(t, "EUR")
	totals := map[tracker.MarketSource]decimal.Decimal{
		tracker.Steam:   decimal.RequireFromString("11.70"),
		tracker.Buff163: decimal.RequireFromString("0.00"),
	}
	if err := l.Save(totals); err != nil {
		t.Fatal(err)
	}

	h, err := l.Read(false)
	if err != nil {
		t.Fatal(err)
	}
	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.Len())
	}
	if h.Dates[0] != date.Today() {
		t.Errorf("date = %s, want today", h.Dates[0])
	}
	steam := h.Totals[tracker.Steam]
	if !steam.USD[0].Equal(decimal.RequireFromString("11.70")) {
		t.Errorf("USD = %s, want 11.70", steam.USD[0])
	}
	want := tracker.Convert(decimal.RequireFromString("11.70"), "USD", "EUR")
	if !steam.Converted[0].Equal(want) {
		t.Errorf("Converted = %s, want %s", steam.Converted[0], want)
	}
	if got := h.Amount(tracker.Buff163, 0); got != "0.00€" {
		t.Errorf("Amount = %q, want %q", got, "0.00€")
	}
}

func TestReadOrderAndZeroFill(t *testing.T) {
	l := newTestLog(t, "USD")
	// The second row predates the buff163 column.
	contents := "2025-08-30,1.00$,2.00$\n2025-08-31,3.00$\n"
	if err := os.WriteFile(l.Path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	h, err := l.Read(true)
	if err != nil {
		t.Fatal(err)
	}
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	if h.Dates[0] != date.New(2025, 8, 31) {
		t.Errorf("first date = %s, want 2025-08-31 (newest first)", h.Dates[0])
	}
	buff := h.Totals[tracker.Buff163]
	if !buff.USD[0].IsZero() {
		t.Errorf("short row buff163 = %s, want 0", buff.USD[0])
	}
	if !buff.USD[1].Equal(decimal.RequireFromString("2.00")) {
		t.Errorf("buff163 = %s, want 2.00", buff.USD[1])
	}
}

func TestEmpty(t *testing.T) {
	l := newTestLog(t, "USD")
	if !l.Empty() {
		t.Error("missing file should read as empty")
	}
	if err := l.Save(nil); err != nil {
		t.Fatal(err)
	}
	if l.Empty() {
		t.Error("log with a saved row should not be empty")
	}
}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		ok       bool
	}{
		{"valid", "2025-08-30,1.00$,2.00$\n2025-08-31,3.00$\n", true},
		{"foreign symbol", "2025-08-30,1.00€\n", true},
		{"bare number", "2025-08-30,1.00\n", true},
		{"sloppy date", "2025-8-30,1.00$\n", false},
		{"not a date", "yesterday,1.00$\n", false},
		{"not a number", "2025-08-30,cheap$\n", false},
		{"symbol only", "2025-08-30,$\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "import.csv")
			if err := os.WriteFile(path, []byte(tt.contents), 0o644); err != nil {
				t.Fatal(err)
			}
			err := ValidateFile(path)
			if tt.ok && err != nil {
				t.Errorf("ValidateFile() = %v, want nil", err)
			}
			if !tt.ok && err == nil {
				t.Error("ValidateFile() = nil, want error")
			}
		})
	}
}

func TestImportFromRejectsInvalid(t *testing.T) {
	l := newTestLog(t, "USD")
	if err := os.WriteFile(l.Path, []byte("2025-08-30,1.00$\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	bad := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(bad, []byte("not,a,log\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := l.ImportFrom(bad); err == nil {
		t.Fatal("ImportFrom() accepted an invalid file")
	}

	data, err := os.ReadFile(l.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "2025-08-30,1.00$\n" {
		t.Errorf("rejected import modified the log: %q", data)
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	l := newTestLog(t, "USD")
	contents := "2025-08-30,1.00$,2.00$\n"
	src := filepath.Join(t.TempDir(), "src.csv")
	if err := os.WriteFile(src, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := l.ImportFrom(src); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(t.TempDir(), "out.csv")
	if err := l.ExportTo(dst); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != contents {
		t.Errorf("export = %q, want %q", data, contents)
	}
}
