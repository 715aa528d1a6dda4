package scrape

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	tracker "github.com/ashiven/cs2tracker"
	"github.com/ashiven/cs2tracker/fetch"
	"github.com/ashiven/cs2tracker/pricelog"
)

// stubParser prices items off a test server: one endpoint per item, the
// response body is the decimal price.
type stubParser struct {
	base     string
	throttle bool
}

func (stubParser) Name() string { return "stub" }

func (stubParser) Sources() []tracker.MarketSource {
	return []tracker.MarketSource{tracker.Steam}
}

func (p stubParser) NeedsThrottle() bool { return p.throttle }

func (p stubParser) ItemPageURL(item tracker.Item, _ tracker.MarketSource) string {
	return p.base + "/" + item.EncodedName()
}

func (stubParser) ItemPrice(page *fetch.Page, item tracker.Item, _ tracker.MarketSource) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(string(page.Body)))
	if err != nil {
		return decimal.Zero, &ParseError{Parser: "stub", Item: item.Name(), Reason: "failed to find item price"}
	}
	return d, nil
}

// priceServer serves canned bodies per item name and counts hits.
type priceServer struct {
	*httptest.Server
	hits   map[string]int
	bodies map[string]string
	status map[string]int
}

func newPriceServer(t *testing.T) *priceServer {
	t.Helper()
	s := &priceServer{
		hits:   make(map[string]int),
		bodies: make(map[string]string),
		status: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		s.hits[name]++
		if code, ok := s.status[name]; ok {
			w.WriteHeader(code)
			return
		}
		w.Write([]byte(s.bodies[name]))
	}))
	t.Cleanup(s.Close)
	return s
}

func writeConfig(t *testing.T, holdings string) *tracker.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	contents := `[User Settings]
conversion_currency~EUR

[App Settings]
use_proxy~false
discord_notifications~false
parser~csgotrader

` + holdings
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := tracker.LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func newTestScraper(t *testing.T, cfg *tracker.Config, srv *priceServer) *Scraper {
	t.Helper()
	client := fetch.NewClient()
	client.Attempts = 2
	return &Scraper{
		Config:   cfg,
		Client:   client,
		Parser:   stubParser{base: srv.URL},
		Log:      pricelog.New(filepath.Join(t.TempDir(), "log.csv"), []tracker.MarketSource{tracker.Steam}, cfg.Settings.Currency),
		throttle: func(time.Duration) {},
	}
}

func TestRunSkipsUnownedItems(t *testing.T) {
	srv := newPriceServer(t)
	srv.bodies["ItemA"] = "10.0"
	srv.bodies["ItemB"] = "99.0"

	cfg := writeConfig(t, `[Cases]
https://steamcommunity.com/market/listings/730/ItemA~2
https://steamcommunity.com/market/listings/730/ItemB~0
`)
	var events []Event
	s := newTestScraper(t, cfg, srv)
	s.Progress = func(e Event) { events = append(events, e) }

	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if srv.hits["ItemB"] != 0 {
		t.Errorf("unowned item was fetched %d times", srv.hits["ItemB"])
	}

	totals := s.Totals()[tracker.Steam]
	if !totals.USD.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("USD total = %s, want 20.00", totals.USD)
	}
	want := tracker.Convert(decimal.RequireFromString("20.00"), "USD", "EUR")
	if !totals.Converted.Equal(want) {
		t.Errorf("converted total = %s, want %s", totals.Converted, want)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want item + summary", len(events))
	}
	if events[0].Summary || events[0].Item != "ItemA" || events[0].Owned != 2 {
		t.Errorf("unexpected item event %+v", events[0])
	}
	if !events[1].Summary || events[1].Currency != "EUR" {
		t.Errorf("unexpected summary event %+v", events[1])
	}

	h, err := s.Log.Read(false)
	if err != nil {
		t.Fatal(err)
	}
	if h.Len() != 1 || !h.Totals[tracker.Steam].USD[0].Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("log row not written: %+v", h)
	}
}

func TestRunContinuesAfterParseFailure(t *testing.T) {
	srv := newPriceServer(t)
	srv.bodies["ItemC"] = "not a price"
	srv.bodies["ItemD"] = "5"

	cfg := writeConfig(t, `[Cases]
https://steamcommunity.com/market/listings/730/ItemC~1
https://steamcommunity.com/market/listings/730/ItemD~1
`)
	s := newTestScraper(t, cfg, srv)
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}

	if s.Halted() {
		t.Error("a parse failure must not halt the run")
	}
	if srv.hits["ItemD"] != 1 {
		t.Errorf("item after the failure fetched %d times, want 1", srv.hits["ItemD"])
	}
	if got := s.Totals()[tracker.Steam].USD; !got.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("USD total = %s, want 5.00", got)
	}
	last := s.Errors().Last()
	if last == nil || last.Kind != KindParsing {
		t.Errorf("Last() = %+v, want a parsing error", last)
	}
}

func TestRunHaltsOnRetryExhaustion(t *testing.T) {
	srv := newPriceServer(t)
	srv.status["ItemE"] = http.StatusServiceUnavailable
	srv.bodies["ItemF"] = "5"

	cfg := writeConfig(t, `[Cases]
https://steamcommunity.com/market/listings/730/ItemE~1
https://steamcommunity.com/market/listings/730/ItemF~1
`)
	s := newTestScraper(t, cfg, srv)
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}

	if !s.Halted() {
		t.Error("retry exhaustion must halt the run")
	}
	if srv.hits["ItemE"] != 2 {
		t.Errorf("rate-limited item fetched %d times, want the full budget of 2", srv.hits["ItemE"])
	}
	if srv.hits["ItemF"] != 0 {
		t.Errorf("items after the halt still fetched %d times", srv.hits["ItemF"])
	}
	last := s.Errors().Last()
	if last == nil || last.Kind != KindRequestLimit {
		t.Errorf("Last() = %+v, want a request-limit error", last)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	srv := newPriceServer(t)
	cfg := writeConfig(t, `[Cases]
https://steamcommunity.com/market/listings/730/ItemG~-3
`)
	s := newTestScraper(t, cfg, srv)

	err := s.Run()
	if err == nil {
		t.Fatal("Run() accepted an invalid configuration")
	}
	var runErr *RunError
	if !errors.As(err, &runErr) || runErr.Kind != KindConfig {
		t.Errorf("Run() = %v, want a config error", err)
	}
	if len(srv.hits) != 0 {
		t.Errorf("invalid config still caused %d requests", len(srv.hits))
	}
}

func TestThrottleBetweenItems(t *testing.T) {
	srv := newPriceServer(t)
	srv.bodies["ItemH"] = "1"
	srv.bodies["ItemI"] = "1"

	cfg := writeConfig(t, `[Cases]
https://steamcommunity.com/market/listings/730/ItemH~1
https://steamcommunity.com/market/listings/730/ItemI~1
`)
	s := newTestScraper(t, cfg, srv)
	s.Parser = stubParser{base: srv.URL, throttle: true}

	var slept []time.Duration
	s.throttle = func(d time.Duration) { slept = append(slept, d) }
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if len(slept) != 2 || slept[0] != time.Second {
		t.Errorf("throttled %v, want one second after each item", slept)
	}

	// With the proxy active there is no need to throttle.
	cfg.Settings.UseProxy = true
	slept = nil
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if len(slept) != 0 {
		t.Errorf("throttled %v despite the proxy", slept)
	}
}

func TestNewRejectsUnknownParser(t *testing.T) {
	cfg := writeConfig(t, "")
	cfg.Settings.Parser = "bogus"
	if _, err := New(cfg, filepath.Join(t.TempDir(), "log.csv")); err == nil {
		t.Error("New() accepted an unknown parser")
	}
}
