package scrape

import (
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"

	tracker "github.com/ashiven/cs2tracker"
	"github.com/ashiven/cs2tracker/fetch"
	"github.com/ashiven/cs2tracker/pricelog"
)

// Event is one progress notification: a priced item, or, when Summary is
// set, the final per-source totals of the run.
type Event struct {
	Summary  bool
	Item     string
	Source   tracker.MarketSource
	Owned    int
	Price    decimal.Decimal // unit price; USD total on summary rows
	Extended decimal.Decimal // owned × price; converted total on summary rows
	Currency string          // currency of Extended
}

// Totals accumulates one market source's value over a run.
type Totals struct {
	USD       decimal.Decimal
	Converted decimal.Decimal
}

// Scraper walks the holdings model once per Run, pricing every owned item
// through the active parser and accumulating per-source totals. It runs
// strictly sequentially; the only suspension points are the network calls
// and the optional throttle sleep.
type Scraper struct {
	Config *tracker.Config
	Client *fetch.Client
	Parser Parser
	Log    *pricelog.Log

	// Progress, when set, is invoked synchronously after each priced item
	// and once per market source at the end of the run. It must not block.
	Progress func(Event)
	// Sink, when set, receives the finalized run right after the log row is
	// written. Sink failures are logged, never fatal.
	Sink func(totals map[tracker.MarketSource]Totals) error

	throttle func(time.Duration)
	errs     ErrorStack
	totals   map[tracker.MarketSource]*Totals
	halted   bool
}

// New wires a scraper from the configuration: parser variant, direct or
// proxied client, and the price log at logPath.
func New(cfg *tracker.Config, logPath string) (*Scraper, error) {
	parser, err := ParserFor(cfg.Settings.Parser)
	if err != nil {
		return nil, err
	}

	var client *fetch.Client
	if cfg.Settings.UseProxy && cfg.Settings.ProxyAPIKey != "" {
		client, err = fetch.NewProxyClient(cfg.Settings.ProxyAPIKey)
		if err != nil {
			return nil, err
		}
	} else {
		client = fetch.NewClient()
	}

	return &Scraper{
		Config:   cfg,
		Client:   client,
		Parser:   parser,
		Log:      pricelog.New(logPath, parser.Sources(), cfg.Settings.Currency),
		throttle: time.Sleep,
	}, nil
}

// Errors exposes the run-scoped error stack.
func (s *Scraper) Errors() *ErrorStack { return &s.errs }

// Totals returns a copy of the per-source totals of the last run.
func (s *Scraper) Totals() map[tracker.MarketSource]Totals {
	out := make(map[tracker.MarketSource]Totals, len(s.totals))
	for source, t := range s.totals {
		out[source] = *t
	}
	return out
}

// Run executes one complete pass: validate, reset, iterate, convert,
// finalize. Per-item failures are recorded on the error stack and skipped;
// an exhausted retry budget halts the iteration early. The returned error
// is non-nil only for the fatal cases: an invalid configuration (no network
// activity happens) or a failure to persist the log row.
func (s *Scraper) Run() error {
	if err := s.Config.Validate(); err != nil {
		return s.report(s.errs.push(KindConfig, "invalid configuration: %v; fix the config file before running", err))
	}

	s.reset()

	for _, section := range s.Config.Sections {
		if s.halted {
			break
		}
		s.scrapeSection(section)
	}

	return s.finalize()
}

// reset clears all state left over from the previous run.
func (s *Scraper) reset() {
	s.errs.Clear()
	s.halted = false
	s.Client.ResetCache()
	s.totals = make(map[tracker.MarketSource]*Totals, len(s.Parser.Sources()))
	for _, source := range s.Parser.Sources() {
		s.totals[source] = &Totals{USD: decimal.Zero, Converted: decimal.Zero}
	}
}

func (s *Scraper) scrapeSection(section tracker.Section) {
	for _, item := range section.Items {
		if s.halted {
			return
		}
		if item.Owned == 0 {
			// Nothing owned, nothing fetched.
			continue
		}
		for _, source := range s.Parser.Sources() {
			if s.halted {
				return
			}
			s.priceItem(item, source)
		}
		if s.Parser.NeedsThrottle() && !s.Config.Settings.UseProxy {
			s.throttle(time.Second)
		}
	}
}

// priceItem fetches and parses one item/source pair and folds the extended
// price into the source's running total.
func (s *Scraper) priceItem(item tracker.Item, source tracker.MarketSource) {
	defer func() {
		// The safety net: a panic from a parser or a third-party call costs
		// one item, never the run.
		if r := recover(); r != nil {
			s.report(s.errs.push(KindUnexpected, "an unexpected error occurred for %s: %v", item.Name(), r))
		}
	}()

	page, err := s.Client.Get(s.Parser.ItemPageURL(item, source))
	if err != nil {
		s.record(item, err)
		return
	}
	price, err := s.Parser.ItemPrice(page, item, source)
	if err != nil {
		s.record(item, err)
		return
	}

	extended := price.Mul(decimal.NewFromInt(int64(item.Owned))).Round(2)
	total := s.totals[source]
	total.USD = total.USD.Add(extended)

	if s.Progress != nil {
		s.Progress(Event{
			Item:     item.Name(),
			Source:   source,
			Owned:    item.Owned,
			Price:    price,
			Extended: extended,
			Currency: "USD",
		})
	}
}

// record classifies one failure by kind and decides whether to halt.
func (s *Scraper) record(item tracker.Item, err error) {
	var retryErr *fetch.RetryError
	var parseErr *ParseError
	var pageErr *fetch.PageError

	switch {
	case errors.As(err, &retryErr):
		// Rate limiting does not heal while we keep hammering; stop here.
		s.halted = true
		s.report(s.errs.push(KindRequestLimit, "too many requests (%v); consider using proxies to prevent rate limiting", err))
	case errors.As(err, &parseErr):
		s.report(s.errs.push(KindParsing, "%v", err))
	case errors.As(err, &pageErr):
		s.report(s.errs.push(KindPageLoad, "%v", err))
	default:
		s.report(s.errs.push(KindUnexpected, "an unexpected error occurred for %s: %v", item.Name(), err))
	}
}

// report logs a freshly recorded error and returns it.
func (s *Scraper) report(e *RunError) error {
	log.Printf("[%s] %s", e.Kind, e.Message)
	return e
}

// finalize converts totals to the display currency, emits the summary
// events, persists the daily row and hands the run to the sink.
func (s *Scraper) finalize() error {
	currency := s.Config.Settings.Currency
	usdTotals := make(map[tracker.MarketSource]decimal.Decimal, len(s.totals))

	for _, source := range s.Parser.Sources() {
		total := s.totals[source]
		total.USD = total.USD.Round(2)
		total.Converted = tracker.Convert(total.USD, "USD", currency)
		usdTotals[source] = total.USD

		if s.Progress != nil {
			s.Progress(Event{
				Summary:  true,
				Source:   source,
				Price:    total.USD,
				Extended: total.Converted,
				Currency: currency,
			})
		}
	}

	if s.Log != nil {
		if err := s.Log.Save(usdTotals); err != nil {
			return s.report(s.errs.push(KindUnexpected, "cannot save price log: %v", err))
		}
	}
	if s.Sink != nil {
		if err := s.Sink(s.Totals()); err != nil {
			log.Printf("notification sink failed (ignored): %v", err)
		}
	}
	return nil
}

// Halted reports whether the last run stopped early on rate limiting.
func (s *Scraper) Halted() bool { return s.halted }
