// Package fetch implements the HTTP layer of the scraper: a GET client with
// a bounded retry budget, capped backoff, an in-memory response cache scoped
// to one scrape run, and optional routing through an authenticated proxy.
package fetch

import (
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// proxyAddr is the fixed smartproxy endpoint; the API key is embedded as
	// the proxy username. The proxy terminates TLS, hence the disabled
	// certificate verification on that transport.
	proxyAddr = "http://%s:@smartproxy.crawlbase.com:8012"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.36"

	defaultAttempts = 10
	baseDelay       = 100 * time.Millisecond
	maxDelay        = 2 * time.Second
)

// transient lists the HTTP statuses worth retrying; anything else that is
// not a success fails the request immediately.
var transient = map[int]bool{
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
	520:                            true, // cloudflare "unknown origin error"
}

// Page is a fetched response body with enough metadata for the parsers.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

// JSON unmarshals the page body into v.
func (p *Page) JSON(v any) error { return json.Unmarshal(p.Body, v) }

// PageError reports a response that cannot be used: an error status or an
// empty body.
type PageError struct {
	URL        string
	StatusCode int
}

func (e *PageError) Error() string {
	return fmt.Sprintf("failed to load page %s: status %d", e.URL, e.StatusCode)
}

// RetryError reports an exhausted retry budget. Callers inspect it with
// errors.As: the orchestrator treats it as a signal that further requests
// will keep failing and halts the run.
type RetryError struct {
	URL      string
	Attempts int
	Last     error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("giving up on %s after %d attempts: %v", e.URL, e.Attempts, e.Last)
}

func (e *RetryError) Unwrap() error { return e.Last }

// Client issues GET requests with retry and caching. It is not safe for
// concurrent use; one scrape run owns one client.
type Client struct {
	HTTP     *http.Client
	Attempts int

	cache map[string]*Page
	sleep func(time.Duration) // swapped out in tests
}

// NewClient returns a direct client.
func NewClient() *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: 30 * time.Second},
		Attempts: defaultAttempts,
		cache:    make(map[string]*Page),
		sleep:    time.Sleep,
	}
}

// NewProxyClient returns a client routing every request through the proxy
// endpoint, authenticated by apiKey. TLS verification is disabled because
// the proxy terminates TLS.
func NewProxyClient(apiKey string) (*Client, error) {
	proxy, err := url.Parse(fmt.Sprintf(proxyAddr, apiKey))
	if err != nil {
		return nil, fmt.Errorf("invalid proxy credentials: %w", err)
	}
	c := NewClient()
	c.HTTP.Transport = &http.Transport{
		Proxy:           http.ProxyURL(proxy),
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	return c, nil
}

// ResetCache drops every cached response. The orchestrator calls it at the
// start of each run so prices are never served across runs.
func (c *Client) ResetCache() { c.cache = make(map[string]*Page) }

// Get fetches a URL, retrying transient failures with capped backoff.
// Responses are cached by exact URL for the lifetime of the cache, so items
// sharing one listing page cost a single request. On budget exhaustion the
// returned error is a *RetryError wrapping the last failure.
func (c *Client) Get(addr string) (*Page, error) {
	if page, ok := c.cache[addr]; ok {
		return page, nil
	}

	attempts := c.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			c.sleep(backoff(attempt))
		}

		page, err := c.fetch(addr)
		if err == nil {
			c.cache[addr] = page
			return page, nil
		}
		lastErr = err

		var pageErr *PageError
		if errors.As(err, &pageErr) && !retryable(pageErr.StatusCode) {
			// A definitive status like 404 will not improve with retries.
			return nil, err
		}
	}
	return nil, &RetryError{URL: addr, Attempts: attempts, Last: lastErr}
}

// retryable reports whether a PageError status deserves another attempt:
// the transient whitelist, plus empty-bodied success responses (status 2xx
// with no content, reported as their own status).
func retryable(status int) bool {
	return transient[status] || (status >= 200 && status < 300)
}

// fetch performs one GET. It returns *PageError for unusable responses and
// the transport error for connection-level failures.
func (c *Client) fetch(addr string) (*Page, error) {
	req, err := http.NewRequest(http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || len(body) == 0 {
		return nil, &PageError{URL: addr, StatusCode: resp.StatusCode}
	}
	return &Page{URL: addr, StatusCode: resp.StatusCode, Body: body}, nil
}

// backoff returns the capped exponential delay before the given attempt.
func backoff(attempt int) time.Duration {
	d := baseDelay << (attempt - 2) // attempt 2 waits baseDelay
	if d > maxDelay || d <= 0 {
		return maxDelay
	}
	return d
}
