package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/flanksource/commons/logger"
	"golang.org/x/time/rate"
)

// Status classifies the outcome of fetching a fixture URL.
type Status int

const (
	// StatusFetched means the endpoint returned 2xx and Body holds the response text.
	StatusFetched Status = iota
	// StatusNotFound means the endpoint returned 404. Callers keep their old data.
	StatusNotFound
)

// String returns a string representation of Status
func (s Status) String() string {
	switch s {
	case StatusFetched:
		return "fetched"
	case StatusNotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// Response is the outcome of a fetch. Any HTTP status other than 2xx or 404
// surfaces as an error from Fetch, never as a Response.
type Response struct {
	Status Status
	Body   string
}

// Options configures a Client
type Options struct {
	// APIKey is appended to every URL as the api_key query parameter when set
	APIKey string
	// Timeout bounds each request (default 30s)
	Timeout time.Duration
	// RPS caps outgoing requests per second (default 10)
	RPS float64
}

// Client fetches fixture URLs sequentially, one request at a time
type Client struct {
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a fetch client with rate limiting and a request timeout
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := opts.RPS
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		apiKey:  opts.APIKey,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// AddAPIKey appends key as the api_key query parameter, picking the separator
// based on whether the URL already carries a query string. An empty key
// returns the URL unchanged.
func AddAPIKey(key, rawURL string) string {
	if key == "" {
		return rawURL
	}
	switch {
	case !strings.Contains(rawURL, "?"):
		return rawURL + "?api_key=" + key
	case strings.HasSuffix(rawURL, "?"):
		return rawURL + "api_key=" + key
	default:
		return rawURL + "&api_key=" + key
	}
}

// Fetch performs a GET against the key-augmented URL. 2xx returns the body,
// 404 returns the not-found sentinel, anything else is an error.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	logger.Infof("fetching %s", rawURL)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, AddAPIKey(c.apiKey, rawURL), nil)
	if err != nil {
		return nil, fmt.Errorf("invalid fixture URL %q: %w", rawURL, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", rawURL, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		logger.Warnf("404 for url %s", rawURL)
		return &Response{Status: StatusNotFound}, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return &Response{Status: StatusFetched, Body: string(body)}, nil
	default:
		return nil, fmt.Errorf("GET %s: unexpected status %d", rawURL, resp.StatusCode)
	}
}
