package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
)

// Fetcher retrieves the markup of one page per call. Implementations do a
// single round trip with no retries and no pacing; the crawl loop owns the
// inter-request delay.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// FetchError reports a failed page fetch. Status 0 means the request never
// completed (network failure); a positive Status is a non-success HTTP
// response.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s (status %d): %v", e.URL, e.Status, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Config holds fetcher settings
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// CollyFetcher fetches pages through Colly. A fresh collector is built per
// request so handler state never leaks between pages.
type CollyFetcher struct {
	userAgent string
	timeout   time.Duration
}

// NewCollyFetcher creates a fetcher with defaults filled in
func NewCollyFetcher(cfg Config) *CollyFetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "job-scraper/1.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &CollyFetcher{
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
	}
}

// Fetch performs one GET and returns the response body
func (f *CollyFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	target, err := normalizeURL(pageURL)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}

	c := f.newCollector()

	var body []byte
	status := 0
	var reqErr error

	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		reqErr = err
	})

	collyCtx := colly.NewContext()
	collyCtx.Put("ctx", ctx)

	if err := c.Request(http.MethodGet, target, nil, collyCtx, nil); err != nil {
		return nil, &FetchError{URL: target, Status: status, Err: err}
	}
	if reqErr != nil {
		return nil, &FetchError{URL: target, Status: status, Err: reqErr}
	}
	if status >= 400 {
		return nil, &FetchError{URL: target, Status: status}
	}

	return body, nil
}

func (f *CollyFetcher) newCollector() *colly.Collector {
	c := colly.NewCollector(colly.UserAgent(f.userAgent))
	c.IgnoreRobotsTxt = false
	c.SetRequestTimeout(f.timeout)

	c.OnRequest(func(r *colly.Request) {
		reqCtx := context.Background()
		if v := r.Ctx.GetAny("ctx"); v != nil {
			if c, ok := v.(context.Context); ok {
				reqCtx = c
			}
		}
		if reqCtx.Err() != nil {
			r.Abort()
		}
	})

	return c
}

func normalizeURL(rawURL string) (string, error) {
	if rawURL == "" {
		return "", errors.New("empty url")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	return u.String(), nil
}
