// Package http provides HTTP-based implementations of the meddict fetching
// and search services for pages that don't require JavaScript rendering.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/meddict"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements meddict.Fetcher at compile time.
var _ meddict.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using plain HTTP requests.
// Unlike rod.Fetcher, this does not execute JavaScript and is suitable
// for entry pages that render server-side.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	referer   string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithReferer sets the Referer header sent with every request.
func WithReferer(referer string) Option {
	return func(f *Fetcher) {
		f.referer = referer
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: meddict.BrowserUserAgent,
		referer:   "https://search.naver.com/",
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the HTML content from the given URL.
// Returns ENOTFOUND for 404 responses and EUNAVAILABLE when the source
// refuses or throttles the request.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")
	if f.referer != "" {
		req.Header.Set("Referer", f.referer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode, url); err != nil {
		return "", err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

// statusError maps a non-200 response to a module error.
func statusError(status int, url string) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusNotFound:
		return meddict.Errorf(meddict.ENOTFOUND, "page not found: %s", url)
	case status == http.StatusForbidden || status == http.StatusTooManyRequests || status >= 500:
		return meddict.Errorf(meddict.EUNAVAILABLE, "HTTP %d for %s", status, url)
	default:
		return meddict.Errorf(meddict.EINTERNAL, "HTTP %d for %s", status, url)
	}
}
