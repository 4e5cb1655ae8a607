package rod

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fwojciec/meddict"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page render, including navigation and
// load. Browser renders are slower than plain HTTP fetches.
const DefaultFetchTimeout = 30 * time.Second

// Ensure Fetcher implements meddict.Fetcher at compile time.
var _ meddict.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// It is the fallback for entry pages where the static fetcher is served the
// reduced bot-facing page. Pages are opened through a BrowserManager so the
// browser is recycled on long crawls.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager   *BrowserManager
	timeout   time.Duration
	userAgent string
	closed    atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-fetch timeout. Defaults to DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the user agent the browser reports to pages.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithBrowserManager supplies a shared BrowserManager. Without it the
// Fetcher launches and owns its own.
func WithBrowserManager(m *BrowserManager) Option {
	return func(f *Fetcher) {
		f.manager = m
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: meddict.BrowserUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.manager == nil {
		m, err := NewBrowserManager()
		if err != nil {
			return nil, err
		}
		f.manager = m
	}

	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", meddict.Errorf(meddict.EINVALID, "fetcher is closed")
	}

	// Check context before starting
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	// Every opened page counts toward the recycle threshold. Chrome's
	// memory grows whether or not the render succeeds.
	f.manager.IncrementPageCount()

	// Set context for all subsequent operations
	page = page.Context(ctx)

	// Headless Chrome announces itself in its default user agent, which gets
	// the reduced bot-facing page. Report a desktop browser instead.
	if f.userAgent != "" {
		err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      f.userAgent,
			AcceptLanguage: "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7",
		})
		if err != nil {
			return "", err
		}
	}

	// Navigate to URL
	if err := page.Navigate(url); err != nil {
		return "", err
	}

	// Wait for page to load
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	// Get rendered HTML
	html, err := page.HTML()
	if err != nil {
		return "", err
	}

	return html, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
