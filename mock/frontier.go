package mock

import (
	"context"

	"github.com/fwojciec/meddict"
)

var _ meddict.URLFrontier = (*URLFrontier)(nil)

// URLFrontier is a mock implementation of meddict.URLFrontier.
type URLFrontier struct {
	PushFn func(entry meddict.DiscoveredEntry) bool
	PopFn  func() (meddict.DiscoveredEntry, bool)
	LenFn  func() int
	SeenFn func(url string) bool
}

func (f *URLFrontier) Push(entry meddict.DiscoveredEntry) bool {
	return f.PushFn(entry)
}

func (f *URLFrontier) Pop() (meddict.DiscoveredEntry, bool) {
	return f.PopFn()
}

func (f *URLFrontier) Len() int {
	return f.LenFn()
}

func (f *URLFrontier) Seen(url string) bool {
	return f.SeenFn(url)
}

var _ meddict.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of meddict.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}

var _ meddict.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of meddict.LinkExtractor.
type LinkExtractor struct {
	ExtractEntryLinksFn func(rawHTML, pageURL string) []string
	NextListingPageFn   func(rawHTML string) int
}

func (e *LinkExtractor) ExtractEntryLinks(rawHTML, pageURL string) []string {
	return e.ExtractEntryLinksFn(rawHTML, pageURL)
}

func (e *LinkExtractor) NextListingPage(rawHTML string) int {
	return e.NextListingPageFn(rawHTML)
}
