package meddict

import "context"

// DiscoveredEntry is an entry URL found during discovery.
type DiscoveredEntry struct {
	// URL is the normalized entry URL.
	URL string

	// Source describes how the entry was found: "listing", "search",
	// "reference", "probe", "sitemap", or "manual" for caller-supplied URLs.
	Source string

	// Title is the entry title when discovery knows it, such as the title of
	// a search hit. Empty otherwise.
	Title string
}

// URLFrontier manages a crawl queue with deduplication.
type URLFrontier interface {
	// Push adds an entry to the frontier.
	// Returns false if the URL has already been seen.
	Push(entry DiscoveredEntry) bool

	// Pop returns the next entry in queue order.
	// Returns false if the frontier is empty.
	Pop() (DiscoveredEntry, bool)

	// Len returns the number of entries in the queue.
	Len() int

	// Seen returns true if the URL has been processed or queued.
	Seen(url string) bool
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}

// LinkExtractor finds entry links and pagination in listing or entry HTML.
type LinkExtractor interface {
	// ExtractEntryLinks returns the absolute URLs of medicine entries linked
	// from the page. Relative links are resolved against pageURL.
	ExtractEntryLinks(rawHTML, pageURL string) []string

	// NextListingPage returns the page number the pagination's next link
	// points at, or 0 when the page has no next link.
	NextListingPage(rawHTML string) int
}
