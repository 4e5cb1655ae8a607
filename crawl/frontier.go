package crawl

import (
	"strings"
	"sync"

	"github.com/fwojciec/meddict"
	"github.com/fwojciec/meddict/bloom"
)

// Compile-time interface verification.
var _ meddict.URLFrontier = (*Frontier)(nil)

// Frontier is an in-memory crawl queue with Bloom filter deduplication.
// Entries come out in discovery order, so listing seeds are crawled before
// the references they drag in. It is safe for concurrent use by multiple
// goroutines.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	queue []meddict.DiscoveredEntry
}

// NewFrontier creates a frontier sized for n expected URLs with the given
// false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		seen: bloom.NewFilter(n, fpRate),
	}
}

// Push adds an entry to the frontier.
// Returns false if the URL has already been seen. URL fragments are
// stripped first, so anchor variants of the same entry count as duplicates.
func (f *Frontier) Push(entry meddict.DiscoveredEntry) bool {
	entry.URL = stripFragment(entry.URL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen.Test(entry.URL) {
		return false
	}
	f.seen.Add(entry.URL)

	f.queue = append(f.queue, entry)
	return true
}

// Pop returns the next entry in discovery order.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (meddict.DiscoveredEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return meddict.DiscoveredEntry{}, false
	}
	entry := f.queue[0]
	f.queue = f.queue[1:]
	return entry, true
}

// Len returns the number of entries in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen returns true if the URL has been processed or queued.
// URL fragments are stripped before checking.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Test(stripFragment(rawURL))
}

// stripFragment drops the #fragment part of a URL for deduplication.
func stripFragment(url string) string {
	if idx := strings.Index(url, "#"); idx != -1 {
		return url[:idx]
	}
	return url
}
