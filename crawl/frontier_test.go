package crawl_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/fwojciec/meddict"
	"github.com/fwojciec/meddict/crawl"
	"github.com/stretchr/testify/assert"
)

func TestFrontier_Push_rejects_duplicate_URLs(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)

	entry := meddict.DiscoveredEntry{
		URL:    meddict.EntryURLForDocID("2134746"),
		Source: "listing",
	}

	ok := f.Push(entry)
	assert.True(t, ok, "first push should succeed")

	ok = f.Push(entry)
	assert.False(t, ok, "duplicate URL should be rejected")

	// The same entry found by another discovery path is still a duplicate.
	entry.Source = "search"
	ok = f.Push(entry)
	assert.False(t, ok, "same URL from another source should be rejected")
}

func TestFrontier_Push_strips_fragments(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)

	base := meddict.EntryURLForDocID("2134746")

	ok := f.Push(meddict.DiscoveredEntry{URL: base + "#TABLE_OF_CONTENT1", Source: "reference"})
	assert.True(t, ok)

	// Anchor variants of the same entry are duplicates.
	ok = f.Push(meddict.DiscoveredEntry{URL: base + "#TABLE_OF_CONTENT2", Source: "reference"})
	assert.False(t, ok)
	ok = f.Push(meddict.DiscoveredEntry{URL: base, Source: "listing"})
	assert.False(t, ok)

	entry, ok := f.Pop()
	assert.True(t, ok)
	assert.Equal(t, base, entry.URL, "stored URL should have the fragment stripped")
}

func TestFrontier_Pop_returns_discovery_order(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)

	first := meddict.EntryURLForDocID("2134746")
	second := meddict.EntryURLForDocID("2134747")
	third := meddict.EntryURLForDocID("2134748")

	f.Push(meddict.DiscoveredEntry{URL: first, Source: "listing"})
	f.Push(meddict.DiscoveredEntry{URL: second, Source: "listing"})
	f.Push(meddict.DiscoveredEntry{URL: third, Source: "reference"})

	entry, ok := f.Pop()
	assert.True(t, ok)
	assert.Equal(t, first, entry.URL)
	assert.Equal(t, "listing", entry.Source)

	entry, ok = f.Pop()
	assert.True(t, ok)
	assert.Equal(t, second, entry.URL)

	entry, ok = f.Pop()
	assert.True(t, ok)
	assert.Equal(t, third, entry.URL)
	assert.Equal(t, "reference", entry.Source)

	_, ok = f.Pop()
	assert.False(t, ok, "pop on empty frontier should return false")
}

func TestFrontier_Len_tracks_queue_size(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)

	assert.Equal(t, 0, f.Len(), "new frontier should be empty")

	f.Push(meddict.DiscoveredEntry{URL: meddict.EntryURLForDocID("2134746"), Source: "listing"})
	assert.Equal(t, 1, f.Len())

	f.Push(meddict.DiscoveredEntry{URL: meddict.EntryURLForDocID("2134747"), Source: "listing"})
	assert.Equal(t, 2, f.Len())

	f.Pop()
	assert.Equal(t, 1, f.Len())

	f.Pop()
	assert.Equal(t, 0, f.Len())
}

func TestFrontier_Seen_tracks_all_pushed_URLs(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)

	url := meddict.EntryURLForDocID("2134746")
	assert.False(t, f.Seen(url), "unseen URL should return false")

	f.Push(meddict.DiscoveredEntry{URL: url, Source: "listing"})
	assert.True(t, f.Seen(url), "pushed URL should be seen")
	assert.True(t, f.Seen(url+"#section"), "fragment variant should be seen")

	// Popped URLs stay seen so they are never queued twice per run.
	f.Pop()
	assert.True(t, f.Seen(url), "popped URL should still be seen")
}

func TestFrontier_concurrent_access(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(10000, 0.01)

	const numGoroutines = 10
	const numOpsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines * 2) // pushers + poppers

	for i := range numGoroutines {
		go func(id int) {
			defer wg.Done()
			for j := range numOpsPerGoroutine {
				url := fmt.Sprintf("%s/entry.naver?docId=%d%03d&cid=51000", meddict.SourceBaseURL, id, j)
				f.Push(meddict.DiscoveredEntry{URL: url, Source: "probe"})
			}
		}(i)
	}

	for range numGoroutines {
		go func() {
			defer wg.Done()
			for range numOpsPerGoroutine {
				f.Pop()
				f.Len()
			}
		}()
	}

	wg.Wait()

	for i := range numGoroutines {
		for j := range numOpsPerGoroutine {
			url := fmt.Sprintf("%s/entry.naver?docId=%d%03d&cid=51000", meddict.SourceBaseURL, i, j)
			assert.True(t, f.Seen(url), "pushed URL %s should be seen", url)
		}
	}
}
