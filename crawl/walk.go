package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/meddict"
	"golang.org/x/sync/errgroup"
)

// Frontier configuration for crawl runs.
const (
	// frontierExpectedURLs sizes the Bloom filter above the encyclopedia's
	// entry count so a full crawl stays under the false positive rate.
	frontierExpectedURLs = 50000
	// frontierFalsePositiveRate is the acceptable false positive rate for
	// deduplication.
	frontierFalsePositiveRate = 0.01
	// maxCrawlURLs limits the number of entries processed in one run. It
	// matches the source site's daily request budget.
	maxCrawlURLs = 25000
)

// walkProcessor processes one frontier entry and returns a crawlResult.
type walkProcessor func(ctx context.Context, entry meddict.DiscoveredEntry) crawlResult

// walkResultHandler handles a completed crawlResult. It runs on the
// coordinator goroutine, so it may push newly discovered entries into the
// frontier without further locking.
type walkResultHandler func(res *crawlResult, frontier *Frontier)

// walkFrontier drains a frontier seeded with the given entries through a
// concurrent worker pool. The frontier deduplicates, the coordinator
// dispatches work and collects results, and handleResult may grow the
// frontier while the walk is in flight.
func (c *Crawler) walkFrontier(
	ctx context.Context,
	seeds []meddict.DiscoveredEntry,
	processEntry walkProcessor,
	handleResult walkResultHandler,
) error {
	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	for _, seed := range seeds {
		frontier.Push(seed)
	}

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	workCh := make(chan meddict.DiscoveredEntry, concurrency)
	resultCh := make(chan crawlResult)

	g, gctx := errgroup.WithContext(ctx)
	for range concurrency {
		g.Go(func() error {
			for entry := range workCh {
				result := processEntry(gctx, entry)
				select {
				case resultCh <- result:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(resultCh)
	}()

	dispatched := 0 // entries handed to workers
	pending := 0    // entries currently being processed
	var next *meddict.DiscoveredEntry

	if entry, ok := frontier.Pop(); ok {
		next = &entry
	}

coordinatorLoop:
	for {
		if next == nil && pending == 0 {
			break coordinatorLoop
		}
		if ctx.Err() != nil {
			break coordinatorLoop
		}

		if next != nil && dispatched < maxCrawlURLs {
			select {
			case <-ctx.Done():
				break coordinatorLoop
			case workCh <- *next:
				dispatched++
				pending++
				next = nil
			case res := <-resultCh:
				pending--
				handleResult(&res, frontier)
			}
		} else {
			select {
			case <-ctx.Done():
				break coordinatorLoop
			case res, ok := <-resultCh:
				if !ok {
					break coordinatorLoop
				}
				pending--
				handleResult(&res, frontier)
			}
		}

		if next == nil && dispatched < maxCrawlURLs {
			if entry, ok := frontier.Pop(); ok {
				next = &entry
			}
		}
	}

	// Signal workers to stop and drain what they already produced.
	close(workCh)

	drainTimeout := time.After(5 * time.Second)
drainLoop:
	for {
		select {
		case res, ok := <-resultCh:
			if !ok {
				break drainLoop
			}
			handleResult(&res, frontier)
		case <-drainTimeout:
			break drainLoop
		}
	}

	return ctx.Err()
}
