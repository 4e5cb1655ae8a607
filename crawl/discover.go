package crawl

import (
	"context"
	"net/url"

	"github.com/fwojciec/meddict"
)

// maxListingPages is the deepest listing page the source serves. Requests
// past it come back with the last page's contents again.
const maxListingPages = 100

// DiscoverListing walks the paginated category listing and returns the
// entry URLs it links, deduplicated, together with the number of the last
// page walked. The walk follows the pagination's next link and stops at the
// final page; maxPages bounds it earlier, zero means no bound.
func (c *Crawler) DiscoverListing(ctx context.Context, startPage, maxPages int) ([]string, int, error) {
	if startPage < 1 {
		startPage = 1
	}
	if maxPages <= 0 {
		maxPages = maxListingPages
	}

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	var urls []string

	page := startPage
	lastPage := 0
	for walked := 0; walked < maxPages && page >= 1 && page <= maxListingPages; walked++ {
		if err := ctx.Err(); err != nil {
			return urls, lastPage, err
		}

		pageURL := meddict.ListingURLForPage(page)
		if c.RateLimiter != nil {
			u, err := url.Parse(pageURL)
			if err != nil {
				return urls, lastPage, err
			}
			if err := c.RateLimiter.Wait(ctx, u.Host); err != nil {
				return urls, lastPage, err
			}
		}

		html, err := c.Fetcher.Fetch(ctx, pageURL)
		if err != nil {
			// A failed listing page costs its links, not the whole walk.
			lastPage = page
			page++
			continue
		}

		for _, link := range c.Links.ExtractEntryLinks(html, pageURL) {
			if frontier.Push(meddict.DiscoveredEntry{URL: link, Source: "listing"}) {
				urls = append(urls, link)
			}
		}

		lastPage = page
		next := c.Links.NextListingPage(html)
		if next <= page {
			break
		}
		page = next
	}

	return urls, lastPage, nil
}
