package main

import (
	"fmt"
	"regexp"

	"github.com/fwojciec/meddict"
	"github.com/fwojciec/meddict/crawl"
)

// probeWindow is the half-width of the default probe range around the
// known-good document id.
const probeWindow = 100

// entryURLPattern keeps sitemap discovery to medicine dictionary entries.
var entryURLPattern = regexp.MustCompile(`entry\.naver\?([^#]*&)?(cid|categoryId)=` + meddict.MedicineCategoryID + `(&|$)`)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Crawling %d entries\n", event.Total)
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", crawl.TruncateURL(event.URL, 80), event.Error)
		case crawl.ProgressFinished:
			// Summary printed after crawl completes
		}
	}

	result, err := c.crawl(deps, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", meddict.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Saved %d new, updated %d, skipped %d unchanged, failed %d\n",
		result.Saved, result.Updated, result.Skipped, result.Failed)
	return nil
}

// crawl dispatches to the crawl mode selected by flags. Exactly one mode
// runs per invocation; without mode flags the listing pages are walked.
func (c *CrawlCmd) crawl(deps *Dependencies, progress crawl.ProgressFunc) (*crawl.Result, error) {
	switch {
	case c.Resume:
		return c.resume(deps, progress)
	case c.URL != "":
		if !meddict.IsEntryURL(c.URL) {
			return nil, meddict.Errorf(meddict.EINVALID, "%q is not a medicine entry URL", c.URL)
		}
		return deps.Crawler.CrawlURLs(deps.Ctx, []string{c.URL}, progress)
	case c.Keyword != "":
		return deps.Crawler.CrawlKeyword(deps.Ctx, c.Keyword, c.Limit, progress)
	case c.Probe:
		return c.probe(deps, progress)
	case c.Sitemap:
		return c.sitemap(deps, progress)
	default:
		return deps.Crawler.CrawlListing(deps.Ctx, c.StartPage, c.Pages, progress)
	}
}

// resume picks up where the latest checkpoint left off.
func (c *CrawlCmd) resume(deps *Dependencies, progress crawl.ProgressFunc) (*crawl.Result, error) {
	cp, err := deps.Checkpoints.LoadLatestCheckpoint(deps.Ctx)
	if err != nil {
		return nil, err
	}

	switch cp.Mode {
	case "listing":
		fmt.Fprintf(deps.Stdout, "Resuming listing crawl from page %d (%d processed, %d saved)\n",
			cp.Page+1, cp.Processed, cp.Saved)
		return deps.Crawler.CrawlListing(deps.Ctx, cp.Page+1, c.Pages, progress)
	case "keyword":
		fmt.Fprintf(deps.Stdout, "Resuming keyword crawl for %q\n", cp.Keyword)
		return deps.Crawler.CrawlKeyword(deps.Ctx, cp.Keyword, c.Limit, progress)
	default:
		return nil, meddict.Errorf(meddict.EINVALID, "checkpoint mode %q cannot be resumed", cp.Mode)
	}
}

// probe scans a docId range for medicine entries, then crawls the hits.
func (c *CrawlCmd) probe(deps *Dependencies, progress crawl.ProgressFunc) (*crawl.Result, error) {
	from, to := c.From, c.To
	if from == 0 && to == 0 {
		from = crawl.DefaultProbeDocID - probeWindow
		to = crawl.DefaultProbeDocID + probeWindow
	}
	if from <= 0 || to <= 0 {
		return nil, meddict.Errorf(meddict.EINVALID, "probe needs both --from and --to")
	}

	urls, err := deps.Crawler.ProbeRange(deps.Ctx, from, to)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(deps.Stdout, "Probe found %d medicine entries in %d..%d\n", len(urls), from, to)
	if len(urls) == 0 {
		return &crawl.Result{}, nil
	}
	return deps.Crawler.CrawlURLs(deps.Ctx, urls, progress)
}

// sitemap discovers entry URLs from the site's sitemap, then crawls them.
func (c *CrawlCmd) sitemap(deps *Dependencies, progress crawl.ProgressFunc) (*crawl.Result, error) {
	filter := &meddict.URLFilter{Include: []*regexp.Regexp{entryURLPattern}}
	urls, err := deps.Sitemaps.DiscoverURLs(deps.Ctx, meddict.SourceBaseURL, filter)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, meddict.Errorf(meddict.ENOTFOUND, "sitemap lists no medicine entries")
	}
	return deps.Crawler.CrawlURLs(deps.Ctx, urls, progress)
}
