package crawl

import (
	"context"
	"net/url"
	"strconv"

	"github.com/fwojciec/meddict"
)

// DefaultProbeDocID is a docId known to resolve to a medicine entry. Range
// probes seed from it, and fetcher selection uses its page as the litmus
// test.
const DefaultProbeDocID = 2134746

// ProbeFetcher picks the fetcher a crawl should use. The encyclopedia
// intermittently serves a script-only shell to plain HTTP clients; when the
// static fetch of a known-good entry yields no medicine name, only a real
// browser will see the content, so the rendered fetcher wins.
func ProbeFetcher(ctx context.Context, probeURL string, static, rendered meddict.Fetcher, extractor meddict.Extractor) meddict.Fetcher {
	if rendered == nil {
		return static
	}
	if static == nil {
		return rendered
	}

	html, err := static.Fetch(ctx, probeURL)
	if err != nil {
		return rendered
	}
	rec, _ := extractor.Extract(html, probeURL)
	if rec.KoreanName == "" {
		return rendered
	}
	return static
}

// ProbeRange scans docIds from fromID through toID and returns the entry
// URLs of the medicine pages among them. Medicine docIds cluster, so
// scanning the neighborhood of a known id turns up entries the listing and
// the search index never surface.
func (c *Crawler) ProbeRange(ctx context.Context, fromID, toID int64) ([]string, error) {
	if fromID > toID {
		fromID, toID = toID, fromID
	}

	var urls []string
	for id := fromID; id <= toID; id++ {
		if err := ctx.Err(); err != nil {
			return urls, err
		}

		entryURL := meddict.EntryURLForDocID(strconv.FormatInt(id, 10))
		if c.RateLimiter != nil {
			u, err := url.Parse(entryURL)
			if err != nil {
				continue
			}
			if err := c.RateLimiter.Wait(ctx, u.Host); err != nil {
				return urls, err
			}
		}

		html, err := c.Fetcher.Fetch(ctx, entryURL)
		if err != nil {
			// Misses are the normal case when probing a docId range.
			continue
		}

		rec, _ := c.Extractor.Extract(html, entryURL)
		if rec.KoreanName == "" {
			continue
		}
		// The docId space is shared across dictionaries. A headword alone
		// does not make the page a medicine.
		if c.Classifier != nil && !c.Classifier.IsMedicineEntry(html) {
			continue
		}

		urls = append(urls, entryURL)
	}
	return urls, nil
}
