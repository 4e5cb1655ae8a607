// Package crawl provides medicine crawling orchestration.
// It coordinates discovery, fetching, extraction, and storage of
// encyclopedia entries.
package crawl

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/fwojciec/meddict"
)

// DefaultCheckpointEvery is the number of processed entries between
// checkpoint writes.
const DefaultCheckpointEvery = 100

// Crawler orchestrates the crawling of medicine entries.
type Crawler struct {
	Fetcher   meddict.Fetcher
	Extractor meddict.Extractor
	Links     meddict.LinkExtractor
	Medicines meddict.MedicineService

	// Search resolves entry titles for records whose headword failed to
	// extract. Optional.
	Search meddict.SearchService

	// Images downloads entry images next to the store. Optional.
	Images meddict.ImageDownloader

	// Checkpoints persists progress so interrupted crawls can resume.
	// Optional.
	Checkpoints meddict.CheckpointService

	// Snapshots archives pages that yielded no fields, for offline
	// inspection of layout changes. Optional.
	Snapshots meddict.SnapshotStore

	// Classifier verifies that probed pages belong to the medicine
	// dictionary. Optional; without it ProbeRange accepts any page whose
	// headword extracts.
	Classifier meddict.EntryClassifier

	RateLimiter meddict.DomainLimiter
	Concurrency int

	// CheckpointEvery overrides the checkpoint cadence. Zero means
	// DefaultCheckpointEvery.
	CheckpointEvery int

	// FollowReferences queues entry links found in a crawled record's
	// references, so related medicines are picked up in the same run.
	FollowReferences bool
}

// Result holds the outcome of a crawl operation.
type Result struct {
	Saved   int
	Updated int
	Skipped int
	Failed  int
	Errors  []string
}

// ProgressEvent reports progress during a crawl operation.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// outcome classifies what happened to a single entry.
type outcome int

const (
	outcomeFailed outcome = iota
	outcomeSaved
	outcomeUpdated
	outcomeSkipped
)

// crawlResult holds the outcome of processing a single entry.
type crawlResult struct {
	url     string
	outcome outcome
	refs    []string
	err     error
}

// crawlState carries the bookkeeping shared by one crawl run: the tallies
// and the checkpoint identity.
type crawlState struct {
	mode      string
	keyword   string
	page      int
	processed int
	result    *Result
}

// CrawlURLs crawls the given entry URLs and saves the extracted records.
// URLs are normalized and deduplicated before crawling. The progress
// callback, if provided, receives events as crawling proceeds.
func (c *Crawler) CrawlURLs(ctx context.Context, urls []string, progress ProgressFunc) (*Result, error) {
	seeds := make([]meddict.DiscoveredEntry, 0, len(urls))
	for _, raw := range urls {
		seeds = append(seeds, meddict.DiscoveredEntry{
			URL:    meddict.NormalizeEntryURL(raw),
			Source: "manual",
		})
	}
	state := &crawlState{mode: "urls", result: &Result{}}
	if err := c.run(ctx, state, seeds, progress); err != nil {
		return state.result, err
	}
	return state.result, nil
}

// CrawlKeyword searches the encyclopedia for keyword and crawls the entry
// pages among the hits. Search hit titles fill in the Korean name on pages
// where the headword fails to extract.
func (c *Crawler) CrawlKeyword(ctx context.Context, keyword string, limit int, progress ProgressFunc) (*Result, error) {
	if c.Search == nil {
		return nil, meddict.Errorf(meddict.EINVALID, "keyword crawl requires a search service")
	}

	hits, err := c.Search.SearchMedicines(ctx, keyword, limit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}

	seeds := make([]meddict.DiscoveredEntry, 0, len(hits))
	for _, hit := range hits {
		if !meddict.IsEntryURL(hit.Link) {
			continue
		}
		seeds = append(seeds, meddict.DiscoveredEntry{
			URL:    meddict.NormalizeEntryURL(hit.Link),
			Source: "search",
			Title:  hit.Title,
		})
	}

	state := &crawlState{mode: "keyword", keyword: keyword, result: &Result{}}
	if err := c.run(ctx, state, seeds, progress); err != nil {
		return state.result, err
	}
	return state.result, nil
}

// CrawlListing walks the paginated category listing starting at startPage,
// then crawls every entry it found. maxPages bounds the number of listing
// pages walked; zero means all of them.
func (c *Crawler) CrawlListing(ctx context.Context, startPage, maxPages int, progress ProgressFunc) (*Result, error) {
	urls, lastPage, err := c.DiscoverListing(ctx, startPage, maxPages)
	if err != nil {
		return nil, err
	}

	seeds := make([]meddict.DiscoveredEntry, 0, len(urls))
	for _, u := range urls {
		seeds = append(seeds, meddict.DiscoveredEntry{URL: u, Source: "listing"})
	}

	state := &crawlState{mode: "listing", page: lastPage, result: &Result{}}
	if err := c.run(ctx, state, seeds, progress); err != nil {
		return state.result, err
	}
	return state.result, nil
}

// run crawls the seed entries through the frontier worker pool, tallying
// outcomes into state and checkpointing as it goes.
func (c *Crawler) run(ctx context.Context, state *crawlState, seeds []meddict.DiscoveredEntry, progress ProgressFunc) error {
	if progress != nil {
		progress(ProgressEvent{
			Type:  ProgressStarted,
			Total: len(seeds),
		})
	}

	every := c.CheckpointEvery
	if every <= 0 {
		every = DefaultCheckpointEvery
	}

	handleResult := func(res *crawlResult, frontier *Frontier) {
		for _, ref := range res.refs {
			frontier.Push(meddict.DiscoveredEntry{URL: ref, Source: "reference"})
		}

		state.processed++
		if res.err != nil {
			state.result.Failed++
			state.result.Errors = append(state.result.Errors, fmt.Sprintf("%s: %s", res.url, res.err))
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressFailed,
					Completed: state.processed,
					URL:       res.url,
					Error:     res.err,
				})
			}
		} else {
			switch res.outcome {
			case outcomeSaved:
				state.result.Saved++
			case outcomeUpdated:
				state.result.Updated++
			case outcomeSkipped:
				state.result.Skipped++
			}
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressCompleted,
					Completed: state.processed,
					URL:       res.url,
				})
			}
		}

		if state.processed%every == 0 {
			c.saveCheckpoint(ctx, state)
		}
	}

	err := c.walkFrontier(ctx, seeds, c.crawlEntry, handleResult)

	if progress != nil {
		progress(ProgressEvent{
			Type:      ProgressFinished,
			Completed: state.processed,
		})
	}

	// Final checkpoint so a completed run is visible to resume.
	if state.processed > 0 {
		c.saveCheckpoint(ctx, state)
	}

	return err
}

// crawlEntry fetches, extracts, and stores a single medicine entry.
func (c *Crawler) crawlEntry(ctx context.Context, entry meddict.DiscoveredEntry) crawlResult {
	res := crawlResult{url: entry.URL}

	entryURL, err := url.Parse(entry.URL)
	if err != nil {
		res.err = err
		return res
	}

	if c.RateLimiter != nil {
		if err := c.RateLimiter.Wait(ctx, entryURL.Host); err != nil {
			res.err = err
			return res
		}
	}

	html, err := c.Fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		res.err = err
		return res
	}

	rec, rep := c.Extractor.Extract(html, entry.URL)

	// Some layout variants bury the headword; the discovery title or the
	// search index usually still has the display name.
	if rec.KoreanName == "" && entry.Title != "" {
		meddict.EnrichKoreanName(rec, rep, entry.Title)
	}
	if rec.KoreanName == "" && c.Search != nil {
		if title := c.searchTitle(ctx, entry.URL, rec); title != "" {
			meddict.EnrichKoreanName(rec, rep, title)
		}
	}

	if c.FollowReferences {
		res.refs = entryReferences(rec)
	}

	if !rep.ParsingSuccess {
		if c.Snapshots != nil {
			if path, serr := c.Snapshots.SaveSnapshot(entry.URL, html); serr == nil {
				res.err = meddict.Errorf(meddict.EINTERNAL, "no fields extracted, page saved to %s", path)
				return res
			}
		}
		res.err = meddict.Errorf(meddict.EINTERNAL, "no fields extracted")
		return res
	}

	res.outcome, res.err = c.saveMedicine(ctx, entry.URL, rec, rep, html)
	return res
}

// saveMedicine stores an extracted record, deduplicating against the
// existing entry by content hash.
func (c *Crawler) saveMedicine(ctx context.Context, entryURL string, rec *meddict.MedicineRecord, rep *meddict.ParsingReport, html string) (outcome, error) {
	hash := RecordHash(rec)

	existing, err := c.Medicines.FindMedicineByURL(ctx, entryURL)
	if err != nil && meddict.ErrorCode(err) != meddict.ENOTFOUND {
		return outcomeFailed, err
	}

	if existing != nil {
		if existing.DataHash == hash {
			return outcomeSkipped, nil
		}
		upd := meddict.MedicineUpdate{
			Record:       rec,
			RawHTML:      &html,
			DataHash:     &hash,
			Completeness: &rep.Completeness,
		}
		if path := c.downloadImage(ctx, rec, existing.ImagePath); path != "" {
			upd.ImagePath = &path
		}
		if _, err := c.Medicines.UpdateMedicine(ctx, existing.ID, upd); err != nil {
			return outcomeFailed, err
		}
		return outcomeUpdated, nil
	}

	m := &meddict.Medicine{
		URL:          entryURL,
		DocID:        meddict.DocIDFromURL(entryURL),
		Record:       *rec,
		RawHTML:      html,
		DataHash:     hash,
		Completeness: rep.Completeness,
		ImagePath:    c.downloadImage(ctx, rec, ""),
	}
	if err := c.Medicines.CreateMedicine(ctx, m); err != nil {
		return outcomeFailed, err
	}
	return outcomeSaved, nil
}

// downloadImage fetches the entry image unless one is already on disk.
// Image failures never fail the entry itself.
func (c *Crawler) downloadImage(ctx context.Context, rec *meddict.MedicineRecord, existingPath string) string {
	if c.Images == nil || rec.ImageURL == "" || existingPath != "" {
		return ""
	}
	path, err := c.Images.DownloadImage(ctx, rec.ImageURL)
	if err != nil {
		return ""
	}
	return path
}

// searchTitle looks the entry up in the search API and returns the title of
// the hit with the same docId, or "" when no hit matches.
func (c *Crawler) searchTitle(ctx context.Context, entryURL string, rec *meddict.MedicineRecord) string {
	docID := meddict.DocIDFromURL(entryURL)
	if docID == "" || rec.EnglishName == "" {
		return ""
	}

	hits, err := c.Search.SearchMedicines(ctx, rec.EnglishName, 10)
	if err != nil {
		return ""
	}
	for _, hit := range hits {
		if meddict.DocIDFromURL(hit.Link) == docID {
			return hit.Title
		}
	}
	return ""
}

// entryReferences returns the record's reference links that point at other
// medicine entries, normalized for the frontier.
func entryReferences(rec *meddict.MedicineRecord) []string {
	var refs []string
	for _, ref := range rec.ReferenceURLs {
		if meddict.IsEntryURL(ref) {
			refs = append(refs, meddict.NormalizeEntryURL(ref))
		}
	}
	return refs
}

// saveCheckpoint persists progress. A checkpoint that fails to write must
// not interrupt the crawl.
func (c *Crawler) saveCheckpoint(ctx context.Context, state *crawlState) {
	if c.Checkpoints == nil {
		return
	}
	_ = c.Checkpoints.SaveCheckpoint(ctx, &meddict.Checkpoint{
		Mode:      state.mode,
		Keyword:   state.keyword,
		Page:      state.page,
		Processed: state.processed,
		Saved:     state.result.Saved,
		CreatedAt: time.Now().UTC(),
	})
}
