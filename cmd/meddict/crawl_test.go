package main_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/meddict"
	main "github.com/fwojciec/meddict/cmd/meddict"
	"github.com/fwojciec/meddict/crawl"
	"github.com/fwojciec/meddict/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tylenolExtractor returns an extractor that yields the same two-field
// record for every page.
func tylenolExtractor() *mock.Extractor {
	return &mock.Extractor{
		ExtractFn: func(_, sourceURL string) (*meddict.MedicineRecord, *meddict.ParsingReport) {
			rec := &meddict.MedicineRecord{
				KoreanName: "타이레놀정500밀리그람",
				Efficacy:   "감기로 인한 발열 및 동통",
			}
			rep := meddict.NewParsingReport(sourceURL)
			rep.ExtractedFields = append(rep.ExtractedFields, meddict.FieldKoreanName, meddict.FieldEfficacy)
			rep.Finalize()
			return rec, rep
		},
	}
}

// freshStore returns a store where no entry exists yet, appending created
// medicines to dst.
func freshStore(dst *[]*meddict.Medicine) *mock.MedicineService {
	return &mock.MedicineService{
		FindMedicineByURLFn: func(_ context.Context, url string) (*meddict.Medicine, error) {
			return nil, meddict.Errorf(meddict.ENOTFOUND, "medicine not found")
		},
		CreateMedicineFn: func(_ context.Context, m *meddict.Medicine) error {
			m.ID = "med-1"
			*dst = append(*dst, m)
			return nil
		},
	}
}

func TestCrawlCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("crawls a single entry URL", func(t *testing.T) {
		t.Parallel()

		entryURL := meddict.EntryURLForDocID("2134746")

		var created []*meddict.Medicine
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				return "<html>entry</html>", nil
			},
		}

		crawler := &crawl.Crawler{
			Fetcher:     fetcher,
			Extractor:   tylenolExtractor(),
			Medicines:   freshStore(&created),
			Concurrency: 1,
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  stderr,
			Crawler: crawler,
		}

		cmd := &main.CrawlCmd{URL: entryURL, Concurrency: 1}

		err := cmd.Run(deps)

		require.NoError(t, err)
		require.Len(t, created, 1)
		assert.Equal(t, entryURL, created[0].URL)
		assert.Equal(t, "타이레놀정500밀리그람", created[0].Record.KoreanName)

		output := stdout.String()
		assert.Contains(t, output, "Crawling 1 entries")
		assert.Contains(t, output, "Saved 1 new, updated 0, skipped 0 unchanged, failed 0")
	})

	t.Run("rejects a URL outside the medicine dictionary", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
		}

		cmd := &main.CrawlCmd{URL: "https://example.com/blog/post"}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, meddict.EINVALID, meddict.ErrorCode(err))
		assert.Contains(t, stderr.String(), "not a medicine entry URL")
	})

	t.Run("crawls the entry hits of a keyword search", func(t *testing.T) {
		t.Parallel()

		entryURL := meddict.EntryURLForDocID("2134746")

		var gotQuery string
		var gotLimit int
		search := &mock.SearchService{
			SearchMedicinesFn: func(_ context.Context, query string, limit int) ([]*meddict.SearchResult, error) {
				gotQuery = query
				gotLimit = limit
				return []*meddict.SearchResult{
					{Title: "타이레놀정500밀리그람", Link: entryURL},
					{Title: "타이레놀 복용 후기", Link: "https://blog.naver.com/someone/223"},
				}, nil
			},
		}

		var created []*meddict.Medicine
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				return "<html>entry</html>", nil
			},
		}

		crawler := &crawl.Crawler{
			Fetcher:     fetcher,
			Extractor:   tylenolExtractor(),
			Medicines:   freshStore(&created),
			Search:      search,
			Concurrency: 1,
		}

		stdout := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  &bytes.Buffer{},
			Crawler: crawler,
		}

		cmd := &main.CrawlCmd{Keyword: "타이레놀", Limit: 10}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "타이레놀", gotQuery)
		assert.Equal(t, 10, gotLimit)

		// Only the dictionary entry is crawled, not the blog hit.
		require.Len(t, created, 1)
		assert.Equal(t, entryURL, created[0].URL)
		assert.Contains(t, stdout.String(), "Crawling 1 entries")
	})

	t.Run("walks the listing when no mode flag is given", func(t *testing.T) {
		t.Parallel()

		entryURL := meddict.EntryURLForDocID("2134746")

		var fetched []string
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				fetched = append(fetched, url)
				if strings.Contains(url, "medicineSearch") {
					return "<html>listing</html>", nil
				}
				return "<html>entry</html>", nil
			},
		}

		links := &mock.LinkExtractor{
			ExtractEntryLinksFn: func(_, _ string) []string {
				return []string{entryURL}
			},
			NextListingPageFn: func(_ string) int {
				return 0
			},
		}

		var created []*meddict.Medicine
		crawler := &crawl.Crawler{
			Fetcher:     fetcher,
			Extractor:   tylenolExtractor(),
			Links:       links,
			Medicines:   freshStore(&created),
			Concurrency: 1,
		}

		stdout := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  &bytes.Buffer{},
			Crawler: crawler,
		}

		cmd := &main.CrawlCmd{StartPage: 1, Pages: 1}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, fetched, meddict.ListingURLForPage(1))
		assert.Contains(t, fetched, entryURL)
		require.Len(t, created, 1)
		assert.Contains(t, stdout.String(), "Saved 1 new")
	})

	t.Run("skips entries whose content has not changed", func(t *testing.T) {
		t.Parallel()

		entryURL := meddict.EntryURLForDocID("2134746")

		extractor := tylenolExtractor()
		rec, _ := extractor.Extract("<html>entry</html>", entryURL)

		medicines := &mock.MedicineService{
			FindMedicineByURLFn: func(_ context.Context, url string) (*meddict.Medicine, error) {
				return &meddict.Medicine{
					ID:       "med-1",
					URL:      url,
					Record:   *rec,
					DataHash: crawl.RecordHash(rec),
				}, nil
			},
		}

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				return "<html>entry</html>", nil
			},
		}

		crawler := &crawl.Crawler{
			Fetcher:     fetcher,
			Extractor:   extractor,
			Medicines:   medicines,
			Concurrency: 1,
		}

		stdout := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  &bytes.Buffer{},
			Crawler: crawler,
		}

		cmd := &main.CrawlCmd{URL: entryURL}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Saved 0 new, updated 0, skipped 1 unchanged, failed 0")
	})

	t.Run("resumes a listing crawl from the page after the checkpoint", func(t *testing.T) {
		t.Parallel()

		checkpoints := &mock.CheckpointService{
			LoadLatestCheckpointFn: func(_ context.Context) (*meddict.Checkpoint, error) {
				return &meddict.Checkpoint{Mode: "listing", Page: 3, Processed: 120, Saved: 100}, nil
			},
		}

		var fetched []string
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				fetched = append(fetched, url)
				return "<html>listing</html>", nil
			},
		}

		links := &mock.LinkExtractor{
			ExtractEntryLinksFn: func(_, _ string) []string { return nil },
			NextListingPageFn:   func(_ string) int { return 0 },
		}

		crawler := &crawl.Crawler{
			Fetcher:     fetcher,
			Extractor:   tylenolExtractor(),
			Links:       links,
			Medicines:   &mock.MedicineService{},
			Concurrency: 1,
		}

		stdout := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:         context.Background(),
			Stdout:      stdout,
			Stderr:      &bytes.Buffer{},
			Checkpoints: checkpoints,
			Crawler:     crawler,
		}

		cmd := &main.CrawlCmd{Resume: true}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Resuming listing crawl from page 4")
		assert.Equal(t, []string{meddict.ListingURLForPage(4)}, fetched)
	})

	t.Run("resumes a keyword crawl with the checkpointed keyword", func(t *testing.T) {
		t.Parallel()

		checkpoints := &mock.CheckpointService{
			LoadLatestCheckpointFn: func(_ context.Context) (*meddict.Checkpoint, error) {
				return &meddict.Checkpoint{Mode: "keyword", Keyword: "아스피린"}, nil
			},
		}

		var gotQuery string
		search := &mock.SearchService{
			SearchMedicinesFn: func(_ context.Context, query string, _ int) ([]*meddict.SearchResult, error) {
				gotQuery = query
				return nil, nil
			},
		}

		crawler := &crawl.Crawler{
			Fetcher:     &mock.Fetcher{},
			Extractor:   tylenolExtractor(),
			Medicines:   &mock.MedicineService{},
			Search:      search,
			Concurrency: 1,
		}

		stdout := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:         context.Background(),
			Stdout:      stdout,
			Stderr:      &bytes.Buffer{},
			Checkpoints: checkpoints,
			Crawler:     crawler,
		}

		cmd := &main.CrawlCmd{Resume: true, Limit: 30}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "아스피린", gotQuery)
		assert.Contains(t, stdout.String(), `Resuming keyword crawl for "아스피린"`)
	})

	t.Run("refuses to resume a checkpoint from a one-shot mode", func(t *testing.T) {
		t.Parallel()

		checkpoints := &mock.CheckpointService{
			LoadLatestCheckpointFn: func(_ context.Context) (*meddict.Checkpoint, error) {
				return &meddict.Checkpoint{Mode: "urls"}, nil
			},
		}

		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:         context.Background(),
			Stdout:      &bytes.Buffer{},
			Stderr:      stderr,
			Checkpoints: checkpoints,
		}

		cmd := &main.CrawlCmd{Resume: true}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, meddict.EINVALID, meddict.ErrorCode(err))
		assert.Contains(t, stderr.String(), "cannot be resumed")
	})

	t.Run("reports when there is no checkpoint to resume", func(t *testing.T) {
		t.Parallel()

		checkpoints := &mock.CheckpointService{
			LoadLatestCheckpointFn: func(_ context.Context) (*meddict.Checkpoint, error) {
				return nil, meddict.Errorf(meddict.ENOTFOUND, "no checkpoint found")
			},
		}

		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:         context.Background(),
			Stdout:      &bytes.Buffer{},
			Stderr:      stderr,
			Checkpoints: checkpoints,
		}

		cmd := &main.CrawlCmd{Resume: true}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, meddict.ENOTFOUND, meddict.ErrorCode(err))
		assert.Contains(t, stderr.String(), "no checkpoint found")
	})

	t.Run("probes a docId range and crawls the hits", func(t *testing.T) {
		t.Parallel()

		missURL := meddict.EntryURLForDocID("2134747")

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				if url == missURL {
					return "", meddict.Errorf(meddict.ENOTFOUND, "page not found")
				}
				return "<html>entry</html>", nil
			},
		}

		classifier := &mock.EntryClassifier{
			IsMedicineEntryFn: func(_ string) bool { return true },
		}

		var created []*meddict.Medicine
		crawler := &crawl.Crawler{
			Fetcher:     fetcher,
			Extractor:   tylenolExtractor(),
			Medicines:   freshStore(&created),
			Classifier:  classifier,
			Concurrency: 1,
		}

		stdout := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  &bytes.Buffer{},
			Crawler: crawler,
		}

		cmd := &main.CrawlCmd{Probe: true, From: 2134746, To: 2134748}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Probe found 2 medicine entries in 2134746..2134748")
		assert.Len(t, created, 2)
		assert.Contains(t, stdout.String(), "Saved 2 new")
	})

	t.Run("probe requires both bounds when one is given", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
		}

		cmd := &main.CrawlCmd{Probe: true, From: 2134746}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, meddict.EINVALID, meddict.ErrorCode(err))
		assert.Contains(t, stderr.String(), "--from and --to")
	})

	t.Run("crawls entry URLs discovered from the sitemap", func(t *testing.T) {
		t.Parallel()

		entryURL := meddict.EntryURLForDocID("2134746")

		var gotBase string
		var gotFilter *meddict.URLFilter
		sitemaps := &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, baseURL string, filter *meddict.URLFilter) ([]string, error) {
				gotBase = baseURL
				gotFilter = filter
				return []string{entryURL}, nil
			},
		}

		var created []*meddict.Medicine
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				return "<html>entry</html>", nil
			},
		}

		crawler := &crawl.Crawler{
			Fetcher:     fetcher,
			Extractor:   tylenolExtractor(),
			Medicines:   freshStore(&created),
			Concurrency: 1,
		}

		stdout := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   &bytes.Buffer{},
			Sitemaps: sitemaps,
			Crawler:  crawler,
		}

		cmd := &main.CrawlCmd{Sitemap: true}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, meddict.SourceBaseURL, gotBase)

		// The filter passed to discovery keeps medicine entries and drops
		// everything else the sitemap lists.
		require.NotNil(t, gotFilter)
		assert.True(t, gotFilter.Match(entryURL))
		assert.False(t, gotFilter.Match("https://terms.naver.com/entry.naver?docId=999&cid=40942"))
		assert.False(t, gotFilter.Match("https://terms.naver.com/medicineSearch.naver?page=2"))

		require.Len(t, created, 1)
		assert.Contains(t, stdout.String(), "Saved 1 new")
	})

	t.Run("reports a sitemap without medicine entries", func(t *testing.T) {
		t.Parallel()

		sitemaps := &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, _ *meddict.URLFilter) ([]string, error) {
				return nil, nil
			},
		}

		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   &bytes.Buffer{},
			Stderr:   stderr,
			Sitemaps: sitemaps,
		}

		cmd := &main.CrawlCmd{Sitemap: true}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, meddict.ENOTFOUND, meddict.ErrorCode(err))
		assert.Contains(t, stderr.String(), "sitemap lists no medicine entries")
	})

	t.Run("prints failures as skip lines on stderr", func(t *testing.T) {
		t.Parallel()

		entryURL := meddict.EntryURLForDocID("2134746")

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				return "", meddict.Errorf(meddict.EUNAVAILABLE, "connection reset")
			},
		}

		crawler := &crawl.Crawler{
			Fetcher:     fetcher,
			Extractor:   tylenolExtractor(),
			Medicines:   &mock.MedicineService{},
			Concurrency: 1,
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  stderr,
			Crawler: crawler,
		}

		cmd := &main.CrawlCmd{URL: entryURL}

		err := cmd.Run(deps)

		// Failures are tallied in the summary, not returned as errors.
		require.NoError(t, err)

		stderrOutput := stderr.String()
		assert.Contains(t, stderrOutput, "skip")
		assert.Contains(t, stderrOutput, "docId=2134746")
		assert.Contains(t, stderrOutput, "connection reset")

		assert.Contains(t, stdout.String(), "Saved 0 new, updated 0, skipped 0 unchanged, failed 1")
	})
}
