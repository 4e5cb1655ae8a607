package crawl_test

import (
	"context"
	"testing"

	"github.com/fwojciec/meddict"
	"github.com/fwojciec/meddict/crawl"
	"github.com/fwojciec/meddict/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tylenolRecord returns a record the way the extractor would produce it for
// a healthy entry page.
func tylenolRecord() *meddict.MedicineRecord {
	return &meddict.MedicineRecord{
		KoreanName:  "타이레놀정500밀리그람",
		EnglishName: "Tylenol Tab. 500mg",
		Company:     "한국존슨앤드존슨판매",
		Efficacy:    "감기로 인한 발열 및 동통, 두통, 신경통",
	}
}

// extractorFor returns an extractor that yields a copy of rec for every
// page, with the report finalized the way a real run would leave it.
func extractorFor(rec *meddict.MedicineRecord) *mock.Extractor {
	return &mock.Extractor{
		ExtractFn: func(_, sourceURL string) (*meddict.MedicineRecord, *meddict.ParsingReport) {
			clone := *rec
			rep := meddict.NewParsingReport(sourceURL)
			rep.ExtractedFields = clone.Fields()
			rep.Finalize()
			return &clone, rep
		},
	}
}

// emptyExtractor returns an extractor that extracts nothing, as it would on
// a bot-shell page or an unknown layout.
func emptyExtractor() *mock.Extractor {
	return &mock.Extractor{
		ExtractFn: func(_, sourceURL string) (*meddict.MedicineRecord, *meddict.ParsingReport) {
			rep := meddict.NewParsingReport(sourceURL)
			rep.Finalize()
			return &meddict.MedicineRecord{}, rep
		},
	}
}

// emptyStore returns a medicine service for a store with no entries that
// records what gets created.
func emptyStore(created *[]*meddict.Medicine) *mock.MedicineService {
	return &mock.MedicineService{
		FindMedicineByURLFn: func(_ context.Context, url string) (*meddict.Medicine, error) {
			return nil, meddict.Errorf(meddict.ENOTFOUND, "medicine not found")
		},
		CreateMedicineFn: func(_ context.Context, m *meddict.Medicine) error {
			*created = append(*created, m)
			return nil
		},
	}
}

func TestCrawler_CrawlURLs(t *testing.T) {
	t.Parallel()

	t.Run("saves a new entry", func(t *testing.T) {
		t.Parallel()

		var created []*meddict.Medicine
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					return "<html><h2 class=\"headword\">타이레놀정500밀리그람</h2></html>", nil
				},
			},
			Extractor:   extractorFor(tylenolRecord()),
			Medicines:   emptyStore(&created),
			Concurrency: 1,
		}

		result, err := c.CrawlURLs(context.Background(), []string{meddict.EntryURLForDocID("2134746")}, nil)

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, 1, result.Saved)
		assert.Equal(t, 0, result.Failed)
		assert.Empty(t, result.Errors)

		require.Len(t, created, 1)
		m := created[0]
		assert.Equal(t, meddict.EntryURLForDocID("2134746"), m.URL)
		assert.Equal(t, "2134746", m.DocID)
		assert.Equal(t, "타이레놀정500밀리그람", m.Record.KoreanName)
		assert.NotEmpty(t, m.RawHTML)
		assert.NotEmpty(t, m.DataHash)
		assert.InDelta(t, 4.0/float64(meddict.SchemaSize()), m.Completeness, 0.001)
	})

	t.Run("normalizes and deduplicates input URLs", func(t *testing.T) {
		t.Parallel()

		fetched := 0
		var created []*meddict.Medicine
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					fetched++
					assert.Equal(t, meddict.EntryURLForDocID("2134746"), url)
					return "<html></html>", nil
				},
			},
			Extractor:   extractorFor(tylenolRecord()),
			Medicines:   emptyStore(&created),
			Concurrency: 1,
		}

		urls := []string{
			"https://terms.naver.com/entry.naver?docId=2134746&cid=51000&categoryId=51000&where=nexearch",
			meddict.EntryURLForDocID("2134746") + "#TABLE_OF_CONTENT1",
		}
		result, err := c.CrawlURLs(context.Background(), urls, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
		assert.Equal(t, 1, fetched, "link variants of one entry should be fetched once")
	})

	t.Run("skips an entry whose content has not changed", func(t *testing.T) {
		t.Parallel()

		rec := tylenolRecord()
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					return "<html></html>", nil
				},
			},
			Extractor: extractorFor(rec),
			Medicines: &mock.MedicineService{
				FindMedicineByURLFn: func(_ context.Context, url string) (*meddict.Medicine, error) {
					return &meddict.Medicine{
						ID:       "existing-id",
						URL:      url,
						DataHash: crawl.RecordHash(rec),
					}, nil
				},
			},
			Concurrency: 1,
		}

		result, err := c.CrawlURLs(context.Background(), []string{meddict.EntryURLForDocID("2134746")}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 0, result.Saved)
		assert.Equal(t, 0, result.Updated)
	})

	t.Run("updates an entry whose content changed", func(t *testing.T) {
		t.Parallel()

		var updatedID string
		var captured meddict.MedicineUpdate
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					return "<html>new</html>", nil
				},
			},
			Extractor: extractorFor(tylenolRecord()),
			Medicines: &mock.MedicineService{
				FindMedicineByURLFn: func(_ context.Context, url string) (*meddict.Medicine, error) {
					return &meddict.Medicine{
						ID:       "existing-id",
						URL:      url,
						DataHash: "stale-hash",
					}, nil
				},
				UpdateMedicineFn: func(_ context.Context, id string, upd meddict.MedicineUpdate) (*meddict.Medicine, error) {
					updatedID = id
					captured = upd
					return &meddict.Medicine{ID: id}, nil
				},
			},
			Concurrency: 1,
		}

		result, err := c.CrawlURLs(context.Background(), []string{meddict.EntryURLForDocID("2134746")}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Updated)
		assert.Equal(t, 0, result.Saved)

		assert.Equal(t, "existing-id", updatedID)
		require.NotNil(t, captured.Record)
		assert.Equal(t, "타이레놀정500밀리그람", captured.Record.KoreanName)
		require.NotNil(t, captured.DataHash)
		assert.Equal(t, crawl.RecordHash(tylenolRecord()), *captured.DataHash)
		require.NotNil(t, captured.RawHTML)
		assert.Equal(t, "<html>new</html>", *captured.RawHTML)
		require.NotNil(t, captured.Completeness)
	})

	t.Run("counts failed URLs when fetch fails", func(t *testing.T) {
		t.Parallel()

		var created []*meddict.Medicine
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					if meddict.DocIDFromURL(url) == "2134746" {
						return "", meddict.Errorf(meddict.ENOTFOUND, "entry not found")
					}
					return "<html></html>", nil
				},
			},
			Extractor:   extractorFor(tylenolRecord()),
			Medicines:   emptyStore(&created),
			Concurrency: 1,
		}

		urls := []string{
			meddict.EntryURLForDocID("2134746"),
			meddict.EntryURLForDocID("2134747"),
		}
		result, err := c.CrawlURLs(context.Background(), urls, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "2134746")
		assert.Contains(t, result.Errors[0], "entry not found")
	})

	t.Run("waits on the rate limiter with the entry host", func(t *testing.T) {
		t.Parallel()

		var domains []string
		var created []*meddict.Medicine
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					return "<html></html>", nil
				},
			},
			Extractor: extractorFor(tylenolRecord()),
			Medicines: emptyStore(&created),
			RateLimiter: &mock.DomainLimiter{
				WaitFn: func(_ context.Context, domain string) error {
					domains = append(domains, domain)
					return nil
				},
			},
			Concurrency: 1,
		}

		_, err := c.CrawlURLs(context.Background(), []string{meddict.EntryURLForDocID("2134746")}, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"terms.naver.com"}, domains)
	})

	t.Run("downloads the entry image for new entries", func(t *testing.T) {
		t.Parallel()

		rec := tylenolRecord()
		rec.ImageURL = "https://dbscthumb-phinf.pstatic.net/tylenol.jpg"

		var created []*meddict.Medicine
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					return "<html></html>", nil
				},
			},
			Extractor: extractorFor(rec),
			Medicines: emptyStore(&created),
			Images: &mock.ImageDownloader{
				DownloadImageFn: func(_ context.Context, imageURL string) (string, error) {
					assert.Equal(t, rec.ImageURL, imageURL)
					return "data/images/abc123.jpg", nil
				},
			},
			Concurrency: 1,
		}

		result, err := c.CrawlURLs(context.Background(), []string{meddict.EntryURLForDocID("2134746")}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
		require.Len(t, created, 1)
		assert.Equal(t, "data/images/abc123.jpg", created[0].ImagePath)
	})

	t.Run("keeps the entry when the image download fails", func(t *testing.T) {
		t.Parallel()

		rec := tylenolRecord()
		rec.ImageURL = "https://dbscthumb-phinf.pstatic.net/tylenol.jpg"

		var created []*meddict.Medicine
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					return "<html></html>", nil
				},
			},
			Extractor: extractorFor(rec),
			Medicines: emptyStore(&created),
			Images: &mock.ImageDownloader{
				DownloadImageFn: func(_ context.Context, _ string) (string, error) {
					return "", meddict.Errorf(meddict.EUNAVAILABLE, "image host unreachable")
				},
			},
			Concurrency: 1,
		}

		result, err := c.CrawlURLs(context.Background(), []string{meddict.EntryURLForDocID("2134746")}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
		require.Len(t, created, 1)
		assert.Empty(t, created[0].ImagePath)
	})

	t.Run("archives a snapshot when extraction yields nothing", func(t *testing.T) {
		t.Parallel()

		var snapURL, snapHTML string
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					return "<html><body>로딩중...</body></html>", nil
				},
			},
			Extractor: emptyExtractor(),
			Medicines: &mock.MedicineService{},
			Snapshots: &mock.SnapshotStore{
				SaveSnapshotFn: func(url, html string) (string, error) {
					snapURL, snapHTML = url, html
					return "data/debug/abc123.html", nil
				},
			},
			Concurrency: 1,
		}

		result, err := c.CrawlURLs(context.Background(), []string{meddict.EntryURLForDocID("2134746")}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, 0, result.Saved)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "data/debug/abc123.html")

		assert.Equal(t, meddict.EntryURLForDocID("2134746"), snapURL)
		assert.Contains(t, snapHTML, "로딩중")
	})

	t.Run("saves checkpoints at the configured cadence", func(t *testing.T) {
		t.Parallel()

		var checkpoints []*meddict.Checkpoint
		var created []*meddict.Medicine
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					return "<html></html>", nil
				},
			},
			Extractor: extractorFor(tylenolRecord()),
			Medicines: emptyStore(&created),
			Checkpoints: &mock.CheckpointService{
				SaveCheckpointFn: func(_ context.Context, cp *meddict.Checkpoint) error {
					checkpoints = append(checkpoints, cp)
					return nil
				},
			},
			Concurrency:     1,
			CheckpointEvery: 2,
		}

		urls := []string{
			meddict.EntryURLForDocID("2134746"),
			meddict.EntryURLForDocID("2134747"),
			meddict.EntryURLForDocID("2134748"),
		}
		result, err := c.CrawlURLs(context.Background(), urls, nil)

		require.NoError(t, err)
		assert.Equal(t, 3, result.Saved)

		// One cadence checkpoint after the second entry plus the final one.
		require.Len(t, checkpoints, 2)
		assert.Equal(t, "urls", checkpoints[0].Mode)
		assert.Equal(t, 2, checkpoints[0].Processed)
		last := checkpoints[len(checkpoints)-1]
		assert.Equal(t, 3, last.Processed)
		assert.Equal(t, 3, last.Saved)
		assert.False(t, last.CreatedAt.IsZero())
	})

	t.Run("emits progress events", func(t *testing.T) {
		t.Parallel()

		var created []*meddict.Medicine
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					return "<html></html>", nil
				},
			},
			Extractor:   extractorFor(tylenolRecord()),
			Medicines:   emptyStore(&created),
			Concurrency: 1,
		}

		var events []crawl.ProgressEvent
		progress := func(e crawl.ProgressEvent) {
			events = append(events, e)
		}

		_, err := c.CrawlURLs(context.Background(), []string{meddict.EntryURLForDocID("2134746")}, progress)

		require.NoError(t, err)
		require.Len(t, events, 3) // Started, Completed, Finished

		assert.Equal(t, crawl.ProgressStarted, events[0].Type)
		assert.Equal(t, 1, events[0].Total)

		assert.Equal(t, crawl.ProgressCompleted, events[1].Type)
		assert.Equal(t, 1, events[1].Completed)
		assert.Equal(t, meddict.EntryURLForDocID("2134746"), events[1].URL)

		assert.Equal(t, crawl.ProgressFinished, events[2].Type)
		assert.Equal(t, 1, events[2].Completed)
	})

	t.Run("follows entry references when enabled", func(t *testing.T) {
		t.Parallel()

		rec := tylenolRecord()
		rec.ReferenceURLs = []string{
			meddict.EntryURLForDocID("2134747"),
			"https://terms.naver.com/entry.naver?docId=999&cid=40942", // another dictionary
			"https://www.health.kr/drug/tylenol",                      // off-site
		}

		var created []*meddict.Medicine
		var fetchedURLs []string
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					fetchedURLs = append(fetchedURLs, url)
					return "<html></html>", nil
				},
			},
			Extractor: &mock.Extractor{
				ExtractFn: func(_, sourceURL string) (*meddict.MedicineRecord, *meddict.ParsingReport) {
					clone := *tylenolRecord()
					// Only the seed entry links onward, or the walk would
					// bounce between the two entries forever.
					if meddict.DocIDFromURL(sourceURL) == "2134746" {
						clone.ReferenceURLs = rec.ReferenceURLs
					}
					rep := meddict.NewParsingReport(sourceURL)
					rep.ExtractedFields = clone.Fields()
					rep.Finalize()
					return &clone, rep
				},
			},
			Medicines:        emptyStore(&created),
			Concurrency:      1,
			FollowReferences: true,
		}

		result, err := c.CrawlURLs(context.Background(), []string{meddict.EntryURLForDocID("2134746")}, nil)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Saved, "seed plus the referenced medicine entry")
		assert.Contains(t, fetchedURLs, meddict.EntryURLForDocID("2134747"))
		for _, u := range fetchedURLs {
			assert.NotContains(t, u, "cid=40942", "non-medicine references should not be crawled")
			assert.NotContains(t, u, "health.kr", "off-site references should not be crawled")
		}
	})

	t.Run("ignores references when following is disabled", func(t *testing.T) {
		t.Parallel()

		rec := tylenolRecord()
		rec.ReferenceURLs = []string{meddict.EntryURLForDocID("2134747")}

		var created []*meddict.Medicine
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					return "<html></html>", nil
				},
			},
			Extractor:   extractorFor(rec),
			Medicines:   emptyStore(&created),
			Concurrency: 1,
		}

		result, err := c.CrawlURLs(context.Background(), []string{meddict.EntryURLForDocID("2134746")}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
	})

	t.Run("falls back to the search index for the Korean name", func(t *testing.T) {
		t.Parallel()

		rec := &meddict.MedicineRecord{
			EnglishName: "Tylenol Tab. 500mg",
			Company:     "한국존슨앤드존슨판매",
		}

		var created []*meddict.Medicine
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					return "<html></html>", nil
				},
			},
			Extractor: extractorFor(rec),
			Medicines: emptyStore(&created),
			Search: &mock.SearchService{
				SearchMedicinesFn: func(_ context.Context, query string, _ int) ([]*meddict.SearchResult, error) {
					assert.Equal(t, "Tylenol Tab. 500mg", query)
					return []*meddict.SearchResult{
						{Title: "어떤다른약", Link: meddict.EntryURLForDocID("999")},
						{Title: "<b>타이레놀</b>정500밀리그람", Link: meddict.EntryURLForDocID("2134746")},
					}, nil
				},
			},
			Concurrency: 1,
		}

		result, err := c.CrawlURLs(context.Background(), []string{meddict.EntryURLForDocID("2134746")}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
		require.Len(t, created, 1)
		assert.Equal(t, "타이레놀정500밀리그람", created[0].Record.KoreanName,
			"hit title should fill the Korean name with markup stripped")
	})
}

func TestCrawler_CrawlKeyword(t *testing.T) {
	t.Parallel()

	t.Run("requires a search service", func(t *testing.T) {
		t.Parallel()

		c := &crawl.Crawler{}

		_, err := c.CrawlKeyword(context.Background(), "타이레놀", 10, nil)

		require.Error(t, err)
		assert.Equal(t, meddict.EINVALID, meddict.ErrorCode(err))
	})

	t.Run("propagates search errors", func(t *testing.T) {
		t.Parallel()

		c := &crawl.Crawler{
			Search: &mock.SearchService{
				SearchMedicinesFn: func(_ context.Context, _ string, _ int) ([]*meddict.SearchResult, error) {
					return nil, meddict.Errorf(meddict.EUNAVAILABLE, "daily request limit reached")
				},
			},
		}

		_, err := c.CrawlKeyword(context.Background(), "타이레놀", 10, nil)

		require.Error(t, err)
		assert.Equal(t, meddict.EUNAVAILABLE, meddict.ErrorCode(err))
	})

	t.Run("crawls entry hits and applies hit titles", func(t *testing.T) {
		t.Parallel()

		var created []*meddict.Medicine
		var checkpoints []*meddict.Checkpoint
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					return "<html></html>", nil
				},
			},
			Extractor: extractorFor(&meddict.MedicineRecord{
				EnglishName: "Tylenol Tab. 500mg",
			}),
			Medicines: emptyStore(&created),
			Search: &mock.SearchService{
				SearchMedicinesFn: func(_ context.Context, query string, limit int) ([]*meddict.SearchResult, error) {
					assert.Equal(t, "타이레놀", query)
					assert.Equal(t, 10, limit)
					return []*meddict.SearchResult{
						{Title: "<b>타이레놀</b>정500밀리그람", Link: meddict.EntryURLForDocID("2134746")},
						{Title: "타이레놀 복용법", Link: "https://blog.naver.com/health/223"},
					}, nil
				},
			},
			Checkpoints: &mock.CheckpointService{
				SaveCheckpointFn: func(_ context.Context, cp *meddict.Checkpoint) error {
					checkpoints = append(checkpoints, cp)
					return nil
				},
			},
			Concurrency: 1,
		}

		result, err := c.CrawlKeyword(context.Background(), "타이레놀", 10, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved, "only the entry hit should be crawled")

		require.Len(t, created, 1)
		assert.Equal(t, "타이레놀정500밀리그람", created[0].Record.KoreanName)

		require.NotEmpty(t, checkpoints)
		last := checkpoints[len(checkpoints)-1]
		assert.Equal(t, "keyword", last.Mode)
		assert.Equal(t, "타이레놀", last.Keyword)
		assert.Equal(t, 1, last.Processed)
	})
}

func TestProgressType_Constants(t *testing.T) {
	t.Parallel()

	// The iota order is part of the package API.
	assert.Equal(t, crawl.ProgressStarted, crawl.ProgressType(0))
	assert.Equal(t, crawl.ProgressCompleted, crawl.ProgressType(1))
	assert.Equal(t, crawl.ProgressFailed, crawl.ProgressType(2))
	assert.Equal(t, crawl.ProgressFinished, crawl.ProgressType(3))
}
