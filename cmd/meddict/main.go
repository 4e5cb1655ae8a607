package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/meddict"
	"github.com/fwojciec/meddict/crawl"
	"github.com/fwojciec/meddict/fs"
	"github.com/fwojciec/meddict/gemini"
	"github.com/fwojciec/meddict/goquery"
	"github.com/fwojciec/meddict/htmltomarkdown"
	medhttp "github.com/fwojciec/meddict/http"
	"github.com/fwojciec/meddict/readability"
	"github.com/fwojciec/meddict/rod"
	medslog "github.com/fwojciec/meddict/slog"
	"github.com/fwojciec/meddict/sqlite"
	"github.com/fwojciec/meddict/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// DataDir holds checkpoints, page snapshots, images, and archives.
	DataDir string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	MedicineService meddict.MedicineService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	dataDir := defaultDataDir()
	return &Main{
		DBPath:  defaultDBPath(dataDir),
		DataDir: dataDir,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("meddict"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'meddict --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set MEDDICT_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	// Wire core services into dependencies
	m.MedicineService = sqlite.NewMedicineService(m.DB)
	extractor := goquery.NewExtractor()
	deps.DB = m.DB
	deps.Medicines = m.MedicineService
	deps.Extractor = extractor
	deps.Sitemaps = medhttp.NewSitemapService(nil)
	deps.Checkpoints = fs.NewCheckpointService(filepath.Join(m.DataDir, "checkpoints"))
	if id, secret := os.Getenv("NAVER_CLIENT_ID"), os.Getenv("NAVER_CLIENT_SECRET"); id != "" && secret != "" {
		deps.Search = medhttp.NewSearchService(id, secret)
	}

	// Wire command-specific dependencies based on command
	if cmd == "crawl" || cmd == "validate" {
		fetcher, err := entryFetcher(ctx, extractor, stderr)
		if err != nil {
			return err
		}
		defer fetcher.Close()
		deps.Fetcher = fetcher
	}

	if cmd == "crawl" {
		// The goquery extractor doubles as the entry classifier.
		var classifier meddict.EntryClassifier = extractor

		if cli.Crawl.Verbose {
			logger := slog.New(slog.NewTextHandler(stderr, nil))
			deps.Fetcher = rod.NewLoggingFetcher(deps.Fetcher, logger)
			deps.Extractor = medslog.NewLoggingExtractor(deps.Extractor, logger)
			deps.Sitemaps = medslog.NewLoggingSitemapService(deps.Sitemaps, logger)
			classifier = medslog.NewLoggingClassifier(classifier, logger)
			if deps.Search != nil {
				deps.Search = medslog.NewLoggingSearchService(deps.Search, logger)
			}
		}

		crawler := &crawl.Crawler{
			Fetcher:          deps.Fetcher,
			Extractor:        deps.Extractor,
			Links:            goquery.NewLinkExtractor(),
			Medicines:        m.MedicineService,
			Search:           deps.Search,
			Checkpoints:      deps.Checkpoints,
			Snapshots:        fs.NewSnapshotStore(filepath.Join(m.DataDir, "snapshots")),
			Classifier:       classifier,
			RateLimiter:      crawl.NewDomainLimiter(crawl.DefaultRequestsPerSecond),
			Concurrency:      cli.Crawl.Concurrency,
			FollowReferences: cli.Crawl.Follow,
		}
		if cli.Crawl.Images {
			crawler.Images = medhttp.NewImageDownloader(filepath.Join(m.DataDir, "images"))
		}
		deps.Crawler = crawler
	}

	if cmd == "archive" {
		fetcher := pageFetcher(stderr)
		defer fetcher.Close()
		deps.Fetcher = fetcher
		if cli.Archive.Readability {
			deps.Contents = readability.NewExtractor()
		} else {
			deps.Contents = trafilatura.NewExtractor()
		}
		deps.Converter = htmltomarkdown.NewConverter()
		deps.Archive = fs.NewArchiveWriter(filepath.Join(m.DataDir, "archive"))
	}

	if cmd == "stats" && cli.Stats.Tokens {
		tokenCounter, err := gemini.NewTokenCounter(tokenizerModel)
		if err != nil {
			return fmt.Errorf("failed to create token counter: %w", err)
		}
		deps.Tokens = tokenCounter
	}

	if cmd == "ask" {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}

		deps.Asker = gemini.NewAsker(client, m.MedicineService)
	}

	return kongCtx.Run(deps)
}

// tokenizerModel is the model whose tokenizer sizes the formatted store.
const tokenizerModel = "gemini-2.5-flash"

// entryFetcher picks the cheapest fetcher that can see entry content: the
// plain HTTP client when the probe page extracts cleanly through it, the
// headless browser otherwise.
func entryFetcher(ctx context.Context, extractor meddict.Extractor, stderr io.Writer) (meddict.Fetcher, error) {
	static := medhttp.NewFetcher(medhttp.WithReferer(meddict.SourceBaseURL + "/"))
	rendered, err := rod.NewFetcher()
	if err != nil {
		fmt.Fprintln(stderr, "Hint: install Chrome or Chromium to render pages that block plain HTTP")
		return static, nil
	}

	probeURL := meddict.EntryURLForDocID(strconv.Itoa(crawl.DefaultProbeDocID))
	picked := crawl.ProbeFetcher(ctx, probeURL, static, rendered, extractor)
	if picked != rendered {
		_ = rendered.Close()
	}
	return picked, nil
}

// pageFetcher returns the rendered-page fetcher when a browser is
// available, falling back to plain HTTP.
func pageFetcher(stderr io.Writer) meddict.Fetcher {
	rendered, err := rod.NewFetcher()
	if err != nil {
		fmt.Fprintln(stderr, "Hint: install Chrome or Chromium to render pages that block plain HTTP")
		return medhttp.NewFetcher()
	}
	return rendered
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".meddict"
	}
	dir := filepath.Join(home, ".meddict")
	_ = os.MkdirAll(dir, 0755)
	return dir
}

func defaultDBPath(dataDir string) string {
	if path := os.Getenv("MEDDICT_DB"); path != "" {
		return path
	}
	return filepath.Join(dataDir, "meddict.db")
}
