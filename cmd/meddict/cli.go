package main

import (
	"context"
	"io"

	"github.com/fwojciec/meddict"
	"github.com/fwojciec/meddict/crawl"
	"github.com/fwojciec/meddict/fs"
	"github.com/fwojciec/meddict/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx         context.Context
	Stdout      io.Writer
	Stderr      io.Writer
	DB          *sqlite.DB
	Medicines   meddict.MedicineService
	Search      meddict.SearchService
	Sitemaps    meddict.SitemapService
	Checkpoints meddict.CheckpointService
	Fetcher     meddict.Fetcher
	Extractor   meddict.Extractor
	Contents    meddict.ContentExtractor
	Converter   meddict.Converter
	Archive     *fs.ArchiveWriter
	Crawler     *crawl.Crawler
	Asker       meddict.Asker
	Tokens      meddict.TokenCounter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Crawl    CrawlCmd    `cmd:"" help:"Crawl medicine entries into the store"`
	Stats    StatsCmd    `cmd:"" help:"Show store statistics"`
	Export   ExportCmd   `cmd:"" help:"Export stored medicines to a file"`
	Serve    ServeCmd    `cmd:"" help:"Serve the read-only medicine API"`
	Validate ValidateCmd `cmd:"" help:"Re-extract a stored entry and compare it against the store"`
	Search   SearchCmd   `cmd:"" help:"Search the encyclopedia by keyword"`
	Archive  ArchiveCmd  `cmd:"" help:"Save a page as a markdown archive"`
	Ask      AskCmd      `cmd:"" help:"Ask a question about stored medicines"`
}

// CrawlCmd is the "crawl" subcommand. Without mode flags it walks the
// medicine listing pages.
type CrawlCmd struct {
	Keyword     string `short:"k" help:"Crawl entry pages found by keyword search"`
	URL         string `short:"u" help:"Crawl a single entry URL"`
	Probe       bool   `help:"Probe a docId range for entries instead of walking the listing"`
	From        int64  `help:"First docId of the probe range"`
	To          int64  `help:"Last docId of the probe range"`
	Sitemap     bool   `help:"Discover entry URLs from the sitemap instead of the listing"`
	Resume      bool   `short:"r" help:"Resume from the latest checkpoint"`
	StartPage   int    `default:"1" help:"Listing page to start from"`
	Pages       int    `short:"p" help:"Listing pages to walk (0 walks to the last page)"`
	Limit       int    `default:"30" help:"Search hits to consider in keyword mode"`
	Follow      bool   `short:"f" help:"Also crawl medicine entries referenced by crawled records"`
	Images      bool   `help:"Download entry images"`
	Concurrency int    `short:"c" default:"4" help:"Concurrent fetch limit"`
	Verbose     bool   `short:"v" help:"Log fetches and extractions to stderr"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct {
	Tokens bool `help:"Estimate the token size of the formatted store"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Format string `default:"json" enum:"json,xlsx" help:"Export format"`
	Out    string `short:"o" help:"Output path (defaults to medicines.json or medicines.xlsx)"`
	Split  bool   `help:"Write one JSON file per medicine into the output directory"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:":8080" help:"Listen address"`
}

// ValidateCmd is the "validate" subcommand.
type ValidateCmd struct {
	URL string `arg:"" help:"Entry URL to re-extract and validate"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Keyword string `arg:"" help:"Keyword to search for"`
	Limit   int    `default:"10" help:"Maximum hits to show"`
}

// ArchiveCmd is the "archive" subcommand.
type ArchiveCmd struct {
	URL         string `arg:"" help:"Page URL to archive"`
	Readability bool   `help:"Extract content with readability instead of trafilatura"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Name     string `arg:"" help:"Medicine name, Korean or English"`
	Question string `arg:"" help:"Question to ask about the medicine"`
}
