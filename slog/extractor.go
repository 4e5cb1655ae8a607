package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/meddict"
)

// Ensure LoggingExtractor implements meddict.Extractor.
var _ meddict.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with debug logging.
type LoggingExtractor struct {
	next   meddict.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next meddict.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the run outcome.
func (e *LoggingExtractor) Extract(rawHTML, sourceURL string) (*meddict.MedicineRecord, *meddict.ParsingReport) {
	begin := time.Now()
	rec, rep := e.next.Extract(rawHTML, sourceURL)
	url := sourceURL
	if url == "" {
		url = "(unknown)"
	}
	e.logger.Info("extract",
		"url", url,
		"extracted", len(rep.ExtractedFields),
		"completeness", rep.Completeness,
		"success", rep.ParsingSuccess,
		"duration", time.Since(begin),
	)
	return rec, rep
}
