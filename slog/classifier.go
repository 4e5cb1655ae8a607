package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/meddict"
)

// Ensure LoggingClassifier implements meddict.EntryClassifier.
var _ meddict.EntryClassifier = (*LoggingClassifier)(nil)

// LoggingClassifier wraps an EntryClassifier with debug logging for
// dictionary classification.
type LoggingClassifier struct {
	next   meddict.EntryClassifier
	logger *slog.Logger
}

// NewLoggingClassifier creates a new LoggingClassifier.
func NewLoggingClassifier(next meddict.EntryClassifier, logger *slog.Logger) *LoggingClassifier {
	return &LoggingClassifier{next: next, logger: logger}
}

// IsMedicineEntry classifies the page, logs the verdict, and returns it.
func (c *LoggingClassifier) IsMedicineEntry(rawHTML string) bool {
	begin := time.Now()
	medicine := c.next.IsMedicineEntry(rawHTML)
	c.logger.Info("entry classification",
		"medicine", medicine,
		"duration", time.Since(begin),
	)
	return medicine
}
