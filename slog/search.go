package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/meddict"
)

// Ensure LoggingSearchService implements meddict.SearchService.
var _ meddict.SearchService = (*LoggingSearchService)(nil)

// LoggingSearchService wraps a SearchService with debug logging.
type LoggingSearchService struct {
	next   meddict.SearchService
	logger *slog.Logger
}

// NewLoggingSearchService creates a new LoggingSearchService.
func NewLoggingSearchService(next meddict.SearchService, logger *slog.Logger) *LoggingSearchService {
	return &LoggingSearchService{next: next, logger: logger}
}

// SearchMedicines delegates to the wrapped service and logs the operation.
func (s *LoggingSearchService) SearchMedicines(ctx context.Context, query string, limit int) (results []*meddict.SearchResult, err error) {
	defer func(begin time.Time) {
		s.logger.Info("search",
			"query", query,
			"count", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SearchMedicines(ctx, query, limit)
}
