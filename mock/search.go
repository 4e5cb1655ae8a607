package mock

import (
	"context"

	"github.com/fwojciec/meddict"
)

var _ meddict.SearchService = (*SearchService)(nil)

// SearchService is a mock implementation of meddict.SearchService.
type SearchService struct {
	SearchMedicinesFn func(ctx context.Context, query string, limit int) ([]*meddict.SearchResult, error)
}

func (s *SearchService) SearchMedicines(ctx context.Context, query string, limit int) ([]*meddict.SearchResult, error) {
	return s.SearchMedicinesFn(ctx, query, limit)
}
