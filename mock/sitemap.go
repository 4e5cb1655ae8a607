package mock

import (
	"context"

	"github.com/fwojciec/meddict"
)

var _ meddict.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of meddict.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *meddict.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *meddict.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
