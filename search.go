package meddict

import "context"

// SearchResult is one hit from the encyclopedia search API.
type SearchResult struct {
	// Title is the entry title with any match markup stripped.
	Title string `json:"title"`

	// Link is the entry URL.
	Link string `json:"link"`

	Description string `json:"description,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

// SearchService looks up encyclopedia entries by keyword.
type SearchService interface {
	// SearchMedicines returns up to limit entries matching query.
	// Results include non-medicine encyclopedia entries; callers filter
	// to medicine entry URLs.
	// Returns EUNAVAILABLE when the daily request budget is exhausted.
	SearchMedicines(ctx context.Context, query string, limit int) ([]*SearchResult, error)
}
