package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/fwojciec/meddict"
)

// DefaultSearchBaseURL is the Naver open API host.
const DefaultSearchBaseURL = "https://openapi.naver.com"

// DefaultDailyLimit is the Naver open API request quota per credential
// per day.
const DefaultDailyLimit = 25000

// searchSuffix biases encyclopedia search toward medicine entries.
const searchSuffix = " 의약품"

// Ensure SearchService implements meddict.SearchService at compile time.
var _ meddict.SearchService = (*SearchService)(nil)

// SearchService queries the Naver open API encyclopedia endpoint.
// It tracks its own request count against the daily quota so a runaway
// crawl fails fast instead of burning the credential.
type SearchService struct {
	client       *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	dailyLimit   int

	mu    sync.Mutex
	day   string
	calls int
}

// SearchOption configures a SearchService.
type SearchOption func(*SearchService)

// WithSearchBaseURL overrides the API host. Used in tests.
func WithSearchBaseURL(baseURL string) SearchOption {
	return func(s *SearchService) {
		s.baseURL = baseURL
	}
}

// WithDailyLimit overrides the in-process daily request budget.
func WithDailyLimit(limit int) SearchOption {
	return func(s *SearchService) {
		s.dailyLimit = limit
	}
}

// NewSearchService creates a SearchService with the given API credentials.
func NewSearchService(clientID, clientSecret string, opts ...SearchOption) *SearchService {
	s := &SearchService{
		client:       &http.Client{Timeout: DefaultFetchTimeout},
		baseURL:      DefaultSearchBaseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		dailyLimit:   DefaultDailyLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// searchResponse is the encyclopedia endpoint's result envelope.
type searchResponse struct {
	Total int `json:"total"`
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Description string `json:"description"`
		Thumbnail   string `json:"thumbnail"`
	} `json:"items"`
}

// SearchMedicines searches the encyclopedia for medicine entries matching
// query. Returns at most limit results (the API caps a page at 100).
// Returns EUNAVAILABLE once the daily request budget is exhausted.
func (s *SearchService) SearchMedicines(ctx context.Context, query string, limit int) ([]*meddict.SearchResult, error) {
	if s.clientID == "" || s.clientSecret == "" {
		return nil, meddict.Errorf(meddict.EINVALID, "search API credentials required")
	}
	if query == "" {
		return nil, meddict.Errorf(meddict.EINVALID, "search query required")
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	if err := s.reserveCall(); err != nil {
		return nil, err
	}

	reqURL := s.baseURL + "/v1/search/encyc.json?query=" +
		url.QueryEscape(query+searchSuffix) +
		"&display=" + strconv.Itoa(limit) + "&start=1"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Naver-Client-Id", s.clientID)
	req.Header.Set("X-Naver-Client-Secret", s.clientSecret)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, meddict.Errorf(meddict.EINVALID, "search API rejected credentials (HTTP %d)", resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, meddict.Errorf(meddict.EUNAVAILABLE, "search API unavailable (HTTP %d)", resp.StatusCode)
	default:
		return nil, meddict.Errorf(meddict.EINTERNAL, "search API returned HTTP %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, meddict.Errorf(meddict.EINTERNAL, "decode search response: %v", err)
	}

	results := make([]*meddict.SearchResult, 0, len(body.Items))
	for _, item := range body.Items {
		results = append(results, &meddict.SearchResult{
			Title:       meddict.StripTags(item.Title),
			Link:        item.Link,
			Description: meddict.StripTags(item.Description),
			Thumbnail:   item.Thumbnail,
		})
	}

	return results, nil
}

// reserveCall counts one request against today's budget.
func (s *SearchService) reserveCall() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := time.Now().UTC().Format("2006-01-02")
	if s.day != today {
		s.day = today
		s.calls = 0
	}
	if s.calls >= s.dailyLimit {
		return meddict.Errorf(meddict.EUNAVAILABLE, "daily search API budget (%d) exhausted", s.dailyLimit)
	}
	s.calls++
	return nil
}
