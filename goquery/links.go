package goquery

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/meddict"
)

var _ meddict.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor finds entry links on listing and search-result pages.
// Like the record extractor it is stateless and safe for concurrent use.
type LinkExtractor struct {
	// selectors are tried in order; the first one yielding at least one
	// entry link wins, so a layout change degrades to the next pattern
	// instead of mixing results.
	selectors []string
}

// NewLinkExtractor returns a link extractor for the known listing layouts.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{
		selectors: []string{
			"ul.content_list a[href]",
			".search_result a[href]",
			"ul.lst_medicine a[href]",
			"a[href]",
		},
	}
}

// ExtractEntryLinks returns the canonical entry URLs found in rawHTML, in
// document order with duplicates removed. Non-entry links are skipped.
// An unparsable or empty document yields an empty slice, never an error.
func (e *LinkExtractor) ExtractEntryLinks(rawHTML, pageURL string) []string {
	var out []string
	if strings.TrimSpace(rawHTML) == "" {
		return out
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return out
	}

	base := baseURL(pageURL)
	seen := make(map[string]bool)
	for _, sel := range e.selectors {
		doc.Find(sel).Each(func(_ int, a *goquery.Selection) {
			link := entryLink(a, base)
			if link == "" || seen[link] {
				return
			}
			seen[link] = true
			out = append(out, link)
		})
		if len(out) > 0 {
			break
		}
	}
	return out
}

// NextListingPage returns the page number of the listing's "next" link, or
// 0 when the current page is the last. Paginators carry the target page in
// the link's query string.
func (e *LinkExtractor) NextListingPage(rawHTML string) int {
	if strings.TrimSpace(rawHTML) == "" {
		return 0
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return 0
	}

	next := 0
	doc.Find(".paginate a[href], .pagination a[href]").Each(func(_ int, a *goquery.Selection) {
		label := meddict.CleanText(a.Text())
		if label != "다음" && !strings.EqualFold(label, "next") && !a.HasClass("next") {
			return
		}
		if page := pageParam(a.AttrOr("href", "")); page > 0 {
			next = page
		}
	})
	return next
}

// entryLink resolves one anchor and returns its canonical entry URL, or ""
// when the anchor does not point at a medicine entry.
func entryLink(a *goquery.Selection, base *url.URL) string {
	href := absoluteURL(base, a.AttrOr("href", ""))
	if href == "" || !meddict.IsEntryURL(href) {
		return ""
	}
	return meddict.NormalizeEntryURL(href)
}

// pageParam reads the page query parameter from a listing href.
func pageParam(href string) int {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil || n < 1 {
		return 0
	}
	return n
}
