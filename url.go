package meddict

import (
	"net/url"
	"strconv"
	"strings"
)

// Encyclopedia source constants. Entry pages live under a single host and
// the medicine category is identified by a fixed category id.
const (
	// SourceBaseURL is the encyclopedia host, used to resolve relative
	// media and entry URLs.
	SourceBaseURL = "https://terms.naver.com"

	// MedicineCategoryID identifies the medicine dictionary category.
	MedicineCategoryID = "51000"
)

// EntryURLForDocID returns the canonical entry URL for a document id.
func EntryURLForDocID(docID string) string {
	return SourceBaseURL + "/entry.naver?docId=" + docID +
		"&cid=" + MedicineCategoryID + "&categoryId=" + MedicineCategoryID
}

// ListingURLForPage returns the URL of one page of the medicine listing.
func ListingURLForPage(page int) string {
	return SourceBaseURL + "/medicineSearch.naver?page=" + strconv.Itoa(page)
}

// IsEntryURL reports whether raw points at a medicine dictionary entry:
// an entry.naver path carrying the medicine category id.
func IsEntryURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Host != "" && !strings.HasSuffix(u.Host, "terms.naver.com") {
		return false
	}
	if !strings.Contains(u.Path, "entry.naver") {
		return false
	}
	q := u.Query()
	if q.Get("docId") == "" {
		return false
	}
	return q.Get("cid") == MedicineCategoryID || q.Get("categoryId") == MedicineCategoryID
}

// DocIDFromURL extracts the document id from an entry URL.
// Returns the empty string if raw is not an entry URL.
func DocIDFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return u.Query().Get("docId")
}

// NormalizeEntryURL rebuilds an entry URL into its canonical form so that
// deduplication treats link variants (fragments, extra query parameters,
// protocol-relative links) as the same entry. Non-entry URLs are returned
// trimmed but otherwise unchanged.
func NormalizeEntryURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !IsEntryURL(raw) {
		return raw
	}
	return EntryURLForDocID(DocIDFromURL(raw))
}
