package meddict

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	tagRe        = regexp.MustCompile(`<[^>]*>`)
)

// CleanText collapses all whitespace runs (including newlines) to single
// spaces and trims the result. Extracted field values are always stored in
// this canonical form.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// StripTags removes markup tags from s and canonicalizes the remaining
// text with CleanText. Tags are deleted outright, not replaced with
// spaces: search result titles mark matches inside words (<b>타이레놀</b>정)
// and the word must survive intact. Used for values sourced from places
// that may carry inline markup.
func StripTags(s string) string {
	return CleanText(tagRe.ReplaceAllString(s, ""))
}
