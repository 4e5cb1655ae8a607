// Package readability extracts main page content using go-readability.
// It is the selectable alternative to the trafilatura extractor for the
// archive pipeline.
package readability

import (
	"strings"

	"github.com/fwojciec/meddict"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements meddict.ContentExtractor at compile time.
var _ meddict.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractContent processes raw HTML and returns the main content with
// boilerplate removed.
func (e *Extractor) ExtractContent(rawHTML string) (*meddict.Content, error) {
	if rawHTML == "" {
		return nil, meddict.Errorf(meddict.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	return &meddict.Content{
		Title: article.Title,
		HTML:  article.Content,
	}, nil
}
