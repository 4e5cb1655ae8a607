// Package trafilatura extracts main page content for the archive pipeline.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/meddict"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements meddict.ContentExtractor at compile time.
var _ meddict.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
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

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &meddict.Content{
		Title: result.Metadata.Title,
		HTML:  contentHTML,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
