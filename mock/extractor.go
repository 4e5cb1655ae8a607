package mock

import "github.com/fwojciec/meddict"

var _ meddict.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of meddict.Extractor.
type Extractor struct {
	ExtractFn func(rawHTML, sourceURL string) (*meddict.MedicineRecord, *meddict.ParsingReport)
}

func (e *Extractor) Extract(rawHTML, sourceURL string) (*meddict.MedicineRecord, *meddict.ParsingReport) {
	return e.ExtractFn(rawHTML, sourceURL)
}

var _ meddict.EntryClassifier = (*EntryClassifier)(nil)

// EntryClassifier is a mock implementation of meddict.EntryClassifier.
type EntryClassifier struct {
	IsMedicineEntryFn func(rawHTML string) bool
}

func (c *EntryClassifier) IsMedicineEntry(rawHTML string) bool {
	return c.IsMedicineEntryFn(rawHTML)
}

var _ meddict.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor is a mock implementation of meddict.ContentExtractor.
type ContentExtractor struct {
	ExtractContentFn func(html string) (*meddict.Content, error)
}

func (e *ContentExtractor) ExtractContent(html string) (*meddict.Content, error) {
	return e.ExtractContentFn(html)
}
