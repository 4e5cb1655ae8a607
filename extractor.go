package meddict

// Extractor extracts a structured medicine record from an entry page.
type Extractor interface {
	// Extract parses rawHTML permissively and applies the per-field
	// extraction rules in schema order, returning the record and the
	// parsing report for the run. Both return values are always non-nil.
	//
	// Extract never fails: per-field failures are recorded in the report
	// and extraction continues; unparseable or empty input yields an empty
	// record with ParsingSuccess=false. sourceURL is used only for report
	// attribution and for resolving relative media URLs; it may be empty.
	//
	// Implementations must be safe for concurrent use: separate calls
	// share no state beyond the immutable field schema.
	Extract(rawHTML, sourceURL string) (*MedicineRecord, *ParsingReport)
}

// EntryClassifier decides whether a page belongs to the medicine dictionary.
// The source serves every dictionary from one docId space, so a probed id
// can land on an entry from an unrelated dictionary whose layout still
// carries a headword.
type EntryClassifier interface {
	// IsMedicineEntry reports whether rawHTML is a medicine dictionary entry.
	IsMedicineEntry(rawHTML string) bool
}

// Content holds page content extracted for the archive pipeline.
type Content struct {
	// Title is the page title extracted from metadata.
	Title string

	// HTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	HTML string
}

// ContentExtractor extracts main content from HTML pages, removing
// boilerplate. Unlike Extractor it knows nothing about the medicine field
// schema; it feeds the human-readable page archive.
type ContentExtractor interface {
	// ExtractContent processes raw HTML and returns the main content.
	// The title comes from page metadata (meta tags, JSON+LD, etc.).
	ExtractContent(html string) (*Content, error)
}
