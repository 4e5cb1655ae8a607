package meddict

// ParsingReport describes the outcome of one extraction run, independent of
// the extracted data itself.
type ParsingReport struct {
	// SourceURL attributes the report to the document's origin.
	// Empty when the origin is unknown.
	SourceURL string `json:"sourceUrl"`

	// ParsingSuccess is true iff at least one field was extracted.
	ParsingSuccess bool `json:"parsingSuccess"`

	// ExtractedFields lists the populated fields in the order they were
	// extracted (schema order for a plain extraction run).
	ExtractedFields []Field `json:"extractedFields"`

	// MissingFields is the schema-order complement of ExtractedFields.
	MissingFields []Field `json:"missingFields"`

	// ParsingErrors accumulates per-field failure messages in the order
	// they occurred. A non-empty list does not imply a failed run.
	ParsingErrors []string `json:"parsingErrors"`

	// Completeness is |ExtractedFields| / |schema|, in [0,1]. This is a
	// presence ratio; correctness against a reference is measured by
	// ValidationResult.ExtractionCompleteness instead.
	Completeness float64 `json:"completeness"`
}

// NewParsingReport returns an empty report attributed to sourceURL.
func NewParsingReport(sourceURL string) *ParsingReport {
	return &ParsingReport{
		SourceURL:       sourceURL,
		ExtractedFields: []Field{},
		MissingFields:   []Field{},
		ParsingErrors:   []string{},
	}
}

// Finalize computes the derived report fields from ExtractedFields:
// MissingFields, ParsingSuccess, and Completeness. It is called once at the
// end of an extraction run, and again by the documented post-extraction
// enrichment path. Any other mutation of a returned report is a caller bug.
func (r *ParsingReport) Finalize() {
	extracted := make(map[Field]bool, len(r.ExtractedFields))
	for _, f := range r.ExtractedFields {
		extracted[f] = true
	}

	r.MissingFields = []Field{}
	for _, f := range schema {
		if !extracted[f] {
			r.MissingFields = append(r.MissingFields, f)
		}
	}

	r.ParsingSuccess = len(r.ExtractedFields) > 0
	r.Completeness = float64(len(r.ExtractedFields)) / float64(len(schema))
}

// Extraction pairs an extracted record with the report from the run that
// produced it. It is the canonical serialized shape: a JSON document with
// the two top-level keys "data" and "meta".
type Extraction struct {
	Data *MedicineRecord `json:"data"`
	Meta *ParsingReport  `json:"meta"`
}

// EnrichKoreanName applies the one sanctioned post-extraction mutation:
// when a caller holds an external title for the document and the extracted
// record lacks a Korean name, the title (markup stripped) becomes the
// record's koreanName and the report accounting is recomputed. Extraction
// itself never does this; it is strictly a caller-side policy, applied at
// most once, immediately after extraction.
//
// Returns true if the record was enriched.
func EnrichKoreanName(rec *MedicineRecord, rep *ParsingReport, title string) bool {
	if rec == nil || rep == nil || rec.KoreanName != "" {
		return false
	}
	name := StripTags(title)
	if name == "" {
		return false
	}
	rec.KoreanName = name
	rep.ExtractedFields = append(rep.ExtractedFields, FieldKoreanName)
	rep.Finalize()
	return true
}
