package meddict

import "strings"

// ValidationResult reports a field-by-field comparison of a candidate
// record against a reference record.
type ValidationResult struct {
	// Details is the reference record the candidate was compared against.
	Details *MedicineRecord `json:"details"`

	// Fields preserves the comparison order.
	Fields []Field `json:"fields"`

	// Validation maps each compared field to whether the candidate's value
	// matched the reference's.
	Validation map[Field]bool `json:"validation"`

	// ExtractionCompleteness is the ratio of matching fields to compared
	// fields, in [0,1]. This is an accuracy ratio against a reference and
	// is never interchangeable with ParsingReport.Completeness, which
	// measures presence only.
	ExtractionCompleteness float64 `json:"extractionCompleteness"`
}

// Score compares candidate against reference over the given fields and
// returns a per-field validity map plus the aggregate match ratio.
//
// Equality is trimmed string equality on each field's canonical form.
// A field absent from both records counts as a match: the candidate agrees
// with the reference that the field has no value. (Presence accounting is
// the parsing report's job, not the scorer's.)
//
// Returns EINVALID if fields is empty or contains a name outside the
// schema; data-quality differences never produce an error.
func Score(candidate, reference *MedicineRecord, fields []Field) (*ValidationResult, error) {
	if candidate == nil {
		return nil, Errorf(EINVALID, "candidate record required")
	}
	if reference == nil {
		return nil, Errorf(EINVALID, "reference record required")
	}
	if len(fields) == 0 {
		return nil, Errorf(EINVALID, "at least one field to compare required")
	}

	result := &ValidationResult{
		Details:    reference,
		Fields:     make([]Field, 0, len(fields)),
		Validation: make(map[Field]bool, len(fields)),
	}

	matches := 0
	for _, f := range fields {
		if !ValidField(f) {
			return nil, Errorf(EINVALID, "unknown field %q", f)
		}
		cv, _ := candidate.Value(f)
		rv, _ := reference.Value(f)
		ok := strings.TrimSpace(cv) == strings.TrimSpace(rv)
		if ok {
			matches++
		}
		result.Fields = append(result.Fields, f)
		result.Validation[f] = ok
	}

	result.ExtractionCompleteness = float64(matches) / float64(len(fields))
	return result, nil
}
