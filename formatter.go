package meddict

import "strings"

// FormatMedicines formats stored medicines for display or LLM context.
// Each entry renders its populated fields in schema order as "label: value"
// lines under a name heading. Entries are separated by blank lines.
func FormatMedicines(meds []*Medicine) string {
	if len(meds) == 0 {
		return ""
	}

	parts := make([]string, 0, len(meds))
	for _, m := range meds {
		header := m.Record.KoreanName
		if header == "" {
			header = m.URL
		}

		var b strings.Builder
		b.WriteString("## Medicine: " + header)
		for _, f := range Schema() {
			if v, ok := m.Record.Value(f); ok {
				b.WriteString("\n" + string(f) + ": " + v)
			}
		}
		parts = append(parts, b.String())
	}

	return strings.Join(parts, "\n\n")
}
