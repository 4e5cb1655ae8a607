package crawl

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/meddict"
)

// RecordHash fingerprints a record's content for change detection. Only
// populated fields contribute, keyed by field name in schema order, so the
// hash is stable across extraction runs and unaffected by fields the page
// never had.
func RecordHash(rec *meddict.MedicineRecord) string {
	var sb strings.Builder
	for _, f := range meddict.Schema() {
		v, ok := rec.Value(f)
		if !ok {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("||")
		}
		sb.WriteString(string(f))
		sb.WriteString(":")
		sb.WriteString(v)
	}
	return fmt.Sprintf("%x", xxhash.Sum64String(sb.String()))
}
