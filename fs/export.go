// Package fs provides file-based persistence: JSON exports, page archives,
// crawl checkpoints, and debug snapshots.
package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/fwojciec/meddict"
)

// Exporter writes stored medicines to disk as JSON.
type Exporter struct {
	medicines meddict.MedicineService
}

// NewExporter creates an Exporter backed by the given store.
func NewExporter(medicines meddict.MedicineService) *Exporter {
	return &Exporter{medicines: medicines}
}

// Envelope rebuilds the canonical data/meta document for a stored medicine.
// The report is recomputed from the stored record, so its accounting always
// matches what actually persisted.
func Envelope(m *meddict.Medicine) *meddict.Extraction {
	rep := meddict.NewParsingReport(m.URL)
	rep.ExtractedFields = append(rep.ExtractedFields, m.Record.Fields()...)
	rep.Finalize()
	return &meddict.Extraction{Data: &m.Record, Meta: rep}
}

// storeExport is the whole-store JSON document.
type storeExport struct {
	ExportedAt time.Time             `json:"exportedAt"`
	Count      int                   `json:"count"`
	Medicines  []*meddict.Extraction `json:"medicines"`
}

// ExportJSON writes every stored medicine to path as one JSON document.
// The file appears atomically: content goes to a temporary file first and
// is renamed over path when complete. Returns the number of exported
// records.
func (e *Exporter) ExportJSON(ctx context.Context, path string) (int, error) {
	meds, _, err := e.medicines.FindMedicines(ctx, meddict.MedicineFilter{})
	if err != nil {
		return 0, err
	}

	exp := storeExport{
		ExportedAt: time.Now().UTC(),
		Count:      len(meds),
		Medicines:  make([]*meddict.Extraction, 0, len(meds)),
	}
	for _, m := range meds {
		exp.Medicines = append(exp.Medicines, Envelope(m))
	}

	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return 0, err
	}

	if err := writeFileAtomic(path, data); err != nil {
		return 0, err
	}
	return len(meds), nil
}

// ExportSplit writes one envelope file per medicine into dir, named by
// docId and Korean name. Returns the number of files written.
func (e *Exporter) ExportSplit(ctx context.Context, dir string) (int, error) {
	meds, _, err := e.medicines.FindMedicines(ctx, meddict.MedicineFilter{})
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}

	for _, m := range meds {
		data, err := json.MarshalIndent(Envelope(m), "", "  ")
		if err != nil {
			return 0, err
		}
		if err := os.WriteFile(filepath.Join(dir, envelopeFilename(m)), data, 0644); err != nil {
			return 0, err
		}
	}
	return len(meds), nil
}

// envelopeFilename names a per-record export file. DocId first so files
// sort by entry, then the Korean name for human scanning.
func envelopeFilename(m *meddict.Medicine) string {
	base := m.DocID
	if base == "" {
		base = m.ID
	}
	if name := SafeFilename(m.Record.KoreanName, 50); name != "" {
		return base + "_" + name + ".json"
	}
	return base + ".json"
}

// writeFileAtomic writes data to path through a temporary file in the same
// directory, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

var (
	unsafeChars    = regexp.MustCompile(`[\\/*?:"<>|]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// SafeFilename makes text usable as a filename. Characters filesystems
// reject are dropped, whitespace runs collapse to underscores, and the
// result is truncated to maxLen runes. Empty input stays empty; callers
// pick their own fallback.
func SafeFilename(text string, maxLen int) string {
	text = unsafeChars.ReplaceAllString(text, "")
	text = whitespaceRuns.ReplaceAllString(text, "_")
	runes := []rune(text)
	if maxLen > 0 && len(runes) > maxLen {
		runes = runes[:maxLen]
	}
	return string(runes)
}
