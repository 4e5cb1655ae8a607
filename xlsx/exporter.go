// Package xlsx exports stored medicines as Excel workbooks.
package xlsx

import (
	"context"
	"fmt"
	"os"

	"github.com/fwojciec/meddict"
	"github.com/xuri/excelize/v2"
)

// sheetName is the single worksheet every export writes to.
const sheetName = "Medicines"

// Exporter writes stored medicines as an XLSX workbook.
type Exporter struct {
	medicines meddict.MedicineService
}

// NewExporter creates an Exporter backed by the given store.
func NewExporter(medicines meddict.MedicineService) *Exporter {
	return &Exporter{medicines: medicines}
}

// Export builds a workbook with one row per stored medicine and returns it
// as bytes, together with the number of exported records. The header row is
// the record schema followed by provenance columns.
func (e *Exporter) Export(ctx context.Context) ([]byte, int, error) {
	meds, _, err := e.medicines.FindMedicines(ctx, meddict.MedicineFilter{})
	if err != nil {
		return nil, 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, 0, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, 0, err
	}

	for col, h := range headerRow() {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, 0, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, 0, err
		}
	}

	for i, m := range meds {
		row := i + 2
		for col, v := range medicineRow(m) {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, 0, err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, 0, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), len(meds), nil
}

// ExportFile writes the workbook to path. Returns the number of exported
// records.
func (e *Exporter) ExportFile(ctx context.Context, path string) (int, error) {
	data, n, err := e.Export(ctx)
	if err != nil {
		return 0, err
	}
	return n, os.WriteFile(path, data, 0644)
}

func headerRow() []string {
	fields := meddict.Schema()
	out := make([]string, 0, len(fields)+2)
	for _, f := range fields {
		out = append(out, string(f))
	}
	return append(out, "url", "completeness")
}

// medicineRow renders a stored medicine in header order. Absent fields
// become empty cells.
func medicineRow(m *meddict.Medicine) []any {
	fields := meddict.Schema()
	out := make([]any, 0, len(fields)+2)
	for _, f := range fields {
		v, _ := m.Record.Value(f)
		out = append(out, v)
	}
	return append(out, m.URL, m.Completeness)
}
