package records

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ============================================================================
// XLSX LOADER — Workbook bytes → []Record
// ============================================================================
// Some platforms export contacts as .xlsx instead of .csv. The first sheet
// is read through the same pairing semantics as the CSV parser: first
// non-empty row is the header, data rows pair positionally, short rows pad
// with empty values, extra cells are ignored.
// ============================================================================

// ParseXLSX converts workbook bytes into records from the first sheet.
// Returns an error only when the workbook itself cannot be opened or read;
// a sheet with fewer than two usable rows yields nil records, matching
// ParseCSV, so validation reports it the same way.
func ParseXLSX(data []byte) ([]Record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var usable [][]string
	for _, row := range rows {
		if !rowEmpty(row) {
			usable = append(usable, row)
		}
	}
	if len(usable) < 2 {
		return nil, nil
	}

	header := make([]string, len(usable[0]))
	for i, cell := range usable[0] {
		header[i] = strings.TrimSpace(cell)
	}

	parsed := make([]Record, 0, len(usable)-1)
	for _, row := range usable[1:] {
		rec := make(Record, len(header))
		for i, column := range header {
			if i < len(row) {
				rec[column] = strings.TrimSpace(row[i])
			} else {
				rec[column] = ""
			}
		}
		parsed = append(parsed, rec)
	}
	return parsed, nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
