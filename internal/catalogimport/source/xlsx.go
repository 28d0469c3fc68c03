package source

import (
	"fmt"
	"io"

	"github.com/smallbiznis/vitrine/internal/catalogimport/domain"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads the named sheet, or the first one. The first non-empty row
// is the header.
func ReadXLSX(r io.Reader, sheet string) ([]domain.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, domain.ErrEmptySource
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var t *table
	for i, record := range records {
		if isEmptyRecord(record) {
			continue
		}
		if t == nil {
			if t, err = newTable(record); err != nil {
				return nil, err
			}
			continue
		}
		t.add(i+1, record)
	}
	if t == nil {
		return nil, domain.ErrEmptySource
	}
	return t.rows, nil
}
