// Package source reads catalog rows from spreadsheets, CSV exports and
// legacy SQL dumps.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/smallbiznis/vitrine/internal/catalogimport/domain"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatSQL  Format = "sql"
)

func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "xlsx", "xlsm":
		return FormatXLSX, nil
	case "csv", "txt":
		return FormatCSV, nil
	case "sql":
		return FormatSQL, nil
	}
	return "", domain.ErrUnsupportedFormat
}

// Read decodes r according to the filename extension.
func Read(filename string, r io.Reader, sheet string) ([]domain.RawRow, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatXLSX:
		return ReadXLSX(r, sheet)
	case FormatCSV:
		return ReadCSV(r)
	default:
		return ReadSQL(r)
	}
}

// table turns a header and its records into raw rows. Records shorter than
// the header leave the missing cells empty.
type table struct {
	columns []string
	rows    []domain.RawRow
}

func newTable(header []string) (*table, error) {
	columns := make([]string, len(header))
	present := make(map[string]bool, len(header))
	for i, h := range header {
		columns[i] = domain.CanonicalHeader(h)
		present[columns[i]] = true
	}
	var missing []string
	for _, col := range domain.RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingColumns, strings.Join(missing, ", "))
	}
	return &table{columns: columns}, nil
}

func (t *table) add(number int, record []string) {
	cells := make(map[string]string, len(t.columns))
	for i, col := range t.columns {
		if col == "" || i >= len(record) {
			continue
		}
		if existing := strings.TrimSpace(cells[col]); existing != "" {
			continue
		}
		cells[col] = record[i]
	}
	row := domain.RawRow{Number: number, Cells: cells}
	if row.Blank() {
		return
	}
	t.rows = append(t.rows, row)
}

func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
