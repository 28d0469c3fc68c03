package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/smallbiznis/vitrine/internal/catalogimport/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV reads a header row followed by records. The delimiter is ";" when
// the header line has more semicolons than commas, as spreadsheet exports in
// French locales produce.
func ReadCSV(r io.Reader) ([]domain.RawRow, error) {
	br := bufio.NewReader(r)
	if bom, _ := br.Peek(len(utf8BOM)); bytes.Equal(bom, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	head, _ := br.Peek(br.Size())
	if line, _, _ := bytes.Cut(head, []byte("\n")); bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		reader.Comma = ';'
	}

	var t *table
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if isEmptyRecord(record) {
			continue
		}
		if t == nil {
			if t, err = newTable(record); err != nil {
				return nil, err
			}
			continue
		}
		line, _ := reader.FieldPos(0)
		t.add(line, record)
	}
	if t == nil {
		return nil, domain.ErrEmptySource
	}
	return t.rows, nil
}
