package census

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadCSV reads a header-first CSV table into rows keyed by header name.
// Header names are trimmed and lowercased so "COMM_CODE" matches CodeColumn.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("census: empty csv")
	}
	if err != nil {
		return nil, eris.Wrap(err, "census: read header")
	}
	for i, h := range header {
		// Strip a UTF-8 byte order mark left by spreadsheet exports.
		h = strings.TrimPrefix(h, "\ufeff")
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "census: read row %d", len(rows)+1)
		}
		row := make(Row, len(header))
		for i, h := range header {
			if i < len(record) {
				row[h] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Columns returns the recognized categories that appear in header, in
// Categories order.
func Columns(rows []Row) []Category {
	if len(rows) == 0 {
		return nil
	}
	var out []Category
	for _, c := range Categories {
		if _, ok := rows[0][string(c)]; ok {
			out = append(out, c)
		}
	}
	return out
}
