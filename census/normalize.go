package census

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a category value that is not a non-negative integer
// once thousands separators are removed. Row is 1-based and counts data rows
// only (the header is not a row).
type ParseError struct {
	Row    int
	Code   string
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("row %d (%s): column %s: invalid count %q: %v", e.Row, e.Code, e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("row %d (%s): column %s: invalid count %q", e.Row, e.Code, e.Column, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Normalize converts raw rows into an Index and returns the citywide total of
// the designated category. Only the given categories are parsed and summed;
// other columns are ignored. The first malformed value aborts the load.
//
// Duplicate community codes are not rejected: the last row wins and the code
// is reported by Index.Duplicates.
func Normalize(rows []Row, categories []Category, designated Category) (*Index, int, error) {
	idx := newIndex()
	for i, row := range rows {
		rec, err := normalizeRow(i+1, row, categories)
		if err != nil {
			return nil, 0, err
		}
		idx.put(rec)
	}
	return idx, idx.Sum(designated), nil
}

func normalizeRow(n int, row Row, categories []Category) (Record, error) {
	code := strings.TrimSpace(row[CodeColumn])
	if code == "" {
		return Record{}, &ParseError{Row: n, Column: CodeColumn, Value: row[CodeColumn]}
	}

	rec := Record{
		Code:   code,
		Name:   strings.TrimSpace(row[NameColumn]),
		Counts: make(map[Category]int, len(categories)),
	}
	for _, c := range categories {
		raw, ok := row[string(c)]
		if !ok {
			continue
		}
		v, err := ParseCount(raw)
		if err != nil {
			return Record{}, &ParseError{Row: n, Code: code, Column: string(c), Value: raw, Err: err}
		}
		rec.Counts[c] = v
		rec.Total += v
	}
	return rec, nil
}

// ParseCount parses a census count such as "1,200". Blank cells count as
// zero. Negative values are rejected.
func ParseCount(s string) (int, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative count %d", v)
	}
	return v, nil
}
