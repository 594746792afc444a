// Package census loads the Calgary civic census "Modes of Travel" table and
// normalizes it into a per-community index.
package census

import "sort"

// Category is one travel mode to work, named after its CSV column.
type Category string

const (
	DroveAlone Category = "drovealone"
	NoWork     Category = "nowork"
	Transit    Category = "transit"
	CarpoolDr  Category = "carpool_dr"
	CarpoolPa  Category = "carpool_pa"
	Bicycle    Category = "bicycle"
	Motorcycle Category = "motorcycle"
	Walk       Category = "walk"
	WorkAtHome Category = "work_home"
)

// Categories lists the recognized category columns. The order is significant:
// it is the column filter for loading and the tie-break order when picking a
// dominant mode.
var Categories = []Category{
	DroveAlone,
	NoWork,
	Transit,
	CarpoolDr,
	CarpoolPa,
	Bicycle,
	Motorcycle,
	Walk,
	WorkAtHome,
}

// ParseCategory returns the Category named by s, or false if s is not one of
// the recognized columns.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Column names that are not categories.
const (
	CodeColumn = "comm_code"
	NameColumn = "name"
)

// Row is one raw CSV record keyed by header name.
type Row map[string]string

// Record is one community's normalized survey counts.
type Record struct {
	Code   string           `json:"code"`
	Name   string           `json:"name"`
	Counts map[Category]int `json:"counts"`
	Total  int              `json:"total"`
}

// Count returns the record's count for c (zero when the column was absent).
func (r Record) Count(c Category) int {
	return r.Counts[c]
}

// Index maps community codes to records. It is populated once by Normalize
// and read-only afterwards.
type Index struct {
	records    map[string]Record
	order      []string
	duplicates []string
}

func newIndex() *Index {
	return &Index{records: make(map[string]Record)}
}

func (idx *Index) put(r Record) {
	if _, ok := idx.records[r.Code]; ok {
		idx.duplicates = append(idx.duplicates, r.Code)
	} else {
		idx.order = append(idx.order, r.Code)
	}
	idx.records[r.Code] = r
}

// Get returns a copy of the record for code. ok is false when the community
// has no survey data.
func (idx *Index) Get(code string) (Record, bool) {
	r, ok := idx.records[code]
	if !ok {
		return Record{}, false
	}
	counts := make(map[Category]int, len(r.Counts))
	for c, n := range r.Counts {
		counts[c] = n
	}
	r.Counts = counts
	return r, true
}

// Len returns the number of distinct communities.
func (idx *Index) Len() int {
	return len(idx.records)
}

// Codes returns community codes in the order they were first seen.
func (idx *Index) Codes() []string {
	out := make([]string, len(idx.order))
	copy(out, idx.order)
	return out
}

// SortedCodes returns community codes in lexical order.
func (idx *Index) SortedCodes() []string {
	out := idx.Codes()
	sort.Strings(out)
	return out
}

// Duplicates returns every code that appeared more than once in the source,
// once per extra occurrence. The last occurrence is the one kept.
func (idx *Index) Duplicates() []string {
	out := make([]string, len(idx.duplicates))
	copy(out, idx.duplicates)
	return out
}

// Sum folds category c over every record in the index.
func (idx *Index) Sum(c Category) int {
	total := 0
	for _, r := range idx.records {
		total += r.Counts[c]
	}
	return total
}
