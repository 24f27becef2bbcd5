// Package tabular holds in-memory tables whose rows are addressable by column
// name, and the readers that build them from delimited text, whitespace
// formatted text (PLINK), legacy spreadsheets and BigQuery.
package tabular

import (
	"strings"
)

type Table struct {
	Header []string
	Rows   [][]string
}

// Index returns the position of the named column, matched case-insensitively
// and ignoring surrounding whitespace, or -1.
func (t Table) Index(name string) int {
	name = strings.TrimSpace(name)
	for i, col := range t.Header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i
		}
	}

	return -1
}

// IndexAny returns the position of the first of names that is present, along
// with the matched name.
func (t Table) IndexAny(names ...string) (int, string) {
	for _, name := range names {
		if i := t.Index(name); i >= 0 {
			return i, name
		}
	}

	return -1, ""
}

// IndexPrefix returns the first column whose name starts with prefix.
func (t Table) IndexPrefix(prefix string) int {
	for i, col := range t.Header {
		if strings.HasPrefix(col, prefix) {
			return i
		}
	}

	return -1
}

// Value returns row[col], or "" when the row is short. Ragged rows are common
// in spreadsheet exports with empty trailing cells.
func (t Table) Value(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return ""
	}

	return t.Rows[row][col]
}

func (t Table) Len() int {
	return len(t.Rows)
}
