package view

import (
	"strings"

	"datefilter/internal/sheet"
)

// Filter returns the rows of ds visible under q, in dataset order. An
// empty q shows every row; otherwise a row is visible when any of its
// values contains q, ignoring case.
func Filter(ds *sheet.Dataset, q string) []sheet.Row {
	if ds == nil {
		return nil
	}
	if q == "" {
		return ds.Rows
	}
	needle := strings.ToLower(q)
	visible := make([]sheet.Row, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		if matches(row, needle) {
			visible = append(visible, row)
		}
	}
	return visible
}

// matches expects needle already lower-cased. Missing keys have no
// field, so they never match.
func matches(row sheet.Row, needle string) bool {
	for _, f := range row.Fields() {
		if strings.Contains(strings.ToLower(f.Value), needle) {
			return true
		}
	}
	return false
}
