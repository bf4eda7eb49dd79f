// Package types contains common types used across the application
package types

import "math"

// Row is one category of a summary table.
type Row struct {
	Key    string
	Values []float64
}

// Table is a descriptive summary keyed by category.
// Values line up with Columns; missing means are NaN.
type Table struct {
	Title   string
	Index   string
	Columns []string
	Rows    []Row
}

// NewTable returns an empty table with the given layout.
func NewTable(title, index string, columns ...string) Table {
	return Table{Title: title, Index: index, Columns: columns}
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Keys returns the row keys in order.
func (t Table) Keys() []string {
	keys := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		keys[i] = r.Key
	}
	return keys
}

// Column returns the position of a column, or -1.
func (t Table) Column(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value looks up a single cell.
func (t Table) Value(key, column string) (float64, bool) {
	idx := t.Column(column)
	if idx < 0 {
		return math.NaN(), false
	}
	for _, r := range t.Rows {
		if r.Key == key && idx < len(r.Values) {
			return r.Values[idx], true
		}
	}
	return math.NaN(), false
}

// Sum adds a column across rows, skipping NaN cells.
func (t Table) Sum(column string) float64 {
	idx := t.Column(column)
	if idx < 0 {
		return 0
	}
	var total float64
	for _, r := range t.Rows {
		if idx < len(r.Values) && !math.IsNaN(r.Values[idx]) {
			total += r.Values[idx]
		}
	}
	return total
}
