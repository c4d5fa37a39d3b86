package models

import (
	"fmt"
)

// Table is the in-memory tabular boundary type: ordered column names and string cells.
// Rows shorter than Columns are treated as having empty trailing cells.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewTable creates a table with the given header and no rows.
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// ColumnIndex returns the position of the first column with the given name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// MissingColumns returns the names from required that the table lacks, in input order.
func (t *Table) MissingColumns(required ...string) []string {
	var missing []string
	for _, name := range required {
		if t.ColumnIndex(name) < 0 {
			missing = append(missing, name)
		}
	}
	return missing
}

// HasColumns reports whether every required column is present.
func (t *Table) HasColumns(required ...string) bool {
	return len(t.MissingColumns(required...)) == 0
}

// Cell returns the value at row r for column index c, or "" when the row is short.
func (t *Table) Cell(r, c int) string {
	if c < 0 || r < 0 || r >= len(t.Rows) || c >= len(t.Rows[r]) {
		return ""
	}
	return t.Rows[r][c]
}

// Value returns the value at row r for the named column.
func (t *Table) Value(r int, column string) string {
	return t.Cell(r, t.ColumnIndex(column))
}

// AppendRow adds a row, padding or truncating it to the column count.
func (t *Table) AppendRow(values ...string) {
	row := make([]string, len(t.Columns))
	copy(row, values)
	t.Rows = append(t.Rows, row)
}

// TrimThrough keeps every column up to and including boundary, in original order.
func (t *Table) TrimThrough(boundary string) (*Table, error) {
	end := t.ColumnIndex(boundary)
	if end < 0 {
		return nil, fmt.Errorf("boundary column %q not found", boundary)
	}

	indexes := make([]int, end+1)
	for i := range indexes {
		indexes[i] = i
	}
	return t.selectColumns(indexes), nil
}

// Project keeps only the named columns, in the order given.
func (t *Table) Project(columns ...string) (*Table, error) {
	indexes := make([]int, len(columns))
	for i, name := range columns {
		idx := t.ColumnIndex(name)
		if idx < 0 {
			return nil, fmt.Errorf("column %q not found", name)
		}
		indexes[i] = idx
	}
	return t.selectColumns(indexes), nil
}

// Filter returns a table holding the rows for which keep returns true, in order.
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	for r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, t.Rows[r])
		}
	}
	return out
}

func (t *Table) selectColumns(indexes []int) *Table {
	out := &Table{
		Columns: make([]string, len(indexes)),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, idx := range indexes {
		out.Columns[i] = t.Columns[idx]
	}
	for r := range t.Rows {
		row := make([]string, len(indexes))
		for i, idx := range indexes {
			row[i] = t.Cell(r, idx)
		}
		out.Rows[r] = row
	}
	return out
}
