package domain

import (
	"strconv"
	"strings"
)

// Value is a single table cell. Valid is false when the cell is absent.
type Value struct {
	Text  string `json:"text"`
	Valid bool   `json:"valid"`
}

// Present builds a non-absent Value.
func Present(s string) Value {
	return Value{Text: s, Valid: true}
}

// Absent is the zero Value.
var Absent = Value{}

// Float parses the cell as a number. ok is false for absent or non-numeric cells.
func (v Value) Float() (f float64, ok bool) {
	if !v.Valid {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Is reports whether the cell is present and equal to s.
func (v Value) Is(s string) bool {
	return v.Valid && v.Text == s
}

// String renders absent cells as "NaN" to match the usual tabular display.
func (v Value) String() string {
	if !v.Valid {
		return "NaN"
	}
	return v.Text
}

// Table is an in-memory rectangular dataset with named columns.
// Every row has exactly len(Columns) cells.
type Table struct {
	Name    string    `json:"name"`
	Columns []string  `json:"columns"`
	Rows    [][]Value `json:"rows"`
}

// NewTable creates an empty table with the given header.
func NewTable(name string, columns []string) Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return Table{Name: name, Columns: cols}
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Shape returns (rows, columns).
func (t Table) Shape() (int, int) {
	return len(t.Rows), len(t.Columns)
}

// Index returns the position of the named column, or -1.
func (t Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Has reports whether the column exists.
func (t Table) Has(name string) bool {
	return t.Index(name) >= 0
}

// Column returns a copy of the named column. A missing column yields nil.
func (t Table) Column(name string) []Value {
	idx := t.Index(name)
	if idx < 0 {
		return nil
	}
	out := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

// Cell returns the value at row i in the named column, absent if the column is missing.
func (t Table) Cell(i int, name string) Value {
	idx := t.Index(name)
	if idx < 0 || i < 0 || i >= len(t.Rows) {
		return Absent
	}
	return t.Rows[i][idx]
}

// Clone deep-copies the table so the result can be changed without touching t.
func (t Table) Clone() Table {
	out := NewTable(t.Name, t.Columns)
	out.Rows = make([][]Value, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]Value, len(row))
		copy(r, row)
		out.Rows[i] = r
	}
	return out
}

// Filter returns a new table with the rows for which keep returns true.
func (t Table) Filter(keep func(row []Value) bool) Table {
	out := NewTable(t.Name, t.Columns)
	for _, row := range t.Rows {
		if keep(row) {
			r := make([]Value, len(row))
			copy(r, row)
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Where keeps the rows whose column equals value.
func (t Table) Where(column, value string) Table {
	idx := t.Index(column)
	if idx < 0 {
		return NewTable(t.Name, t.Columns)
	}
	return t.Filter(func(row []Value) bool {
		return row[idx].Is(value)
	})
}

// Head returns at most n leading rows.
func (t Table) Head(n int) Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	if n < 0 {
		n = 0
	}
	out := NewTable(t.Name, t.Columns)
	out.Rows = t.Clone().Rows[:n]
	return out
}

// Floats returns the numeric values of a column, skipping absent and non-numeric cells.
func (t Table) Floats(name string) []float64 {
	var out []float64
	for _, v := range t.Column(name) {
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}
