// Package table holds the in-memory, column-oriented representation of a CSV
// dataset. Every column carries an explicit Kind decided once at load time so
// that transforms consult the tag instead of re-inspecting values.
package table

import "fmt"

// Kind is the logical type of a column.
type Kind uint8

const (
	KindText Kind = iota
	KindNumeric
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a single cell. Valid=false means the cell is missing, which is
// distinct from an empty string or zero.
type Value struct {
	S     string
	Valid bool
}

// Missing is the zero Value.
var Missing = Value{}

// Text returns a present cell holding s.
func Text(s string) Value { return Value{S: s, Valid: true} }

// Column is a named, typed sequence of cells.
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// Table is an ordered list of columns with positionally aligned rows.
type Table struct {
	Columns []Column
}

// NumRows returns the row count (zero for a table without columns).
func (t *Table) NumRows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// NumCols returns the column count.
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Index returns the position of the column called name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Row returns a copy of row i across all columns.
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.Columns))
	for c := range t.Columns {
		out[c] = t.Columns[c].Values[i]
	}
	return out
}

// Clone returns a deep copy so a stage can mutate its result without touching
// the table it received.
func (t *Table) Clone() *Table {
	out := &Table{Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		vals := make([]Value, len(c.Values))
		copy(vals, c.Values)
		out.Columns[i] = Column{Name: c.Name, Kind: c.Kind, Values: vals}
	}
	return out
}

// SelectRows returns a new table holding only the given rows, in the given
// order.
func (t *Table) SelectRows(rows []int) *Table {
	out := &Table{Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		vals := make([]Value, len(rows))
		for j, r := range rows {
			vals[j] = c.Values[r]
		}
		out.Columns[i] = Column{Name: c.Name, Kind: c.Kind, Values: vals}
	}
	return out
}

// CountMissing returns the number of missing cells across the table.
func (t *Table) CountMissing() int {
	n := 0
	for _, c := range t.Columns {
		for _, v := range c.Values {
			if !v.Valid {
				n++
			}
		}
	}
	return n
}

// FromRows builds a table from a header and raw rows. Cells for which
// isMissing reports true become Missing; short rows are padded with Missing.
// Column kinds are detected with DetectKind.
func FromRows(header []string, rows [][]string, isMissing func(string) bool) *Table {
	t := &Table{Columns: make([]Column, len(header))}
	for i, name := range header {
		t.Columns[i] = Column{Name: name, Values: make([]Value, len(rows))}
	}
	for r, row := range rows {
		for c := range header {
			if c >= len(row) {
				continue
			}
			s := row[c]
			if isMissing != nil && isMissing(s) {
				continue
			}
			t.Columns[c].Values[r] = Text(s)
		}
	}
	for i := range t.Columns {
		Classify(&t.Columns[i])
	}
	return t
}
