package table

import (
	"fmt"
	"strings"
)

// Table is an immutable, row-ordered set of records. Derived tables share row
// storage with their parent, so rows must never be written to after construction.
type Table struct {
	cols  []string
	index map[string]int
	rows  [][]Value
}

// New builds a table from typed rows. Short rows are padded with Null.
func New(cols []string, rows [][]Value) (*Table, error) {
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		index[c] = i
	}
	for i, r := range rows {
		if len(r) < len(cols) {
			tmp := make([]Value, len(cols))
			copy(tmp, r)
			rows[i] = tmp
		} else if len(r) > len(cols) {
			rows[i] = r[:len(cols)]
		}
	}
	return &Table{cols: append([]string(nil), cols...), index: index, rows: rows}, nil
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string { return append([]string(nil), t.cols...) }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Index returns the position of a column.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether name is a column of t.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// At returns the cell at row i, column j.
func (t *Table) At(i, j int) Value { return t.rows[i][j] }

// Column returns a copy of a column's cells.
func (t *Table) Column(name string) ([]Value, bool) {
	j, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[j]
	}
	return out, true
}

// ColumnKind reports the common kind of a column's non-null cells: Int, Float,
// String, or Null when the column is empty. Mixed Int/Float columns report Float;
// any text makes the column String.
func (t *Table) ColumnKind(name string) Kind {
	vals, ok := t.Column(name)
	if !ok {
		return Null
	}
	return KindOf(vals)
}

// KindOf computes the common kind of a slice of cells, as ColumnKind does.
func KindOf(vals []Value) Kind {
	kind := Null
	for _, v := range vals {
		switch v.kind {
		case String:
			return String
		case Float:
			kind = Float
		case Int:
			if kind == Null {
				kind = Int
			}
		}
	}
	return kind
}

// Subset returns a view containing the given rows in the given order.
func (t *Table) Subset(rows []int) *Table {
	out := make([][]Value, len(rows))
	for i, r := range rows {
		out[i] = t.rows[r]
	}
	return &Table{cols: t.cols, index: t.index, rows: out}
}

// WithColumn returns a copy of t where column name holds vals. The column is
// appended when it does not exist. The receiver is left unchanged.
func (t *Table) WithColumn(name string, vals []Value) (*Table, error) {
	if len(vals) != len(t.rows) {
		return nil, fmt.Errorf("column %q: got %d values for %d rows", name, len(vals), len(t.rows))
	}
	j, exists := t.index[name]
	cols := t.cols
	index := t.index
	if !exists {
		cols = append(append([]string(nil), t.cols...), name)
		index = make(map[string]int, len(cols))
		for i, c := range cols {
			index[c] = i
		}
		j = len(cols) - 1
	}
	rows := make([][]Value, len(t.rows))
	for i, r := range t.rows {
		nr := make([]Value, len(cols))
		copy(nr, r)
		nr[j] = vals[i]
		rows[i] = nr
	}
	return &Table{cols: cols, index: index, rows: rows}, nil
}

// Records renders the table as string records, header first.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.rows)+1)
	out = append(out, t.Columns())
	for _, r := range t.rows {
		rec := make([]string, len(r))
		for j, v := range r {
			rec[j] = v.String()
		}
		out = append(out, rec)
	}
	return out
}

// GroupKey is the ordered tuple of group-column values identifying a partition.
type GroupKey []Value

// String renders the key as "a | b"; the empty key renders as "(all)".
func (k GroupKey) String() string {
	if len(k) == 0 {
		return "(all)"
	}
	parts := make([]string, len(k))
	for i, v := range k {
		parts[i] = v.String()
	}
	return strings.Join(parts, " | ")
}

// Strings returns each element rendered as text.
func (k GroupKey) Strings() []string {
	out := make([]string, len(k))
	for i, v := range k {
		out[i] = v.String()
	}
	return out
}

// CompareKeys orders keys element-wise using Compare.
func CompareKeys(a, b GroupKey) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// id returns a collision-free map key for k.
func (k GroupKey) id() string {
	var b strings.Builder
	for _, v := range k {
		s := v.String()
		tag := byte('s')
		if f, ok := v.Float(); ok {
			tag = 'n'
			s = FormatFloat(f)
		} else if v.IsNull() {
			tag = '_'
		}
		b.WriteByte(tag)
		fmt.Fprintf(&b, "%d:%s", len(s), s)
	}
	return b.String()
}
