package table

import (
	"fmt"
	"sort"
)

// Groups partitions a table's rows by one or more columns.
type Groups struct {
	Columns []string
	Keys    []GroupKey // ascending
	Rows    [][]int    // Rows[i] holds the row indices of Keys[i], in table order
}

// ErrMissingColumn is returned by GroupBy when a group column does not exist.
type ErrMissingColumn struct{ Column string }

func (e *ErrMissingColumn) Error() string { return fmt.Sprintf("column %q not found", e.Column) }

// GroupBy partitions rows by cols. Rows with a Null in any group column are
// dropped. With no columns, every row falls into a single group with the empty key.
func (t *Table) GroupBy(cols []string) (*Groups, error) {
	return t.GroupRows(cols, nil)
}

// GroupRows is GroupBy restricted to the listed rows. A nil slice means all rows.
func (t *Table) GroupRows(cols []string, rows []int) (*Groups, error) {
	idx := make([]int, len(cols))
	for i, c := range cols {
		j, ok := t.index[c]
		if !ok {
			return nil, &ErrMissingColumn{Column: c}
		}
		idx[i] = j
	}
	if rows == nil {
		rows = make([]int, len(t.rows))
		for i := range rows {
			rows[i] = i
		}
	}
	g := &Groups{Columns: append([]string(nil), cols...)}
	if len(cols) == 0 {
		g.Keys = []GroupKey{{}}
		g.Rows = [][]int{append([]int(nil), rows...)}
		return g, nil
	}
	pos := map[string]int{}
outer:
	for _, r := range rows {
		key := make(GroupKey, len(idx))
		for i, j := range idx {
			v := t.rows[r][j]
			if v.IsNull() {
				continue outer
			}
			key[i] = v
		}
		id := key.id()
		p, ok := pos[id]
		if !ok {
			p = len(g.Keys)
			pos[id] = p
			g.Keys = append(g.Keys, key)
			g.Rows = append(g.Rows, nil)
		}
		g.Rows[p] = append(g.Rows[p], r)
	}
	order := make([]int, len(g.Keys))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return CompareKeys(g.Keys[order[a]], g.Keys[order[b]]) < 0
	})
	keys := make([]GroupKey, len(order))
	grows := make([][]int, len(order))
	for i, o := range order {
		keys[i] = g.Keys[o]
		grows[i] = g.Rows[o]
	}
	g.Keys, g.Rows = keys, grows
	return g, nil
}

// KeyID returns a stable identity for k, suitable as a map key. Numerically
// equal Int and Float elements share an identity.
func KeyID(k GroupKey) string { return k.id() }
