package analysis

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/KaramelBytes/civtab/internal/table"
)

// CountResult is a cross-tabulation: one row per group key, one column per
// filter combination or extra single-value filter.
type CountResult struct {
	GroupColumns []string
	Labels       []string
	Keys         []table.GroupKey
	// Counts is row-major: Counts[i][j] is the count of Keys[i] under Labels[j].
	Counts   [][]int
	Warnings []string
}

type countColumn struct {
	label string
	dims  []string // filter columns, parallel to vals
	vals  []string
}

// CountByFilters counts rows per group for every combination of the filter
// values (Cartesian product, in declaration order) and, optionally, for every
// single (column, value) pair in extraSingle. Group keys that never match a
// column are reported as zero.
func (a *Analyzer) CountByFilters(t *table.Table, groupCols []string, filters, extraSingle FilterSpec) (*CountResult, error) {
	if len(filters) == 0 && len(extraSingle) == 0 {
		return nil, fmt.Errorf("%w: no filter dimensions or extra single filters given", ErrEmptyFilter)
	}
	if err := a.groupColumns(t, groupCols); err != nil {
		return nil, err
	}
	res := &CountResult{GroupColumns: append([]string(nil), groupCols...)}

	filters, w1, err := filters.normalize()
	if err != nil {
		return nil, err
	}
	extraSingle, w2, err := extraSingle.normalize()
	if err != nil {
		return nil, err
	}
	for _, w := range append(w1, w2...) {
		a.warn(&res.Warnings, w)
	}

	var cols []countColumn
	seen := map[string]struct{}{}
	for _, c := range filters.Combinations() {
		if _, dup := seen[c.Label]; dup {
			return nil, fmt.Errorf("%w: combination %q is produced by more than one set of filter values", ErrDuplicateLabel, c.Label)
		}
		cols = append(cols, countColumn{label: c.Label, dims: filters.Columns(), vals: c.Values})
		seen[c.Label] = struct{}{}
	}
	for _, d := range extraSingle {
		for _, v := range d.Values {
			label := d.Column + "_" + v
			if _, dup := seen[label]; dup {
				a.warn(&res.Warnings, fmt.Sprintf("extra count %q duplicates an existing column; skipped", label),
					slog.String("label", label))
				continue
			}
			seen[label] = struct{}{}
			cols = append(cols, countColumn{label: label, dims: []string{d.Column}, vals: []string{v}})
		}
	}

	// Resolve each distinct filter column once so a missing column warns once.
	colIdx := map[string]int{}
	for _, c := range cols {
		for _, d := range c.dims {
			if _, done := colIdx[d]; done {
				continue
			}
			j, ok := t.Index(d)
			if !ok {
				if a.opt.StrictColumns {
					return nil, &ColumnNotFoundError{Column: d, Role: "filter"}
				}
				a.warn(&res.Warnings, fmt.Sprintf("column %q not found in dataset; filter ignored", d),
					slog.String("column", d))
				j = -1
			}
			colIdx[d] = j
		}
	}

	keyPos := map[string]int{}
	var keys []table.GroupKey
	perColumn := make([]map[string]int, len(cols))
	for ci, c := range cols {
		preds := make([]predicate, 0, len(c.dims))
		for i, d := range c.dims {
			if j := colIdx[d]; j >= 0 {
				preds = append(preds, predicate{col: j, allowed: []string{c.vals[i]}})
			}
		}
		groups, err := t.GroupRows(groupCols, matchRows(t, preds))
		if err != nil {
			return nil, fmt.Errorf("group by: %w", err)
		}
		counts := make(map[string]int, len(groups.Keys))
		for gi, k := range groups.Keys {
			id := table.KeyID(k)
			if _, ok := keyPos[id]; !ok {
				keyPos[id] = len(keys)
				keys = append(keys, k)
			}
			counts[id] = len(groups.Rows[gi])
		}
		perColumn[ci] = counts
		res.Labels = append(res.Labels, c.label)
	}

	sort.SliceStable(keys, func(i, j int) bool { return table.CompareKeys(keys[i], keys[j]) < 0 })
	res.Keys = keys
	res.Counts = make([][]int, len(keys))
	for i, k := range keys {
		id := table.KeyID(k)
		row := make([]int, len(cols))
		for ci := range cols {
			row[ci] = perColumn[ci][id]
		}
		res.Counts[i] = row
	}
	return res, nil
}

// Column returns the counts under label, aligned with Keys.
func (r *CountResult) Column(label string) ([]int, bool) {
	for j, l := range r.Labels {
		if l == label {
			out := make([]int, len(r.Keys))
			for i := range r.Keys {
				out[i] = r.Counts[i][j]
			}
			return out, true
		}
	}
	return nil, false
}

// Count returns the count for the rendered group key parts under label.
func (r *CountResult) Count(label string, key ...string) (int, bool) {
	col, ok := r.Column(label)
	if !ok {
		return 0, false
	}
	for i, k := range r.Keys {
		if equalStrings(k.Strings(), key) {
			return col[i], true
		}
	}
	return 0, false
}
