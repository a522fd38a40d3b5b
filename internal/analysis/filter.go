package analysis

import (
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/civtab/internal/table"
)

// predicate tests one column against an allowed-value set.
type predicate struct {
	col     int
	allowed []string
}

func (p predicate) match(v table.Value) bool {
	for _, want := range p.allowed {
		if v.MatchesText(want) {
			return true
		}
	}
	return false
}

// resolve binds dimensions to column positions. A missing column yields no
// predicate (vacuously true) and a warning, or an error under StrictColumns.
func (a *Analyzer) resolve(t *table.Table, spec FilterSpec, warnings *[]string) ([]predicate, error) {
	preds := make([]predicate, 0, len(spec))
	for _, d := range spec {
		j, ok := t.Index(d.Column)
		if !ok {
			if a.opt.StrictColumns {
				return nil, &ColumnNotFoundError{Column: d.Column, Role: "filter"}
			}
			a.warn(warnings, fmt.Sprintf("column %q not found in dataset; filter ignored", d.Column),
				slog.String("column", d.Column))
			continue
		}
		preds = append(preds, predicate{col: j, allowed: d.Values})
	}
	return preds, nil
}

func matchRows(t *table.Table, preds []predicate) []int {
	rows := make([]int, 0, t.Len())
outer:
	for i := 0; i < t.Len(); i++ {
		for _, p := range preds {
			if !p.match(t.At(i, p.col)) {
				continue outer
			}
		}
		rows = append(rows, i)
	}
	return rows
}

// Filter keeps the rows whose value in every filter column is one of that
// column's allowed values. Columns absent from the table are reported as
// warnings and do not exclude rows, unless StrictColumns is set. The input
// table is not modified.
func (a *Analyzer) Filter(t *table.Table, spec FilterSpec) (*table.Table, []string, error) {
	var warnings []string
	preds, err := a.resolve(t, spec, &warnings)
	if err != nil {
		return nil, warnings, err
	}
	return t.Subset(matchRows(t, preds)), warnings, nil
}
