package analysis

import (
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/civtab/internal/table"
)

// SumResult holds per-group totals of a coerced numeric column.
type SumResult struct {
	GroupColumns []string
	Value        string
	Label        string
	Keys         []table.GroupKey
	Sums         []float64
	// Coerced counts non-empty cells that could not be read as numbers.
	Coerced  int
	Warnings []string
}

// SumBy totals valueCol per group after coercing it to numbers: thousands
// separators are stripped and unparseable cells become null. Nulls are skipped,
// so an all-null group totals zero.
func (a *Analyzer) SumBy(t *table.Table, groupCols []string, valueCol, label string) (*SumResult, error) {
	vals, ok := t.Column(valueCol)
	if !ok {
		return nil, &ColumnNotFoundError{Column: valueCol, Role: "value"}
	}
	if err := a.groupColumns(t, groupCols); err != nil {
		return nil, err
	}
	if label == "" {
		label = "total_" + valueCol
	}
	res := &SumResult{GroupColumns: append([]string(nil), groupCols...), Value: valueCol, Label: label}

	nums := make([]table.Value, len(vals))
	for i, v := range vals {
		nums[i] = table.ToNumeric(v, a.opt.Numeric)
		if nums[i].IsNull() && !v.IsNull() {
			res.Coerced++
		}
	}
	if res.Coerced > 0 {
		a.warn(&res.Warnings, fmt.Sprintf("%d value(s) in %q could not be read as numbers and were skipped", res.Coerced, valueCol),
			slog.String("column", valueCol), slog.Int("coerced", res.Coerced))
	}

	groups, err := t.GroupBy(groupCols)
	if err != nil {
		return nil, fmt.Errorf("group by: %w", err)
	}
	res.Keys = groups.Keys
	res.Sums = make([]float64, len(groups.Keys))
	for i, rows := range groups.Rows {
		for _, r := range rows {
			if f, ok := nums[r].Float(); ok {
				res.Sums[i] += f
			}
		}
	}
	return res, nil
}
