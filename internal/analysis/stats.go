package analysis

import (
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/civtab/internal/table"
)

// StatsResult is the outcome of FilterAndStats. Overall is set when no group
// columns were given; otherwise Groups holds one record per group key.
type StatsResult struct {
	Target         string       `json:"target" yaml:"target"`
	Kind           TargetKind   `json:"kind" yaml:"kind"`
	GroupColumns   []string     `json:"group_columns,omitempty" yaml:"group_columns,omitempty"`
	Filters        FilterSpec   `json:"-" yaml:"filters,omitempty"`
	RangeConverted bool         `json:"range_converted" yaml:"range_converted"`
	Rows           int          `json:"rows" yaml:"rows"`
	Overall        Stats        `json:"overall,omitempty" yaml:"overall,omitempty"`
	Groups         []GroupStats `json:"groups,omitempty" yaml:"groups,omitempty"`
	Warnings       []string     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// GroupStats is the statistics record of one group.
type GroupStats struct {
	Key   table.GroupKey `json:"-" yaml:"-"`
	Label []string       `json:"key" yaml:"key"`
	Stats Stats          `json:"stats" yaml:"stats"`
}

// FilterAndStats filters t, optionally converts a bucketed-range target to
// numbers, classifies the target, and computes statistics overall or per group.
// A missing target column fails with a *ColumnNotFoundError.
func (a *Analyzer) FilterAndStats(t *table.Table, filters FilterSpec, target string, groupCols []string) (*StatsResult, error) {
	res := &StatsResult{Target: target, GroupColumns: append([]string(nil), groupCols...), Filters: filters}
	work := t
	if len(filters) > 0 {
		filtered, warnings, err := a.Filter(t, filters)
		res.Warnings = append(res.Warnings, warnings...)
		if err != nil {
			return nil, err
		}
		work = filtered
	}
	vals, ok := work.Column(target)
	if !ok {
		return nil, &ColumnNotFoundError{Column: target, Role: "target"}
	}
	if err := a.groupColumns(work, groupCols); err != nil {
		return nil, err
	}
	res.Rows = work.Len()

	if table.KindOf(vals) == table.String && LooksLikeRangeColumn(vals, a.opt.RangeSampleSize) {
		vals = ConvertRanges(vals, a.opt.RangeMethod)
		res.RangeConverted = true
		a.log.DebugContext(a.ctx, "converted range column", slog.String("column", target), slog.String("method", string(a.opt.RangeMethod)))
	}

	tgt := Classify(vals)
	res.Kind = tgt.Kind()

	if len(groupCols) == 0 {
		all := make([]int, work.Len())
		for i := range all {
			all[i] = i
		}
		res.Overall = tgt.Summarize(all)
		return res, nil
	}
	groups, err := work.GroupBy(groupCols)
	if err != nil {
		return nil, fmt.Errorf("group by: %w", err)
	}
	res.Groups = make([]GroupStats, len(groups.Keys))
	for i, k := range groups.Keys {
		res.Groups[i] = GroupStats{Key: k, Label: k.Strings(), Stats: tgt.Summarize(groups.Rows[i])}
	}
	return res, nil
}

// Group returns the record for the group whose rendered key equals parts.
func (r *StatsResult) Group(parts ...string) (Stats, bool) {
	for _, g := range r.Groups {
		if equalStrings(g.Label, parts) {
			return g.Stats, true
		}
	}
	return nil, false
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
