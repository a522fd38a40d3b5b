package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/civtab/internal/table"
)

// Tabular is a result that can be laid out as a header plus string records.
type Tabular interface {
	Header() []string
	Records() [][]string
}

var (
	_ Tabular = (*CountResult)(nil)
	_ Tabular = (*StatsResult)(nil)
	_ Tabular = (*SumResult)(nil)
)

// PrependWarnings puts warnings raised before res was computed, such as those
// from filtering or deriving columns, ahead of res's own.
func PrependWarnings(res Tabular, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	switch r := res.(type) {
	case *CountResult:
		r.Warnings = append(append([]string(nil), warnings...), r.Warnings...)
	case *StatsResult:
		r.Warnings = append(append([]string(nil), warnings...), r.Warnings...)
	case *SumResult:
		r.Warnings = append(append([]string(nil), warnings...), r.Warnings...)
	}
}

func keyHeader(cols []string) []string {
	if len(cols) == 0 {
		return []string{"group"}
	}
	return append([]string(nil), cols...)
}

func keyCells(k table.GroupKey) []string {
	if len(k) == 0 {
		return []string{k.String()}
	}
	return k.Strings()
}

func formatNum(f float64) string { return table.FormatFloat(f) }

func formatFloats(fs []float64) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = formatNum(f)
	}
	return strings.Join(parts, ", ")
}

// Header returns the group columns followed by one column per count label.
func (r *CountResult) Header() []string {
	return append(keyHeader(r.GroupColumns), r.Labels...)
}

func (r *CountResult) Records() [][]string {
	out := make([][]string, len(r.Keys))
	for i, k := range r.Keys {
		row := keyCells(k)
		for _, c := range r.Counts[i] {
			row = append(row, strconv.Itoa(c))
		}
		out[i] = row
	}
	return out
}

// Header returns the group columns followed by the sum label.
func (r *SumResult) Header() []string {
	return append(keyHeader(r.GroupColumns), r.Label)
}

func (r *SumResult) Records() [][]string {
	out := make([][]string, len(r.Keys))
	for i, k := range r.Keys {
		out[i] = append(keyCells(k), formatNum(r.Sums[i]))
	}
	return out
}

// Header depends on the target kind: numeric results have one row per group,
// categorical results one row per group and category.
func (r *StatsResult) Header() []string {
	h := keyHeader(r.GroupColumns)
	if r.Kind == KindCategorical {
		return append(h, "category", "count", "percentage", "mode")
	}
	return append(h, "count", "sum", "mean", "median", "mode")
}

func (r *StatsResult) Records() [][]string {
	type entry struct {
		cells []string
		stats Stats
	}
	var entries []entry
	if len(r.GroupColumns) == 0 {
		if r.Overall != nil {
			entries = append(entries, entry{cells: keyCells(nil), stats: r.Overall})
		}
	} else {
		for _, g := range r.Groups {
			entries = append(entries, entry{cells: keyCells(g.Key), stats: g.Stats})
		}
	}
	var out [][]string
	for _, e := range entries {
		switch s := e.stats.(type) {
		case *NumericStats:
			out = append(out, append(append([]string(nil), e.cells...),
				strconv.Itoa(s.Count), formatNum(s.Sum), formatNum(s.Mean), formatNum(s.Median), formatFloats(s.Mode)))
		case *CategoricalStats:
			mode := strings.Join(s.Mode, ", ")
			for _, c := range s.Categories {
				out = append(out, append(append([]string(nil), e.cells...),
					c, strconv.Itoa(s.CountPerCategory[c]), strconv.FormatFloat(s.PercentagePerCategory[c], 'f', 2, 64), mode))
			}
		}
	}
	return out
}

// Markdown renders the counts as a sectioned report with a pipe table.
func (r *CountResult) Markdown() string {
	var b strings.Builder
	b.WriteString("[COUNT SUMMARY]\n")
	if len(r.GroupColumns) > 0 {
		b.WriteString(fmt.Sprintf("Group by: %s\n", strings.Join(r.GroupColumns, ", ")))
	}
	b.WriteString(fmt.Sprintf("Groups: %d\n", len(r.Keys)))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Labels)))
	writePipeTable(&b, r.Header(), r.Records())
	writeNotes(&b, r.Warnings)
	return b.String()
}

// Markdown renders the totals as a sectioned report with a pipe table.
func (r *SumResult) Markdown() string {
	var b strings.Builder
	b.WriteString("[SUM SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Value: %s\n", safeName(r.Value)))
	if len(r.GroupColumns) > 0 {
		b.WriteString(fmt.Sprintf("Group by: %s\n", strings.Join(r.GroupColumns, ", ")))
	}
	if r.Coerced > 0 {
		b.WriteString(fmt.Sprintf("Skipped: %d non-numeric\n", r.Coerced))
	}
	b.WriteString("\n")
	writePipeTable(&b, r.Header(), r.Records())
	writeNotes(&b, r.Warnings)
	return b.String()
}

// Markdown renders a statistics report: a summary block, one bullet per
// group, then notes.
func (r *StatsResult) Markdown() string {
	var b strings.Builder
	b.WriteString("[STATISTICS]\n")
	b.WriteString(fmt.Sprintf("Target: %s (%s)\n", safeName(r.Target), r.Kind))
	if r.RangeConverted {
		b.WriteString("Ranges: converted to numbers\n")
	}
	if len(r.Filters) > 0 {
		b.WriteString(fmt.Sprintf("Filters: %s\n", safeVal(r.Filters.String())))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	if len(r.GroupColumns) == 0 {
		if r.Overall != nil {
			b.WriteString("\n")
			writeStatsLine(&b, "(all)", r.Overall)
		}
	} else {
		b.WriteString(fmt.Sprintf("Group by: %s\n\n", strings.Join(r.GroupColumns, ", ")))
		for _, g := range r.Groups {
			writeStatsLine(&b, g.Key.String(), g.Stats)
		}
	}
	writeNotes(&b, r.Warnings)
	return b.String()
}

func writeStatsLine(b *strings.Builder, label string, s Stats) {
	switch st := s.(type) {
	case *NumericStats:
		if st.Empty() {
			b.WriteString(fmt.Sprintf("- %s (n=0)\n", safeVal(label)))
			return
		}
		b.WriteString(fmt.Sprintf("- %s (n=%d): sum %.4g, mean %.4g, median %.4g, mode %s\n",
			safeVal(label), st.Count, st.Sum, st.Mean, st.Median, formatFloats(st.Mode)))
	case *CategoricalStats:
		b.WriteString(fmt.Sprintf("- %s (n=%d)", safeVal(label), st.Total))
		if len(st.Categories) > 0 {
			b.WriteString(": ")
			for i, c := range st.Categories {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d, %.2f%%)", safeVal(c), st.CountPerCategory[c], st.PercentagePerCategory[c]))
			}
			b.WriteString(fmt.Sprintf("; mode %s", safeVal(strings.Join(st.Mode, ", "))))
		}
		b.WriteString("\n")
	}
}

func writePipeTable(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| ")
	for i, h := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeVal(safeName(h)))
	}
	b.WriteString(" |\n| ")
	for i := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range rows {
		b.WriteString("| ")
		for i := range header {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			if r := []rune(val); len(r) > 80 {
				val = string(r[:77]) + "..."
			}
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
}

func writeNotes(b *strings.Builder, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	b.WriteString("\n[NOTES]\n")
	for _, w := range warnings {
		b.WriteString("- ")
		b.WriteString(w)
		b.WriteString("\n")
	}
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
