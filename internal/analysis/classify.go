package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/civtab/internal/table"
	"github.com/shopspring/decimal"
)

// TargetKind names the statistics family computed for a target column.
type TargetKind string

const (
	KindNumeric     TargetKind = "numeric"
	KindCategorical TargetKind = "categorical"
)

// Target is a classified target column. It is either a NumericTarget or a
// CategoricalTarget, decided once by Classify.
type Target interface {
	Kind() TargetKind
	// Summarize computes statistics over the listed rows, skipping nulls.
	Summarize(rows []int) Stats
	isTarget()
}

// NumericTarget holds a column whose non-null values are all numbers.
type NumericTarget struct {
	values []float64
	valid  []bool
}

// CategoricalTarget holds a column with at least one text value. Numbers in a
// mixed column are treated as their text form.
type CategoricalTarget struct {
	values []string
	valid  []bool
}

// Classify decides once whether a column is numeric or categorical. A column
// with no text values is numeric, including an all-null one.
func Classify(vals []table.Value) Target {
	valid := make([]bool, len(vals))
	for i, v := range vals {
		valid[i] = !v.IsNull()
	}
	if table.KindOf(vals) == table.String {
		out := make([]string, len(vals))
		for i, v := range vals {
			out[i] = v.String()
		}
		return &CategoricalTarget{values: out, valid: valid}
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i], _ = v.Float()
	}
	return &NumericTarget{values: out, valid: valid}
}

func (*NumericTarget) Kind() TargetKind     { return KindNumeric }
func (*NumericTarget) isTarget()            {}
func (*CategoricalTarget) Kind() TargetKind { return KindCategorical }
func (*CategoricalTarget) isTarget()        {}

// Stats is a statistics record: *NumericStats or *CategoricalStats.
type Stats interface {
	// Len is the number of non-null observations.
	Len() int
	// Empty reports a record computed over no observations.
	Empty() bool
}

// NumericStats summarizes a numeric target. Mean and Median are zero when Count is zero.
type NumericStats struct {
	Count  int       `json:"count" yaml:"count"`
	Sum    float64   `json:"sum" yaml:"sum"`
	Mean   float64   `json:"mean" yaml:"mean"`
	Median float64   `json:"median" yaml:"median"`
	Mode   []float64 `json:"mode" yaml:"mode"`
}

func (s *NumericStats) Len() int    { return s.Count }
func (s *NumericStats) Empty() bool { return s.Count == 0 }

// CategoricalStats summarizes a categorical target.
type CategoricalStats struct {
	// Categories lists observed categories by count descending, then value.
	Categories            []string           `json:"categories" yaml:"categories"`
	CountPerCategory      map[string]int     `json:"count_per_category" yaml:"count_per_category"`
	PercentagePerCategory map[string]float64 `json:"percentage_per_category" yaml:"percentage_per_category"`
	Mode                  []string           `json:"mode" yaml:"mode"`
	Total                 int                `json:"total" yaml:"total"`
}

func (s *CategoricalStats) Len() int    { return s.Total }
func (s *CategoricalStats) Empty() bool { return s.Total == 0 }

func (t *NumericTarget) Summarize(rows []int) Stats {
	vals := make([]float64, 0, len(rows))
	for _, r := range rows {
		if t.valid[r] {
			vals = append(vals, t.values[r])
		}
	}
	s := &NumericStats{Count: len(vals), Mode: []float64{}}
	if len(vals) == 0 {
		return s
	}
	freq := make(map[float64]int, len(vals))
	for _, v := range vals {
		s.Sum += v
		freq[v]++
	}
	s.Mean = s.Sum / float64(len(vals))
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	s.Median = quantile(sorted, 0.5)
	best := 0
	for _, c := range freq {
		if c > best {
			best = c
		}
	}
	for v, c := range freq {
		if c == best {
			s.Mode = append(s.Mode, v)
		}
	}
	sort.Float64s(s.Mode)
	return s
}

func (t *CategoricalTarget) Summarize(rows []int) Stats {
	counts := map[string]int{}
	total := 0
	for _, r := range rows {
		if !t.valid[r] {
			continue
		}
		counts[t.values[r]]++
		total++
	}
	s := &CategoricalStats{
		Categories:            make([]string, 0, len(counts)),
		CountPerCategory:      counts,
		PercentagePerCategory: make(map[string]float64, len(counts)),
		Mode:                  []string{},
		Total:                 total,
	}
	tops := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	for _, c := range tops {
		s.Categories = append(s.Categories, c.Value)
		s.PercentagePerCategory[c.Value] = percentage(c.Count, total)
		if c.Count == tops[0].Count {
			s.Mode = append(s.Mode, c.Value)
		}
	}
	return s
}

// CategoryCount pairs a category with its occurrence count.
type CategoryCount struct {
	Value string
	Count int
}

// percentage returns 100*n/total rounded to two decimals.
func percentage(n, total int) float64 {
	if total == 0 {
		return 0
	}
	p := decimal.NewFromInt(int64(n)).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(int64(total)))
	return p.Round(2).InexactFloat64()
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
