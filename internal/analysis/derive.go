package analysis

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/KaramelBytes/civtab/internal/table"
)

// DeriveOp names how a derived column is computed from its two sources.
type DeriveOp string

const (
	// Ratio divides the first column by the second.
	Ratio DeriveOp = "ratio"
	// Days is the whole number of days from the second date to the first.
	Days DeriveOp = "days"
)

// Derivation adds column Name computed as Op(Args[0], Args[1]).
type Derivation struct {
	Name string
	Op   DeriveOp
	Args [2]string
}

func (d Derivation) String() string {
	return fmt.Sprintf("%s=%s(%s,%s)", d.Name, d.Op, d.Args[0], d.Args[1])
}

var derivationRE = regexp.MustCompile(`^\s*([^=]+?)\s*=\s*(\w+)\(\s*([^,]+?)\s*,\s*([^)]+?)\s*\)\s*$`)

// ParseDerivation reads "vote_share=ratio(Votes,TotalVotes)" or
// "duration_days=days(Completed,Started)".
func ParseDerivation(s string) (Derivation, error) {
	m := derivationRE.FindStringSubmatch(s)
	if m == nil {
		return Derivation{}, fmt.Errorf("invalid derived column %q: want name=op(col,col)", s)
	}
	d := Derivation{Name: m[1], Op: DeriveOp(strings.ToLower(m[2])), Args: [2]string{m[3], m[4]}}
	switch d.Op {
	case Ratio, Days:
		return d, nil
	}
	return Derivation{}, fmt.Errorf("invalid derived column %q: unknown op %q (use ratio|days)", s, m[2])
}

// ParseDerivations parses every entry of specs in order.
func ParseDerivations(specs []string) ([]Derivation, error) {
	out := make([]Derivation, 0, len(specs))
	for _, s := range specs {
		d, err := ParseDerivation(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Derive returns a copy of t with each derivation appended in order, so later
// ones may read earlier results. Cells that cannot be computed become null: a
// zero or empty denominator, or a date that does not parse.
func (a *Analyzer) Derive(t *table.Table, derivs []Derivation) (*table.Table, []string, error) {
	var warnings []string
	for _, d := range derivs {
		left, ok := t.Column(d.Args[0])
		if !ok {
			return nil, nil, &ColumnNotFoundError{Column: d.Args[0], Role: "derive"}
		}
		right, ok := t.Column(d.Args[1])
		if !ok {
			return nil, nil, &ColumnNotFoundError{Column: d.Args[1], Role: "derive"}
		}
		vals := make([]table.Value, t.Len())
		nulls := 0
		for i := range vals {
			switch d.Op {
			case Ratio:
				vals[i] = a.ratio(left[i], right[i])
			case Days:
				vals[i] = daysBetween(left[i], right[i])
			}
			if vals[i].IsNull() && !left[i].IsNull() && !right[i].IsNull() {
				nulls++
			}
		}
		if nulls > 0 {
			a.warn(&warnings, fmt.Sprintf("%d row(s) of %q could not be computed and were left empty", nulls, d.Name),
				slog.String("column", d.Name), slog.Int("rows", nulls))
		}
		next, err := t.WithColumn(d.Name, vals)
		if err != nil {
			return nil, nil, err
		}
		t = next
		a.log.DebugContext(a.ctx, "derived column", slog.String("derivation", d.String()))
	}
	return t, warnings, nil
}

func (a *Analyzer) ratio(num, den table.Value) table.Value {
	n, ok := table.ToNumeric(num, a.opt.Numeric).Float()
	if !ok {
		return table.NullValue()
	}
	d, ok := table.ToNumeric(den, a.opt.Numeric).Float()
	if !ok || d == 0 {
		return table.NullValue()
	}
	return table.FloatValue(n / d)
}

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

func parseDate(v table.Value) (time.Time, bool) {
	s, ok := v.Str()
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func daysBetween(end, start table.Value) table.Value {
	e, ok := parseDate(end)
	if !ok {
		return table.NullValue()
	}
	s, ok := parseDate(start)
	if !ok {
		return table.NullValue()
	}
	return table.IntValue(int64(math.Floor(e.Sub(s).Hours() / 24)))
}
