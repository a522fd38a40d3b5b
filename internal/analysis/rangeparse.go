package analysis

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/KaramelBytes/civtab/internal/table"
)

// RangeMethod selects which number represents a "low to high" bucket.
type RangeMethod string

const (
	Midpoint RangeMethod = "midpoint"
	Min      RangeMethod = "min"
	Max      RangeMethod = "max"
)

// DefaultRangeSampleSize is how many non-null values the range sniff looks at.
const DefaultRangeSampleSize = 20

var (
	digitRun     = regexp.MustCompile(`\d+`)
	rangePattern = regexp.MustCompile(`\d+\s*to\s*\d+`)
)

// ParseRangeMethod validates a method name. The empty string means midpoint.
func ParseRangeMethod(s string) (RangeMethod, error) {
	switch m := RangeMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return Midpoint, nil
	case Midpoint, Min, Max:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q (use midpoint|min|max)", ErrInvalidRangeMethod, s)
}

// ParseRange converts a bucket like "35 to 39" into one number. Two digit runs
// are the inclusive bounds: midpoint yields a Float, min and max yield an Int.
// A single run is returned as an Int. Anything else yields Null.
func ParseRange(text string, method RangeMethod) table.Value {
	runs := digitRun.FindAllString(text, -1)
	switch len(runs) {
	case 1:
		n, err := strconv.ParseInt(runs[0], 10, 64)
		if err != nil {
			return table.NullValue()
		}
		return table.IntValue(n)
	case 2:
		lo, err1 := strconv.ParseInt(runs[0], 10, 64)
		hi, err2 := strconv.ParseInt(runs[1], 10, 64)
		if err1 != nil || err2 != nil {
			return table.NullValue()
		}
		switch method {
		case Midpoint, "":
			return table.FloatValue((float64(lo) + float64(hi)) / 2)
		case Min:
			return table.IntValue(lo)
		case Max:
			return table.IntValue(hi)
		}
	}
	return table.NullValue()
}

// LooksLikeRangeColumn is the range sniff: true when at least one of the first
// sampleSize non-null values contains an "N to M" pattern.
func LooksLikeRangeColumn(vals []table.Value, sampleSize int) bool {
	if sampleSize <= 0 {
		sampleSize = DefaultRangeSampleSize
	}
	seen := 0
	for _, v := range vals {
		if v.IsNull() {
			continue
		}
		if rangePattern.MatchString(v.String()) {
			return true
		}
		seen++
		if seen >= sampleSize {
			break
		}
	}
	return false
}

// ConvertRanges maps every cell through ParseRange into a new slice.
func ConvertRanges(vals []table.Value, method RangeMethod) []table.Value {
	out := make([]table.Value, len(vals))
	for i, v := range vals {
		if v.IsNull() {
			continue
		}
		out[i] = ParseRange(v.String(), method)
	}
	return out
}
