package table

import (
	"strconv"
	"strings"
)

// InferOptions controls how raw text cells become typed Values.
type InferOptions struct {
	// ThousandsSeparator is stripped from numeric-looking cells. 0 disables
	// stripping, so "1,234" stays text like any other non-number.
	ThousandsSeparator rune
	// DecimalSeparator defaults to '.'. Set it to ',' for locales that write
	// "1.234,50"; the thousands separator must then differ.
	DecimalSeparator rune
	// KeepText disables numeric inference entirely.
	KeepText bool
}

var naTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "#N/A": {}, "#NA": {}, "<NA>": {}, "#N/A N/A": {},
}

// IsNA reports whether a raw cell denotes a missing value.
func IsNA(raw string) bool {
	_, ok := naTokens[strings.TrimSpace(raw)]
	return ok
}

// FromRecords builds a typed table from a header and raw text records, inferring
// one type per column: Int when every non-missing cell is an integer, Float when
// every non-missing cell is a number, and String otherwise.
func FromRecords(header []string, records [][]string, opt InferOptions) (*Table, error) {
	ncol := len(header)
	cols := make([]string, ncol)
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}
	rows := make([][]Value, len(records))
	for i := range rows {
		rows[i] = make([]Value, ncol)
	}
	for j := 0; j < ncol; j++ {
		kind := Null
		if !opt.KeepText {
			kind = inferColumn(records, j, opt)
		}
		for i, rec := range records {
			raw := ""
			if j < len(rec) {
				raw = rec[j]
			}
			rows[i][j] = typedCell(raw, kind, opt)
		}
	}
	return New(cols, rows)
}

func inferColumn(records [][]string, j int, opt InferOptions) Kind {
	kind := Null
	for _, rec := range records {
		if j >= len(rec) || IsNA(rec[j]) {
			continue
		}
		raw := strings.TrimSpace(rec[j])
		if _, ok := parseInt(raw, opt); ok {
			if kind == Null {
				kind = Int
			}
			continue
		}
		if _, ok := ParseNumber(raw, opt); ok {
			kind = Float
			continue
		}
		return String
	}
	return kind
}

func typedCell(raw string, kind Kind, opt InferOptions) Value {
	if IsNA(raw) {
		return NullValue()
	}
	s := strings.TrimSpace(raw)
	switch kind {
	case Int:
		i, _ := parseInt(s, opt)
		return IntValue(i)
	case Float:
		f, _ := ParseNumber(s, opt)
		return FloatValue(f)
	}
	return StringValue(raw)
}

func parseInt(s string, opt InferOptions) (int64, bool) {
	if opt.ThousandsSeparator != 0 {
		s = stripThousands(s, opt.ThousandsSeparator, opt.decimal())
	}
	i, err := strconv.ParseInt(s, 10, 64)
	return i, err == nil
}

// ParseNumber parses a numeric cell honoring the configured separators.
func ParseNumber(s string, opt InferOptions) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	if raw == "" {
		return 0, false
	}
	dec := opt.decimal()
	if opt.ThousandsSeparator != 0 {
		raw = stripThousands(raw, opt.ThousandsSeparator, dec)
	}
	if dec != '.' {
		if strings.ContainsRune(raw, '.') {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (o InferOptions) decimal() rune {
	if o.DecimalSeparator == 0 {
		return '.'
	}
	return o.DecimalSeparator
}

// stripThousands removes sep only when the remainder is digit groups, so text
// like "Smith, John" is left alone. dec marks where the fraction starts.
func stripThousands(s string, sep, dec rune) string {
	if !strings.ContainsRune(s, sep) {
		return s
	}
	parts := strings.Split(s, string(sep))
	for i, p := range parts {
		body := p
		if i == 0 {
			body = strings.TrimLeft(p, "+-")
		}
		if i == len(parts)-1 {
			if k := strings.IndexAny(body, string(dec)+"eE"); k >= 0 {
				body = body[:k]
			}
		}
		if body == "" || strings.Trim(body, "0123456789") != "" {
			return s
		}
		if i > 0 && len(body) != 3 {
			return s
		}
	}
	return strings.Join(parts, "")
}

// ToNumeric coerces a cell to a number the way a lenient numeric cast would:
// numbers pass through, text is parsed after removing thousands separators
// (',' when opt leaves it unset and ',' is not the decimal mark), and anything
// else becomes Null.
func ToNumeric(v Value, opt InferOptions) Value {
	if v.IsNumeric() || v.IsNull() {
		return v
	}
	s, _ := v.Str()
	if IsNA(s) {
		return NullValue()
	}
	if opt.ThousandsSeparator == 0 && opt.decimal() != ',' {
		opt.ThousandsSeparator = ','
	}
	s = strings.TrimSpace(s)
	if i, ok := parseInt(s, opt); ok {
		return IntValue(i)
	}
	if f, ok := ParseNumber(s, opt); ok {
		return FloatValue(f)
	}
	return NullValue()
}
