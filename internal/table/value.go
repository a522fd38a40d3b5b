package table

import (
	"math"
	"strconv"
)

// Kind identifies the runtime type held by a Value.
type Kind uint8

const (
	Null Kind = iota
	String
	Int
	Float
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	default:
		return "null"
	}
}

// Value is a single table cell.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
}

// NullValue returns the missing value.
func NullValue() Value { return Value{} }

func StringValue(s string) Value { return Value{kind: String, s: s} }

func IntValue(i int64) Value { return Value{kind: Int, i: i} }

// FloatValue wraps f; NaN is stored as Null.
func FloatValue(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: Float, f: f}
}

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsNull() bool    { return v.kind == Null }
func (v Value) IsNumeric() bool { return v.kind == Int || v.kind == Float }

// Float returns the numeric value of an Int or Float cell.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case Int:
		return float64(v.i), true
	case Float:
		return v.f, true
	}
	return 0, false
}

// Int returns the integer held by an Int cell.
func (v Value) Int() (int64, bool) {
	if v.kind == Int {
		return v.i, true
	}
	return 0, false
}

// Str returns the text held by a String cell.
func (v Value) Str() (string, bool) {
	if v.kind == String {
		return v.s, true
	}
	return "", false
}

// String renders the cell the way it would be written back to CSV.
// Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case String:
		return v.s
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return FormatFloat(v.f)
	}
	return ""
}

// FormatFloat prints whole numbers without a fraction and everything else in
// shortest round-trip form.
func FormatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Equal reports whether two cells hold the same value. Int and Float compare
// numerically; Null is never equal to anything.
func (v Value) Equal(o Value) bool {
	if v.kind == Null || o.kind == Null {
		return false
	}
	if v.IsNumeric() && o.IsNumeric() {
		a, _ := v.Float()
		b, _ := o.Float()
		return a == b
	}
	return v.kind == String && o.kind == String && v.s == o.s
}

// Compare orders values ascending: Null first, then numbers, then strings.
func Compare(a, b Value) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case 1:
		x, _ := a.Float()
		y, _ := b.Float()
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case 2:
		switch {
		case a.s < b.s:
			return -1
		case a.s > b.s:
			return 1
		}
	}
	return 0
}

func rank(v Value) int {
	switch v.kind {
	case Int, Float:
		return 1
	case String:
		return 2
	}
	return 0
}

// MatchesText reports whether the cell equals want, a user-supplied literal.
// Text cells compare exactly; numeric cells compare against want parsed as a number.
func (v Value) MatchesText(want string) bool {
	switch v.kind {
	case String:
		return v.s == want
	case Int, Float:
		f, err := strconv.ParseFloat(want, 64)
		if err != nil {
			return false
		}
		x, _ := v.Float()
		return x == f
	}
	return false
}
