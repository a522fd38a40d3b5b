package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dimension is one filter column paired with its allowed values, in the order given.
type Dimension struct {
	Column string
	Values []string
}

// FilterSpec is an ordered list of dimensions. Declaration order fixes the
// order of combination labels and result columns.
type FilterSpec []Dimension

// ParseDimension parses "Column=v1,v2". Values are trimmed; the column is
// everything before the first '='. The value list is read as one CSV record,
// so a value holding a comma is written quoted: Municipality="Manila, City of",Quezon.
func ParseDimension(s string) (Dimension, error) {
	col, vals, ok := strings.Cut(s, "=")
	col = strings.TrimSpace(col)
	if !ok || col == "" {
		return Dimension{}, fmt.Errorf("invalid filter %q (want Column=v1,v2)", s)
	}
	d := Dimension{Column: col}
	if strings.TrimSpace(vals) != "" {
		r := csv.NewReader(strings.NewReader(strings.TrimSpace(vals)))
		r.TrimLeadingSpace = true
		rec, err := r.Read()
		if err != nil {
			return Dimension{}, fmt.Errorf("invalid filter values for %q: %w", col, err)
		}
		if _, err := r.Read(); err != io.EOF {
			return Dimension{}, fmt.Errorf("invalid filter values for %q: line breaks are not allowed", col)
		}
		for _, v := range rec {
			if v = strings.TrimSpace(v); v != "" {
				d.Values = append(d.Values, v)
			}
		}
	}
	if len(d.Values) == 0 {
		return Dimension{}, fmt.Errorf("%w: %q lists no values", ErrEmptyFilter, col)
	}
	return d, nil
}

// ParseFilterSpec parses repeated "Column=v1,v2" arguments. Repeating a column
// appends to its value list.
func ParseFilterSpec(args []string) (FilterSpec, error) {
	var spec FilterSpec
	for _, a := range args {
		d, err := ParseDimension(a)
		if err != nil {
			return nil, err
		}
		spec = spec.with(d)
	}
	return spec, nil
}

func (s FilterSpec) with(d Dimension) FilterSpec {
	for i := range s {
		if s[i].Column == d.Column {
			s[i].Values = append(s[i].Values, d.Values...)
			return s
		}
	}
	return append(s, d)
}

// Columns returns the dimension columns in order.
func (s FilterSpec) Columns() []string {
	out := make([]string, len(s))
	for i, d := range s {
		out[i] = d.Column
	}
	return out
}

// String renders the spec as "A=x,y; B=z".
func (s FilterSpec) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = d.Column + "=" + strings.Join(d.Values, ",")
	}
	return strings.Join(parts, "; ")
}

// normalize drops repeated values within a dimension, keeping first occurrences.
func (s FilterSpec) normalize() (FilterSpec, []string, error) {
	out := make(FilterSpec, 0, len(s))
	var warnings []string
	for _, d := range s {
		if len(d.Values) == 0 {
			return nil, nil, fmt.Errorf("%w: %q lists no values", ErrEmptyFilter, d.Column)
		}
		seen := make(map[string]struct{}, len(d.Values))
		nd := Dimension{Column: d.Column}
		for _, v := range d.Values {
			if _, dup := seen[v]; dup {
				warnings = append(warnings, fmt.Sprintf("duplicate value %q for column %q ignored", v, d.Column))
				continue
			}
			seen[v] = struct{}{}
			nd.Values = append(nd.Values, v)
		}
		out = append(out, nd)
	}
	return out, warnings, nil
}

// Combination is one cell of the Cartesian product over a FilterSpec.
type Combination struct {
	Label  string
	Values []string // one per dimension, in dimension order
}

// Combinations enumerates the Cartesian product of the dimensions' values.
// The first dimension varies slowest. Labels join "{col}_{val}" pairs with '_'.
func (s FilterSpec) Combinations() []Combination {
	if len(s) == 0 {
		return nil
	}
	total := 1
	for _, d := range s {
		total *= len(d.Values)
	}
	out := make([]Combination, 0, total)
	idx := make([]int, len(s))
	for n := 0; n < total; n++ {
		vals := make([]string, len(s))
		parts := make([]string, len(s))
		for i, d := range s {
			vals[i] = d.Values[idx[i]]
			parts[i] = d.Column + "_" + vals[i]
		}
		out = append(out, Combination{Label: strings.Join(parts, "_"), Values: vals})
		for i := len(s) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(s[i].Values) {
				break
			}
			idx[i] = 0
		}
	}
	return out
}

// UnmarshalYAML decodes a mapping of column to value list, keeping key order.
// Scalars are accepted as single-value lists.
func (s *FilterSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: filters must be a mapping of column to values", node.Line)
	}
	out := make(FilterSpec, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		d := Dimension{Column: key.Value}
		switch val.Kind {
		case yaml.ScalarNode:
			d.Values = []string{val.Value}
		case yaml.SequenceNode:
			for _, item := range val.Content {
				if item.Kind != yaml.ScalarNode {
					return fmt.Errorf("line %d: filter %q values must be scalars", item.Line, d.Column)
				}
				d.Values = append(d.Values, item.Value)
			}
		default:
			return fmt.Errorf("line %d: filter %q must be a value or a list", val.Line, d.Column)
		}
		out = append(out, d)
	}
	*s = out
	return nil
}

// MarshalYAML encodes the spec as an ordered mapping.
func (s FilterSpec) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, d := range s {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, v := range d.Values {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v})
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: d.Column}, seq)
	}
	return node, nil
}
