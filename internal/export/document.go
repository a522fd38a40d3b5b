package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/KaramelBytes/civtab/internal/analysis"
	"gopkg.in/yaml.v3"
)

// orderedRow is one result row that keeps its column order when encoded.
type orderedRow struct {
	keys []string
	vals []any
}

func (r orderedRow) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.vals[i])
		if err != nil {
			return nil, err
		}
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (r orderedRow) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for i, k := range r.keys {
		var val yaml.Node
		if err := val.Encode(r.vals[i]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, &val)
	}
	return node, nil
}

// Document returns the structured form of res: statistics stay a nested
// mapping, tabular results become a list of ordered rows.
func Document(res analysis.Tabular) any {
	if s, ok := res.(*analysis.StatsResult); ok {
		return s
	}
	header, rows := Rows(res)
	out := make([]orderedRow, len(rows))
	for i, row := range rows {
		out[i] = orderedRow{keys: header, vals: row}
	}
	return out
}

// WriteJSON encodes Document(res) as indented JSON.
func WriteJSON(w io.Writer, res analysis.Tabular) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document(res)); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteYAML encodes Document(res) as YAML.
func WriteYAML(w io.Writer, res analysis.Tabular) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Document(res)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
