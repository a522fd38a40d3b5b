package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/civtab/internal/table"
)

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvLoader) Load(r io.Reader, opt Options) (*table.Table, error) {
	dr, err := decodeReader(r, opt.Encoding)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(dr)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = opt.Delimiter
	if cr.Comma == 0 {
		cr.Comma = ','
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return table.New(nil, nil)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return table.FromRecords(uniqueHeader(header), records, opt.Numeric)
}

// uniqueHeader names blank columns "Unnamed: i" and suffixes repeats ".1", ".2".
func uniqueHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for n := 1; seen[name]; n++ {
			name = fmt.Sprintf("%s.%d", h, n)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}
