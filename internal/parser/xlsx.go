package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/civtab/internal/table"
	"github.com/xuri/excelize/v2"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm")
}

// Load reads one sheet; the first row is the header.
func (xlsxLoader) Load(r io.Reader, opt Options) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f.GetSheetList(), opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return table.New(nil, nil)
	}
	return table.FromRecords(uniqueHeader(rows[0]), rows[1:], opt.Numeric)
}

func pickSheet(sheets []string, name string, index int) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	if name != "" {
		for _, s := range sheets {
			if s == name {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet %q not found (available: %s)", name, strings.Join(sheets, ", "))
	}
	if index == 0 {
		index = 1
	}
	if index < 1 || index > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range (1-%d)", index, len(sheets))
	}
	return sheets[index-1], nil
}
