package export

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/civtab/internal/analysis"
	"github.com/KaramelBytes/civtab/internal/table"
	"github.com/KaramelBytes/civtab/internal/utils"
)

// Format is an export file format.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	JSON Format = "json"
	YAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for output extensions without a writer.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Options configures exports.
type Options struct {
	// BOM prefixes CSV output with a UTF-8 byte order mark for Excel.
	BOM bool
	// Sheet names the XLSX worksheet; defaults to "Results".
	Sheet string
	// Dir resolves relative output paths.
	Dir    string
	Logger *slog.Logger
}

// FormatFor picks the format from path's extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV, nil
	case ".xlsx":
		return XLSX, nil
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: %q (use .csv, .xlsx, .json or .yaml)", ErrUnsupportedFormat, filepath.Ext(path))
}

// ToFile writes res to path in the format implied by its extension and
// returns the resolved path.
func ToFile(path string, res analysis.Tabular, opt Options) (string, error) {
	format, err := FormatFor(path)
	if err != nil {
		return "", err
	}
	full := utils.ExpandHome(path)
	if opt.Dir != "" && !filepath.IsAbs(full) {
		full = filepath.Join(opt.Dir, full)
	}
	if err := utils.EnsureDir(filepath.Dir(full)); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if opt.Logger != nil {
		opt.Logger.Info("writing export",
			slog.String("file_path", full),
			slog.String("format", string(format)),
			slog.Int("record_count", len(res.Records())))
	}

	if format == XLSX {
		sheet := opt.Sheet
		if sheet == "" {
			sheet = "Results"
		}
		header, rows := Rows(res)
		return full, WriteXLSX(full, sheet, header, rows)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	switch format {
	case CSV:
		err = WriteCSV(f, res.Header(), res.Records(), opt.BOM)
	case JSON:
		err = WriteJSON(f, res)
	case YAML:
		err = WriteYAML(f, res)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", err
	}
	return full, nil
}

// Rows returns res as a header plus typed cells: numbers stay numbers and
// null key parts are nil.
func Rows(res analysis.Tabular) ([]string, [][]any) {
	header := res.Header()
	switch r := res.(type) {
	case *analysis.CountResult:
		out := make([][]any, len(r.Keys))
		for i, k := range r.Keys {
			row := keyCells(k)
			for _, n := range r.Counts[i] {
				row = append(row, n)
			}
			out[i] = row
		}
		return header, out
	case *analysis.SumResult:
		out := make([][]any, len(r.Keys))
		for i, k := range r.Keys {
			out[i] = append(keyCells(k), r.Sums[i])
		}
		return header, out
	}
	recs := res.Records()
	out := make([][]any, len(recs))
	for i, rec := range recs {
		row := make([]any, len(rec))
		for j, s := range rec {
			row[j] = s
		}
		out[i] = row
	}
	return header, out
}

func keyCells(k table.GroupKey) []any {
	if len(k) == 0 {
		return []any{k.String()}
	}
	out := make([]any, len(k))
	for i, v := range k {
		out[i] = cellValue(v)
	}
	return out
}

func cellValue(v table.Value) any {
	switch v.Kind() {
	case table.Int:
		i, _ := v.Int()
		return i
	case table.Float:
		f, _ := v.Float()
		return f
	case table.String:
		return v.String()
	}
	return nil
}
