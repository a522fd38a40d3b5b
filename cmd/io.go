package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/KaramelBytes/civtab/internal/analysis"
	"github.com/KaramelBytes/civtab/internal/export"
	"github.com/KaramelBytes/civtab/internal/parser"
	"github.com/KaramelBytes/civtab/internal/render"
	"github.com/KaramelBytes/civtab/internal/table"
	"github.com/spf13/cobra"
)

// ioFlags are the input and output flags shared by the analysis commands.
type ioFlags struct {
	encoding   string
	delimiter  string
	thousands  string
	decimal    string
	sheetName  string
	sheetIndex int
	keepText   bool
	derive     []string

	format  string
	maxRows int
	outputs []string
	title   string
}

func (f *ioFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.encoding, "encoding", "", "input text encoding: utf-8|latin-1|windows-1252|<IANA name> (default from config)")
	fl.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: auto|','|';'|'tab'|'pipe' (default from config)")
	fl.StringVar(&f.thousands, "thousands", "", "thousands separator stripped from numbers: ','|'.'|'space'|'none' (default from config)")
	fl.StringVar(&f.decimal, "decimal", "", "decimal mark for numbers: '.'|'comma' (default '.')")
	fl.StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to load")
	fl.IntVar(&f.sheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	fl.BoolVar(&f.keepText, "text", false, "keep every cell as text (preserves codes like 0012)")
	fl.StringArrayVar(&f.derive, "derive", nil, "add a column name=ratio(num,den) or name=days(end,start) (repeatable)")
	fl.StringVar(&f.format, "format", "table", "output format: table|markdown|json|yaml")
	fl.IntVar(&f.maxRows, "max-rows", 0, "maximum table rows to print (0 = config default, -1 = all)")
	fl.StringArrayVarP(&f.outputs, "output", "o", nil, "export results to a file; format by extension .csv|.xlsx|.json|.yaml (repeatable)")
	fl.StringVar(&f.title, "title", "", "title printed above the table")
}

// parseThousands maps a separator name to a rune; empty and "none" disable stripping.
func parseThousands(s string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ".", "dot":
		return '.', nil
	case "space", " ":
		return ' ', nil
	case "'", "apostrophe":
		return '\'', nil
	}
	return 0, fmt.Errorf("unsupported thousands separator: %s (use ','|'.'|'space'|'none')", s)
}

func parseDecimal(s string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", ".", "dot":
		return '.', nil
	case ",", "comma":
		return ',', nil
	}
	return 0, fmt.Errorf("unsupported decimal mark: %s (use '.'|'comma')", s)
}

// numberFormat resolves the separators. A thousands separator taken from config
// that clashes with a comma decimal mark switches to '.'.
func numberFormat(thousands *string, decimal string) (table.InferOptions, error) {
	dec, err := parseDecimal(decimal)
	if err != nil {
		return table.InferOptions{}, err
	}
	thName := cfg.ThousandsSep
	if thousands != nil {
		thName = *thousands
	}
	th, err := parseThousands(thName)
	if err != nil {
		return table.InferOptions{}, err
	}
	if th == dec {
		if thousands != nil {
			return table.InferOptions{}, fmt.Errorf("thousands separator and decimal mark are both %q", th)
		}
		th = '.'
	}
	return table.InferOptions{ThousandsSeparator: th, DecimalSeparator: dec}, nil
}

// input describes where a table comes from; empty fields fall back to config.
type input struct {
	path       string
	encoding   string
	delimiter  string
	thousands  *string
	decimal    string
	sheetName  string
	sheetIndex int
	keepText   bool
}

func (f *ioFlags) input(cmd *cobra.Command, path string) input {
	in := input{
		path:       path,
		encoding:   f.encoding,
		delimiter:  f.delimiter,
		decimal:    f.decimal,
		sheetName:  f.sheetName,
		sheetIndex: f.sheetIndex,
		keepText:   f.keepText,
	}
	if cmd.Flags().Changed("thousands") {
		in.thousands = &f.thousands
	}
	return in
}

// loadTable parses the input file and returns it with the number format in
// effect, which numeric coercion reuses.
func loadTable(in input) (*table.Table, table.InferOptions, error) {
	enc := in.encoding
	if enc == "" {
		enc = cfg.DefaultEncoding
	}
	delimName := in.delimiter
	if delimName == "" {
		delimName = cfg.DefaultDelimiter
	}
	delim, err := parser.ParseDelimiter(delimName)
	if err != nil {
		return nil, table.InferOptions{}, err
	}
	numeric, err := numberFormat(in.thousands, in.decimal)
	if err != nil {
		return nil, table.InferOptions{}, err
	}
	inferred := numeric
	inferred.KeepText = in.keepText

	t, err := parser.ParseFile(in.path, parser.Options{
		Encoding:   enc,
		Delimiter:  delim,
		SheetName:  in.sheetName,
		SheetIndex: in.sheetIndex,
		Numeric:    inferred,
	})
	if err != nil {
		return nil, table.InferOptions{}, err
	}
	logger.InfoContext(runCtx, "loaded table",
		slog.String("file_path", in.path),
		slog.Int("rows", t.Len()),
		slog.Int("columns", len(t.Columns())))
	return t, numeric, nil
}

// newAnalyzer builds an analyzer from config; a non-empty rangeMethod overrides it.
func newAnalyzer(numeric table.InferOptions, rangeMethod string) (*analysis.Analyzer, error) {
	name := cfg.RangeMethod
	if rangeMethod != "" {
		name = rangeMethod
	}
	method, err := analysis.ParseRangeMethod(name)
	if err != nil {
		return nil, err
	}
	opt := analysis.DefaultOptions()
	opt.RangeMethod = method
	if cfg.RangeSampleSize > 0 {
		opt.RangeSampleSize = cfg.RangeSampleSize
	}
	opt.StrictColumns = cfg.StrictColumns
	opt.Numeric = numeric
	return analysis.New(opt, logger).WithContext(runCtx), nil
}

// derive appends the derived columns given by specs to t.
func derive(a *analysis.Analyzer, t *table.Table, specs []string) (*table.Table, []string, error) {
	if len(specs) == 0 {
		return t, nil, nil
	}
	derivs, err := analysis.ParseDerivations(specs)
	if err != nil {
		return nil, nil, err
	}
	return a.Derive(t, derivs)
}

// emit prints res and writes every requested export. Structured formats keep
// stdout clean by sending status lines to stderr.
func emit(cmd *cobra.Command, res analysis.Tabular, f *ioFlags, extraOutputs ...string) error {
	format, err := render.ParseFormat(f.format)
	if err != nil {
		return err
	}
	maxRows := cfg.MaxDisplayRows
	if cmd.Flags().Changed("max-rows") {
		maxRows = f.maxRows
	}
	out := render.New(cmd.OutOrStdout())
	status := out
	if format == render.JSON || format == render.YAML {
		status = render.New(cmd.ErrOrStderr())
	}
	if err := out.Result(res, render.Options{Format: format, Title: f.title, MaxRows: maxRows}); err != nil {
		return err
	}

	for _, o := range append(append([]string(nil), extraOutputs...), f.outputs...) {
		path, err := export.ToFile(o, res, export.Options{
			BOM:    cfg.CSVBOM,
			Dir:    cfg.OutputDir,
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("export %s: %w", o, err)
		}
		status.Success("Wrote %s", path)
	}
	return nil
}
