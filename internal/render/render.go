package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/KaramelBytes/civtab/internal/analysis"
	"github.com/KaramelBytes/civtab/internal/export"
)

// Format selects how a result is printed to the terminal.
type Format string

const (
	Table    Format = "table"
	Markdown Format = "markdown"
	JSON     Format = "json"
	YAML     Format = "yaml"
)

// DefaultMaxRows caps table output when Options.MaxRows is zero.
const DefaultMaxRows = 50

var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat accepts table, markdown (md), json or yaml (yml).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return Table, nil
	case "markdown", "md":
		return Markdown, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: %q (use table, markdown, json or yaml)", ErrUnknownFormat, s)
}

// Options controls Printer.Result.
type Options struct {
	Format Format
	Title  string
	// MaxRows limits table rows; negative prints everything.
	MaxRows int
}

// Printer writes results and status lines to one writer. Colors follow the
// writer's terminal capabilities, so plain buffers get plain text.
type Printer struct {
	w       io.Writer
	success lipgloss.Style
	warning lipgloss.Style
	title   lipgloss.Style
	muted   lipgloss.Style
}

func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		success: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#02BA84", Dark: "#02D98E"}),
		warning: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FFA500"}),
		title:   r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}),
	}
}

// Success prints a check-marked status line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.success.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Warning prints a warning line.
func (p *Printer) Warning(format string, args ...any) {
	fmt.Fprintln(p.w, p.warning.Render("⚠ Warning: "+fmt.Sprintf(format, args...)))
}

// Result prints res in the requested format.
func (p *Printer) Result(res analysis.Tabular, opt Options) error {
	switch opt.Format {
	case Markdown:
		md, ok := res.(interface{ Markdown() string })
		if !ok {
			return fmt.Errorf("%w: markdown not available for %T", ErrUnknownFormat, res)
		}
		_, err := io.WriteString(p.w, md.Markdown())
		return err
	case JSON:
		return export.WriteJSON(p.w, res)
	case YAML:
		return export.WriteYAML(p.w, res)
	case Table, "":
		p.table(res, opt)
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, opt.Format)
}

func (p *Printer) table(res analysis.Tabular, opt Options) {
	if opt.Title != "" {
		fmt.Fprintln(p.w, p.title.Render(opt.Title))
	}
	header, records := res.Header(), res.Records()
	limit := opt.MaxRows
	if limit == 0 {
		limit = DefaultMaxRows
	}
	shown := records
	if limit > 0 && len(records) > limit {
		shown = records[:limit]
	}

	tw := tablewriter.NewWriter(p.w)
	tw.SetHeader(header)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.AppendBulk(shown)
	if len(shown) < len(records) {
		tw.SetCaption(true, fmt.Sprintf("... showing %d of %d rows", len(shown), len(records)))
	}
	tw.Render()

	fmt.Fprintln(p.w, p.muted.Render(fmt.Sprintf("%d rows × %d columns", len(records), len(header))))
	for _, w := range Warnings(res) {
		p.Warning("%s", w)
	}
}

// Warnings returns the warnings attached to a result.
func Warnings(res analysis.Tabular) []string {
	switch r := res.(type) {
	case *analysis.CountResult:
		return r.Warnings
	case *analysis.StatsResult:
		return r.Warnings
	case *analysis.SumResult:
		return r.Warnings
	}
	return nil
}
