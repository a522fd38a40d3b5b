package analysis

import (
	"context"
	"io"
	"log/slog"

	"github.com/KaramelBytes/civtab/internal/table"
)

// Options controls analysis behavior.
type Options struct {
	// RangeMethod picks the number that replaces an "N to M" bucket.
	RangeMethod RangeMethod
	// RangeSampleSize bounds how many non-null target values the range sniff inspects.
	RangeSampleSize int
	// StrictColumns turns a missing filter column into ErrColumnNotFound instead
	// of a warning.
	StrictColumns bool
	// Numeric configures coercion of text to numbers in SumBy.
	Numeric table.InferOptions
}

// DefaultOptions returns reasonable defaults for civic datasets.
func DefaultOptions() Options {
	return Options{
		RangeMethod:     Midpoint,
		RangeSampleSize: DefaultRangeSampleSize,
		Numeric:         table.InferOptions{ThousandsSeparator: ','},
	}
}

// Analyzer runs filter, count and statistics operations over in-memory tables.
// It holds no per-call state; one Analyzer may be reused across tables.
type Analyzer struct {
	opt Options
	log *slog.Logger
	ctx context.Context
}

// New returns an Analyzer. A nil logger discards diagnostics; warnings are
// still returned on every result.
func New(opt Options, logger *slog.Logger) *Analyzer {
	if opt.RangeMethod == "" {
		opt.RangeMethod = Midpoint
	}
	if opt.RangeSampleSize <= 0 {
		opt.RangeSampleSize = DefaultRangeSampleSize
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Analyzer{opt: opt, log: logger, ctx: context.Background()}
}

// WithContext returns a copy of a that logs with ctx, so handlers can pick up
// request-scoped values such as a run ID.
func (a *Analyzer) WithContext(ctx context.Context) *Analyzer {
	c := *a
	c.ctx = ctx
	return &c
}

func (a *Analyzer) warn(warnings *[]string, msg string, attrs ...slog.Attr) {
	*warnings = append(*warnings, msg)
	a.log.LogAttrs(a.ctx, slog.LevelWarn, msg, attrs...)
}

func (a *Analyzer) groupColumns(t *table.Table, cols []string) error {
	for _, c := range cols {
		if !t.HasColumn(c) {
			return &ColumnNotFoundError{Column: c, Role: "group"}
		}
	}
	return nil
}
