package analysis

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/KaramelBytes/civtab/internal/table"
	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, header []string, rows ...[]string) *table.Table {
	t.Helper()
	tbl, err := table.FromRecords(header, rows, table.InferOptions{ThousandsSeparator: ','})
	require.NoError(t, err)
	return tbl
}

// removals mirrors the shape of a patient-removal roster.
func removals(t *testing.T) *table.Table {
	return mustTable(t, []string{"Sex", "RemovalType", "Region", "AgeGroup"},
		[]string{"MALE", "RECOVERED", "NCR", "35 to 39"},
		[]string{"MALE", "DIED", "NCR", "60 to 64"},
		[]string{"FEMALE", "RECOVERED", "CALABARZON", "20 to 24"},
		[]string{"FEMALE", "RECOVERED", "NCR", ""},
		[]string{"MALE", "RECOVERED", "CALABARZON", "40"},
	)
}

func newTestAnalyzer(opt Options) (*Analyzer, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(opt, logger), &buf
}
