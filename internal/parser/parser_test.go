package parser_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/civtab/internal/parser"
	"github.com/KaramelBytes/civtab/internal/table"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const tally = "Candidate,Municipality,Votes\n" +
	"Alice,Bay,\"1,234\"\n" +
	"Bob,Bay,880\n" +
	"Alice,Calauan,15\n"

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func numericOpts() parser.Options {
	return parser.Options{Numeric: table.InferOptions{ThousandsSeparator: ','}}
}

func TestParseFileCSV(t *testing.T) {
	p := writeFile(t, "tally.csv", []byte(tally))
	tbl, err := parser.ParseFile(p, numericOpts())
	require.NoError(t, err)
	assert.Equal(t, []string{"Candidate", "Municipality", "Votes"}, tbl.Columns())
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, table.Int, tbl.ColumnKind("Votes"))

	tbl, err = parser.ParseFile(p, parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, table.String, tbl.ColumnKind("Votes"), "without a thousands separator 1,234 stays text")
}

func TestParseFileTSVAndDelimiter(t *testing.T) {
	p := writeFile(t, "a.tsv", []byte("Region\tCount\nNCR\t4\n"))
	tbl, err := parser.ParseFile(p, parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Region", "Count"}, tbl.Columns())

	p = writeFile(t, "b.csv", []byte("Region;Count\nNCR;4\n"))
	tbl, err = parser.ParseFile(p, parser.Options{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"Region", "Count"}, tbl.Columns())
}

func TestParseFileCompressed(t *testing.T) {
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write([]byte(tally))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	tbl, err := parser.ParseFile(writeFile(t, "tally.csv.gz", gz.Bytes()), numericOpts())
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	var zs bytes.Buffer
	enc, err := zstd.NewWriter(&zs)
	require.NoError(t, err)
	_, err = enc.Write([]byte(tally))
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	tbl, err = parser.ParseFile(writeFile(t, "tally.csv.zst", zs.Bytes()), numericOpts())
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())
}

func TestParseFileEncodings(t *testing.T) {
	latin := []byte("Name,Town\nPe\xf1a,Para\xf1aque\n")
	tbl, err := parser.ParseFile(writeFile(t, "latin.csv", latin), parser.Options{Encoding: "latin-1"})
	require.NoError(t, err)
	assert.Equal(t, "Peña", tbl.At(0, 0).String())
	assert.Equal(t, "Parañaque", tbl.At(0, 1).String())

	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Region,Count\nNCR,1\n")...)
	tbl, err = parser.ParseFile(writeFile(t, "bom.csv", bom), parser.Options{})
	require.NoError(t, err)
	assert.True(t, tbl.HasColumn("Region"), "BOM must not leak into the first header")

	_, err = parser.ParseFile(writeFile(t, "x.csv", []byte("a\n1\n")), parser.Options{Encoding: "klingon"})
	assert.ErrorIs(t, err, parser.ErrUnsupported)
}

func TestParseFileHeaderCleanup(t *testing.T) {
	p := writeFile(t, "dup.csv", []byte("Votes,Votes,,Votes\n1,2,3,4\n"))
	tbl, err := parser.ParseFile(p, parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Votes", "Votes.1", "Unnamed: 2", "Votes.2"}, tbl.Columns())

	tbl, err = parser.ParseFile(writeFile(t, "empty.csv", nil), parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
}

func TestParseFileXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Ignored"}))
	_, err := f.NewSheet("Tally")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Tally", "A1", &[]any{"Candidate", "Votes"}))
	require.NoError(t, f.SetSheetRow("Tally", "A2", &[]any{"Alice", 1200}))
	require.NoError(t, f.SetSheetRow("Tally", "A3", &[]any{"Bob", 880}))
	p := filepath.Join(t.TempDir(), "tally.xlsx")
	require.NoError(t, f.SaveAs(p))
	require.NoError(t, f.Close())

	tbl, err := parser.ParseFile(p, parser.Options{SheetName: "Tally"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Candidate", "Votes"}, tbl.Columns())
	assert.Equal(t, table.Int, tbl.ColumnKind("Votes"))

	tbl, err = parser.ParseFile(p, parser.Options{SheetIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	tbl, err = parser.ParseFile(p, parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ignored"}, tbl.Columns())

	_, err = parser.ParseFile(p, parser.Options{SheetName: "Missing"})
	assert.ErrorContains(t, err, "available: Sheet1, Tally")
	_, err = parser.ParseFile(p, parser.Options{SheetIndex: 5})
	assert.Error(t, err)
}

func TestParseFileUnsupported(t *testing.T) {
	_, err := parser.ParseFile(writeFile(t, "notes.docx", []byte("x")), parser.Options{})
	assert.ErrorIs(t, err, parser.ErrUnsupported)
	assert.True(t, parser.Supported("a.CSV.gz"))
	assert.False(t, parser.Supported("a.json"))
}

func TestParseDelimiter(t *testing.T) {
	cases := map[string]rune{"": 0, "auto": 0, "tab": '\t', `\t`: '\t', ";": ';', "pipe": '|'}
	for in, want := range cases {
		got, err := parser.ParseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parser.ParseDelimiter(";;")
	assert.Error(t, err)
}
