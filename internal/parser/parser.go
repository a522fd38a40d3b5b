package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/civtab/internal/table"
)

// Options controls how a file becomes a table.
type Options struct {
	// Encoding of text formats: utf-8 (default), latin-1, windows-1252, or any IANA name.
	Encoding string
	// Delimiter for CSV; 0 sniffs from the file name.
	Delimiter rune
	// SheetName selects a workbook sheet by name; it wins over SheetIndex.
	SheetName string
	// SheetIndex selects a workbook sheet by 1-based position; 0 means the first.
	SheetIndex int
	// Numeric controls type inference of cells.
	Numeric table.InferOptions
}

// Loader reads one tabular format.
type Loader interface {
	CanLoad(filename string) bool
	Load(r io.Reader, opt Options) (*table.Table, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates a format or encoding is not supported.
var ErrUnsupported = errors.New("unsupported input format")

// ParseFile loads path with the loader matching its name. A trailing .gz or
// .zst is decompressed first and the loader is chosen by the remaining name.
func ParseFile(path string, opt Options) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return Parse(f, filepath.Base(path), opt)
}

// Parse is ParseFile over an open reader; name selects the loader.
func Parse(r io.Reader, name string, opt Options) (*table.Table, error) {
	inner, name, closeFn, err := decompress(r, name)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	l, ok := loaderFor(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(name)
	}
	t, err := l.Load(inner, opt)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return t, nil
}

// Supported reports whether a loader exists for filename.
func Supported(filename string) bool {
	_, ok := loaderFor(trimCompression(filename))
	return ok
}

func loaderFor(name string) (Loader, bool) {
	for _, l := range registry {
		if l.CanLoad(name) {
			return l, true
		}
	}
	return nil, false
}

func sniffDelimiter(name string) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	return ','
}

// ParseDelimiter reads a delimiter setting: "", "auto" sniff; "tab" or "\t"
// is a tab; otherwise a single character.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return 0, nil
	case "tab", `\t`, "\t":
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return r[0], nil
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}
