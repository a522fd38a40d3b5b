package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func trimCompression(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range []string{".gz", ".zst"} {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// decompress wraps r according to the name's compression suffix and returns
// the name without it.
func decompress(r io.Reader, name string) (io.Reader, string, func(), error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, name, nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, trimCompression(name), func() { _ = zr.Close() }, nil
	case strings.HasSuffix(lower, ".zst"):
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, name, nil, fmt.Errorf("zstd: %w", err)
		}
		return dec, trimCompression(name), dec.Close, nil
	}
	return r, name, func() {}, nil
}
