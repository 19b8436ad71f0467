// Package textutil holds byte-level checks applied to source files before
// and after a rewrite.
package textutil

import (
	"bytes"
	"strings"
)

// SniffLength bounds the prefix scanned by IsBinary, the same window Git
// uses.
const SniffLength = 8000

// IsBinary reports whether the first SniffLength bytes of data contain a NUL.
func IsBinary(data []byte) bool {
	return bytes.IndexByte(data[:min(len(data), SniffLength)], 0) >= 0
}

// CountLines counts newline-terminated lines, plus a final unterminated one.
func CountLines(data string) int {
	if data == "" {
		return 0
	}

	n := strings.Count(data, "\n")
	if !strings.HasSuffix(data, "\n") {
		n++
	}

	return n
}
