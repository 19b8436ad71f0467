package main

import (
	"fmt"
	"io"
	"strings"
	"unicode"
)

// sanitizeForTerminal flattens whitespace and drops control characters, so
// text from source files or the translation service cannot move the
// cursor or inject escape sequences.
func sanitizeForTerminal(input string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r), r == '\u2028', r == '\u2029':
			return -1
		default:
			return r
		}
	}, input)
}

func writeTerminalLine(w io.Writer, args ...any) {
	fmt.Fprintln(w, args...)
}
