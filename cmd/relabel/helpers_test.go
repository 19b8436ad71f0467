package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/relabel/pkg/transform"
)

func TestUnifiedDiff(t *testing.T) {
	t.Parallel()

	got := unifiedDiff("menu.js", "a\nb\nc\n", "a\nB\nc\n")
	assert.Equal(t, "--- menu.js\n+++ menu.js (relabeled)\n a\n-b\n+B\n c\n", got)
}

func TestUnifiedDiffIdentical(t *testing.T) {
	t.Parallel()

	assert.Empty(t, unifiedDiff("menu.js", "a\n", "a\n"))
}

func TestUnifiedDiffSeparatesDistantHunks(t *testing.T) {
	t.Parallel()

	var before, after strings.Builder

	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&before, "l%d\n", i)

		if i == 1 || i == 10 {
			fmt.Fprintf(&after, "L%d\n", i)
		} else {
			fmt.Fprintf(&after, "l%d\n", i)
		}
	}

	got := unifiedDiff("f", before.String(), after.String())

	assert.Contains(t, got, "-l1\n")
	assert.Contains(t, got, "+L1\n")
	assert.Contains(t, got, "-l10\n")
	assert.Contains(t, got, "+L10\n")
	assert.Contains(t, got, "@@\n")
	assert.NotContains(t, got, " l5\n")
	assert.NotContains(t, got, " l6\n")
}

func TestSanitizeForTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"锁定", "锁定"},
		{"a\tb\nc\rd", "a b c d"},
		{"\x1b[31mred\x1b[0m", "[31mred[0m"},
		{"x\u2028y\u2029z\x00", "xyz"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeForTerminal(tt.in), "input %q", tt.in)
	}
}

func sampleRun() *transform.RunResult {
	return &transform.RunResult{
		Result: &transform.Result{
			Found: true,
			Code:  "a\nb\n",
			Entries: []transform.MappingEntry{
				{Key: "workspace.system_keyboard_Lock", Original: "锁定", Translated: "Lock"},
				{Key: "workspace.system_keyboard_解锁", Original: "解锁", Translated: "解锁", Index: 2, Fallback: true},
			},
			Duration: 1500 * time.Millisecond,
		},
		Output: "/tmp/menu.js",
		Wrote:  true,
	}
}

func TestWriteSuccess(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writeSuccess(&buf, true, sampleRun())
	assert.Equal(t, "succeeded (2 rewritten, 1 untranslated) in 1.5s: wrote 4 B (2 lines) to /tmp/menu.js\n", buf.String())

	notFound := &transform.RunResult{Result: &transform.Result{}}

	buf.Reset()
	writeSuccess(&buf, true, notFound)
	assert.Equal(t, "succeeded (0 rewritten) in 0s: target not found, nothing rewritten\n", buf.String())
}

func TestWriteFailure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writeFailure(&buf, true, errors.New("input error:\nbad\x1b"))
	assert.Equal(t, "failed: input error: bad\n", buf.String())
}

func TestWriteEntryTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writeEntryTable(&buf, sampleRun().Entries)

	out := buf.String()
	assert.Contains(t, out, "workspace.system_keyboard_Lock")
	assert.Contains(t, out, "Lock")
	assert.Contains(t, out, "yes")
	assert.Contains(t, strings.ToLower(out), "total: 2 keys")
}
