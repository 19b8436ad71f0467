package main

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines kept around each change.
const diffContext = 3

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

// unifiedDiff renders a line diff between before and after with --- / +++
// headers and @@ separators between distant changes. Identical inputs
// yield "".
func unifiedDiff(name, before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	src, dst, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(src, dst, false), lines)

	var all []diffLine

	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			all = append(all, diffLine{op: d.Type, text: line})
		}
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "--- %s\n+++ %s (relabeled)\n", name, name)

	lastPrinted := -1

	for idx, line := range all {
		if !nearChange(all, idx) {
			continue
		}

		if idx != lastPrinted+1 {
			sb.WriteString("@@\n")
		}

		switch line.op {
		case diffmatchpatch.DiffInsert:
			sb.WriteString("+")
		case diffmatchpatch.DiffDelete:
			sb.WriteString("-")
		default:
			sb.WriteString(" ")
		}

		sb.WriteString(line.text)
		sb.WriteString("\n")

		lastPrinted = idx
	}

	return sb.String()
}

func nearChange(all []diffLine, idx int) bool {
	lo := max(0, idx-diffContext)
	hi := min(len(all)-1, idx+diffContext)

	for i := lo; i <= hi; i++ {
		if all[i].op != diffmatchpatch.DiffEqual {
			return true
		}
	}

	return false
}

// splitLines splits text into lines without their terminators.
func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{""}
	}

	return strings.Split(text, "\n")
}
