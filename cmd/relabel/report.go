package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/relabel/pkg/safeconv"
	"github.com/Sumatoshi-tech/relabel/pkg/textutil"
	"github.com/Sumatoshi-tech/relabel/pkg/transform"
)

func paint(attr color.Attribute, noColor bool) *color.Color {
	c := color.New(attr)
	if noColor {
		c.DisableColor()
	}

	return c
}

// writeEntryTable prints one row per rewritten element.
func writeEntryTable(w io.Writer, entries []transform.MappingEntry) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false

	tbl.AppendHeader(table.Row{"#", "Key", "Original", "Translated", "Fallback"})

	fallbacks := 0

	for _, entry := range entries {
		mark := ""
		if entry.Fallback {
			mark = "yes"
			fallbacks++
		}

		tbl.AppendRow(table.Row{
			entry.Index,
			sanitizeForTerminal(entry.Key),
			sanitizeForTerminal(entry.Original),
			sanitizeForTerminal(entry.Translated),
			mark,
		})
	}

	tbl.AppendFooter(table.Row{"", fmt.Sprintf("Total: %d keys", len(entries)), "", "", strconv.Itoa(fallbacks)})
	tbl.Render()
}

// writeSuccess prints the single outcome line of a successful run.
func writeSuccess(w io.Writer, noColor bool, run *transform.RunResult) {
	var detail string

	switch {
	case !run.Found:
		detail = "target not found, nothing rewritten"
	case run.Wrote:
		detail = fmt.Sprintf("wrote %s (%d lines) to %s", humanize.Bytes(safeconv.IntToUint64(len(run.Code))),
			textutil.CountLines(run.Code), sanitizeForTerminal(run.Output))
	default:
		detail = "dry run, nothing written"
	}

	summary := fmt.Sprintf("succeeded (%d rewritten", run.Rewritten())
	if n := run.Fallbacks(); n > 0 {
		summary += fmt.Sprintf(", %d untranslated", n)
	}

	paint(color.FgGreen, noColor).Fprintf(w, "%s) in %s: %s\n", summary, run.Duration.Round(time.Millisecond), detail)
}

// writeFailure prints the single outcome line of a failed run.
func writeFailure(w io.Writer, noColor bool, err error) {
	paint(color.FgRed, noColor).Fprintf(w, "failed: %s\n", sanitizeForTerminal(err.Error()))
}
