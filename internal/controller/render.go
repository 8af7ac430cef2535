package controller

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/sergi/go-diff/diffmatchpatch"

	m "gollate.dev/pkg/gollate/internal/model"
)

const (
	gapMark     = "∅"
	varyingMark = "*"
	shortIDLen  = 12
)

// palette decorates rendered text. The zero value renders plain text.
type palette struct {
	varying func(string) string
	muted   func(string) string
	title   func(string) string
	ansi    bool // diffs may use ANSI colors
}

func (p palette) paint(fn func(string) string, s string) string {
	if fn == nil {
		return s
	}

	return fn(s)
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}

	return id[:shortIDLen]
}

func reportTitle(report m.Report, cached bool) string {
	collation := report.Collation

	title := fmt.Sprintf("%s [%s] %d witness(es), %d column(s), %d segment(s), %d varying",
		report.Name,
		shortID(report.Fingerprint),
		len(collation.Table.Witnesses),
		len(collation.Table.Columns),
		len(collation.Segments),
		collation.VariationCount(),
	)

	if cached {
		title += " (cached)"
	}

	return title
}

// renderReport writes the segment table of a report: one row per segment, one
// column per witness, original text only.
func renderReport(w io.Writer, report m.Report, cached, detail bool, p palette) {
	fmt.Fprintf(w, "%s\n", p.paint(p.title, reportTitle(report, cached)))

	collation := report.Collation
	if len(collation.Segments) == 0 {
		fmt.Fprintf(w, "  %s\n\n", p.paint(p.muted, "no tokens to align"))
		return
	}

	ids := collation.Table.Witnesses

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader(append([]string{"#"}, ids...))
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for i, segment := range collation.Segments {
		row := make([]string, 0, len(ids)+1)

		label := strconv.Itoa(i + 1)
		if segment.Varies {
			label += varyingMark
		}

		row = append(row, label)

		for _, id := range ids {
			reading, ok := segment.Reading(id)

			switch {
			case !ok:
				row = append(row, p.paint(p.muted, gapMark))
			case segment.Varies:
				row = append(row, p.paint(p.varying, displayReading(reading)))
			default:
				row = append(row, displayReading(reading))
			}
		}

		table.Append(row)
	}

	table.Render()
	fmt.Fprint(w, tableBuffer.String())

	if detail {
		renderDetail(w, collation, p)
	}

	fmt.Fprintln(w)
}

// displayReading keeps the reading intact apart from trailing line breaks,
// which would otherwise add empty table lines.
func displayReading(reading string) string {
	return strings.TrimRight(reading, "\r\n")
}

// renderDetail prints, for each varying segment, how every witness' reading
// differs character by character from the first witness that has one.
func renderDetail(w io.Writer, collation m.Collation, p palette) {
	dmp := diffmatchpatch.New()

	for i, segment := range collation.Segments {
		if !segment.Varies {
			continue
		}

		baseID, base := "", ""

		for _, id := range collation.Table.Witnesses {
			if reading, ok := segment.Reading(id); ok {
				baseID, base = id, reading
				break
			}
		}

		fmt.Fprintf(w, "  segment %d (against %s):\n", i+1, baseID)

		for _, id := range collation.Table.Witnesses {
			if id == baseID {
				continue
			}

			reading, ok := segment.Reading(id)
			if !ok {
				fmt.Fprintf(w, "    %s: %s\n", id, p.paint(p.muted, gapMark))
				continue
			}

			diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(base, reading, false))
			fmt.Fprintf(w, "    %s: %s\n", id, diffText(dmp, diffs, p.ansi))
		}
	}
}

// diffText renders diffs either with ANSI colors or with [-deleted-]{+inserted+}
// markers.
func diffText(dmp *diffmatchpatch.DiffMatchPatch, diffs []diffmatchpatch.Diff, ansi bool) string {
	if ansi {
		return dmp.DiffPrettyText(diffs)
	}

	var b strings.Builder

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		}
	}

	return b.String()
}

// renderTokens lists every witness' tokens with their normalized forms. Both
// are quoted so whitespace stays visible.
func renderTokens(w io.Writer, witnesses []m.Witness, p palette) {
	for _, witness := range witnesses {
		fmt.Fprintf(w, "%s\n", p.paint(p.title, fmt.Sprintf("%s: %d token(s)", witness.ID, len(witness.Tokens))))

		var tableBuffer bytes.Buffer

		table := tablewriter.NewWriter(&tableBuffer)
		table.SetHeader([]string{"#", "Original", "Normalized"})
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetBorder(false)
		table.SetCenterSeparator("")
		table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

		for i, token := range witness.Tokens {
			table.Append([]string{strconv.Itoa(i), strconv.Quote(token.Original), strconv.Quote(token.Normalized)})
		}

		table.Render()
		fmt.Fprint(w, tableBuffer.String())
		fmt.Fprintln(w)
	}
}
