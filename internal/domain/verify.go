package domain

import (
	"fmt"

	m "gollate.dev/pkg/gollate/internal/model"
	"gollate.dev/pkg/gollate/pkg"
)

// VerifyReport checks a loaded report: every witness' text must match the
// content id recorded when the report was made, and the table must satisfy
// VerifyTable.
func VerifyReport(report m.Report) error {
	if len(report.Sources) != len(report.Witnesses) {
		return &StructuralError{
			Reason: fmt.Sprintf("report lists %d sources for %d witnesses", len(report.Sources), len(report.Witnesses)),
		}
	}

	for i, w := range report.Witnesses {
		source := report.Sources[i]
		if source.ID != w.ID {
			return &StructuralError{Witnesses: []string{w.ID}, Reason: fmt.Sprintf("source %d is %q", i, source.ID)}
		}

		ok, err := pkg.VerifyContentID(source.Text, []byte(w.Text()))
		if err != nil {
			return &StructuralError{Witnesses: []string{w.ID}, Reason: fmt.Sprintf("text digest: %v", err)}
		}

		if !ok {
			return &StructuralError{Witnesses: []string{w.ID}, Reason: "text does not match its recorded digest"}
		}
	}

	return VerifyTable(report.Collation.Table, report.Witnesses)
}

// VerifyTable checks the table invariants against the witnesses it was built
// from: every column holds at least one token and only known witnesses, and
// reading a witness' cells in column order yields exactly its token sequence
// (which also rules out crossing alignments).
func VerifyTable(table m.Table, witnesses []m.Witness) error {
	if len(table.Witnesses) != len(witnesses) {
		return &StructuralError{
			Witnesses: table.Witnesses,
			Reason:    fmt.Sprintf("table lists %d witnesses, expected %d", len(table.Witnesses), len(witnesses)),
		}
	}

	byID := make(map[string]m.Witness, len(witnesses))

	for i, w := range witnesses {
		if table.Witnesses[i] != w.ID {
			return &StructuralError{
				Witnesses: []string{w.ID},
				Reason:    fmt.Sprintf("table witness %d is %q", i, table.Witnesses[i]),
			}
		}

		byID[w.ID] = w
	}

	next := make(map[string]int, len(witnesses))

	for ci, col := range table.Columns {
		if col.Present() == 0 {
			return &StructuralError{Witnesses: table.Witnesses, Reason: fmt.Sprintf("column %d is empty", ci)}
		}

		for id, cell := range col.Cells {
			w, ok := byID[id]
			if !ok {
				return &StructuralError{Witnesses: []string{id}, Reason: fmt.Sprintf("column %d holds an unknown witness", ci)}
			}

			if cell.Index != next[id] {
				return &StructuralError{
					Witnesses: []string{id},
					Reason:    fmt.Sprintf("column %d holds token %d, expected token %d", ci, cell.Index, next[id]),
				}
			}

			if cell.Index >= len(w.Tokens) || cell.Token != w.Tokens[cell.Index] {
				return &StructuralError{
					Witnesses: []string{id},
					Reason:    fmt.Sprintf("column %d does not hold token %d of the witness", ci, cell.Index),
				}
			}

			next[id]++
		}
	}

	for _, w := range witnesses {
		if next[w.ID] != len(w.Tokens) {
			return &StructuralError{
				Witnesses: []string{w.ID},
				Reason:    fmt.Sprintf("table holds %d of %d tokens", next[w.ID], len(w.Tokens)),
			}
		}
	}

	return nil
}
