package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gollate.dev/pkg/gollate/internal/model"
)

func TestVerifyTable(t *testing.T) {
	witnesses := []m.Witness{keyed("A", "x", "y"), keyed("B", "x")}

	valid := func() m.Table {
		return align(t, NewAligner(), witnesses...)
	}

	tests := []struct {
		name    string
		corrupt func(*m.Table)
	}{
		{"witness missing from the list", func(tb *m.Table) { tb.Witnesses = tb.Witnesses[:1] }},
		{"witnesses reordered", func(tb *m.Table) { tb.Witnesses[0], tb.Witnesses[1] = tb.Witnesses[1], tb.Witnesses[0] }},
		{"empty column", func(tb *m.Table) { tb.Columns = append(tb.Columns, m.NewColumn()) }},
		{"unknown witness", func(tb *m.Table) { tb.Columns[1].Cells["Z"] = m.Cell{Token: m.Token{Original: "y", Normalized: "y"}} }},
		{"columns crossed", func(tb *m.Table) { tb.Columns[0], tb.Columns[1] = tb.Columns[1], tb.Columns[0] }},
		{"token dropped", func(tb *m.Table) { delete(tb.Columns[1].Cells, "A") }},
		{"token altered", func(tb *m.Table) {
			tb.Columns[0].Cells["B"] = m.Cell{Token: m.Token{Original: "X", Normalized: "x"}, Index: 0}
		}},
	}

	require.NoError(t, VerifyTable(valid(), witnesses))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := valid()
			tt.corrupt(&table)

			err := VerifyTable(table, witnesses)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrStructural)
		})
	}
}

func TestVerifyReport(t *testing.T) {
	witnesses := []m.Witness{keyed("A", "x", "y"), keyed("B", "x")}

	valid := func() m.Report {
		return m.Report{
			Sources:   digests([]m.WitnessSource{{ID: "A"}, {ID: "B"}}, witnesses),
			Witnesses: witnesses,
			Collation: m.Collation{Table: align(t, NewAligner(), witnesses...)},
		}
	}

	require.NoError(t, VerifyReport(valid()))

	tests := []struct {
		name    string
		corrupt func(*m.Report)
	}{
		{"text digest of another text", func(r *m.Report) { r.Sources[0].Text = r.Sources[1].Text }},
		{"missing text digest", func(r *m.Report) { r.Sources[1].Text = "" }},
		{"source missing", func(r *m.Report) { r.Sources = r.Sources[:1] }},
		{"sources reordered", func(r *m.Report) { r.Sources[0], r.Sources[1] = r.Sources[1], r.Sources[0] }},
		{"table broken", func(r *m.Report) { r.Collation.Table.Columns = r.Collation.Table.Columns[:1] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := valid()
			tt.corrupt(&report)

			err := VerifyReport(report)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrStructural)
		})
	}
}
