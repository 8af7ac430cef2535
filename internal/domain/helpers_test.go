package domain

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	m "gollate.dev/pkg/gollate/internal/model"
)

func sigla(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = string(rune('A' + i))
	}

	return ids
}

func ingestTexts(t *testing.T, rule Rule, normalizer Normalizer, texts ...string) []m.Witness {
	t.Helper()

	in, err := NewIngestor(NewTokenizer(rule), normalizer, 2)
	require.NoError(t, err)

	sources := make([]m.WitnessSource, len(texts))
	for i, id := range sigla(len(texts)) {
		sources[i] = m.WitnessSource{ID: id, Kind: m.SourcePlain, Text: texts[i]}
	}

	witnesses, err := in.Ingest(context.Background(), sources)
	require.NoError(t, err)

	return witnesses
}

// keyed builds a witness whose tokens are their own normalized forms.
func keyed(id string, keys ...string) m.Witness {
	w := m.Witness{ID: id}
	for _, k := range keys {
		w.Tokens = append(w.Tokens, m.Token{Original: k, Normalized: k})
	}

	return w
}

func collate(t *testing.T, witnesses []m.Witness, segmentation bool) m.Collation {
	t.Helper()

	result, err := NewCollator(nil).Collate(witnesses, segmentation)
	require.NoError(t, err)

	return result
}

// columnOf returns the index of the column holding token index of witness id.
func columnOf(table m.Table, id string, index int) int {
	for ci, col := range table.Columns {
		if cell, ok := col.Cell(id); ok && cell.Index == index {
			return ci
		}
	}

	return -1
}

func renderTable(table m.Table) string {
	var b strings.Builder

	for _, id := range table.Witnesses {
		fmt.Fprintf(&b, "%s:", id)

		for _, col := range table.Columns {
			if cell, ok := col.Cell(id); ok {
				fmt.Fprintf(&b, " [%s]", cell.Token.Normalized)
			} else {
				b.WriteString(" [-]")
			}
		}

		b.WriteString("\n")
	}

	return b.String()
}
