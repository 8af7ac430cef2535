package model

import "strings"

// Cell is a witness token placed in a column together with its position in the
// witness' own token sequence.
type Cell struct {
	Token Token `yaml:"token"`
	Index int   `yaml:"index"`
}

// Column is one variation point. A witness without a cell has a gap here.
type Column struct {
	Cells map[string]Cell `yaml:"cells"`
}

// NewColumn returns an empty column.
func NewColumn() Column {
	return Column{Cells: map[string]Cell{}}
}

// Cell returns the cell of the given witness, if any.
func (c Column) Cell(witnessID string) (Cell, bool) {
	cell, ok := c.Cells[witnessID]
	return cell, ok
}

// Present returns the number of witnesses with a token in the column.
func (c Column) Present() int {
	return len(c.Cells)
}

// Keys returns the distinct normalized forms of the present tokens, in the order
// the witnesses are listed.
func (c Column) Keys(witnesses []string) []string {
	keys := make([]string, 0, len(c.Cells))
	seen := make(map[string]struct{}, len(c.Cells))

	for _, id := range witnesses {
		cell, ok := c.Cells[id]
		if !ok {
			continue
		}

		if _, dup := seen[cell.Token.Normalized]; dup {
			continue
		}

		seen[cell.Token.Normalized] = struct{}{}
		keys = append(keys, cell.Token.Normalized)
	}

	return keys
}

// Varies reports whether the column is a variation point: present tokens
// disagree on their normalized form, or some witness has a gap.
func (c Column) Varies(witnesses []string) bool {
	if len(c.Cells) != len(witnesses) {
		return true
	}

	return len(c.Keys(witnesses)) > 1
}

// Table is the ordered alignment of all witnesses.
type Table struct {
	Witnesses []string `yaml:"witnesses"`
	Columns   []Column `yaml:"columns"`
}

// Segment is a contiguous run of columns sharing the same variation status.
type Segment struct {
	Columns []Column `yaml:"columns"`
	Varies  bool     `yaml:"varies"`
}

// Reading returns the original text of a witness inside the segment, and false
// when the witness has no token in any of its columns.
func (s Segment) Reading(witnessID string) (string, bool) {
	var (
		b     strings.Builder
		found bool
	)

	for _, col := range s.Columns {
		if cell, ok := col.Cells[witnessID]; ok {
			b.WriteString(cell.Token.Original)

			found = true
		}
	}

	return b.String(), found
}

// Collation is the result of collating a set of witnesses.
type Collation struct {
	Table     Table     `yaml:"table"`
	Segments  []Segment `yaml:"segments"`
	Segmented bool      `yaml:"segmented"`
}

// VariationCount returns the number of varying segments.
func (c Collation) VariationCount() int {
	n := 0

	for _, s := range c.Segments {
		if s.Varies {
			n++
		}
	}

	return n
}
