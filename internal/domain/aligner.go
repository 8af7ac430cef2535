package domain

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	m "gollate.dev/pkg/gollate/internal/model"
)

// Alignment engine names.
const (
	EngineDP     = "dp"
	EngineBlocks = "blocks"
)

// Aligner computes the alignment table of a set of witnesses.
type Aligner interface {
	Align(witnesses []m.Witness) (m.Table, error)
}

// StepKind is what a pairwise matcher decided for one skeleton column or one
// witness token.
type StepKind int

const (
	// StepAlign places token Token into existing column Column.
	StepAlign StepKind = iota
	// StepGap leaves column Column without a token from the new witness.
	StepGap
	// StepInsert opens a new column holding only token Token.
	StepInsert
)

// Step is one instruction of a pairwise alignment script. Scripts visit every
// skeleton column and every witness token exactly once, in order.
type Step struct {
	Kind   StepKind
	Column int
	Token  int
}

// PairwiseMatcher aligns one witness against the columns accumulated so far.
type PairwiseMatcher interface {
	Match(columns []m.Column, witnesses []string, tokens []m.Token) []Step
}

// progressiveAligner folds witnesses one by one into a consensus table: the
// second witness is aligned against the first, the third against the result and
// so on. This is not globally optimal for more than two witnesses, but it stays
// polynomial where a true N-way alignment would not.
type progressiveAligner struct {
	matcher PairwiseMatcher
}

// NewAligner returns the default progressive aligner backed by the
// dynamic-programming matcher.
func NewAligner() Aligner {
	return &progressiveAligner{matcher: newEditMatcher(defaultDistanceCacheSize)}
}

// NewProgressiveAligner returns a progressive aligner using matcher for each
// pairwise step.
func NewProgressiveAligner(matcher PairwiseMatcher) Aligner {
	return &progressiveAligner{matcher: matcher}
}

var alignEngines = map[string]func() Aligner{
	EngineDP:     NewAligner,
	EngineBlocks: func() Aligner { return NewProgressiveAligner(NewBlockMatcher()) },
}

// NewAlignerByName returns the aligner registered under name.
func NewAlignerByName(name string) (Aligner, error) {
	factory, ok := alignEngines[name]
	if !ok {
		names := make([]string, 0, len(alignEngines))
		for n := range alignEngines {
			names = append(names, n)
		}

		sort.Strings(names)

		return nil, &ConfigurationError{
			Stage:   StageInput,
			Index:   -1,
			Message: fmt.Sprintf("unknown alignment engine %q (available: %s)", name, strings.Join(names, ", ")),
		}
	}

	return factory(), nil
}

func (a *progressiveAligner) Align(witnesses []m.Witness) (m.Table, error) {
	table := m.Table{Witnesses: make([]string, 0, len(witnesses)), Columns: []m.Column{}}

	for _, w := range witnesses {
		steps := a.matcher.Match(table.Columns, table.Witnesses, w.Tokens)

		columns, err := applySteps(table.Columns, w, steps)
		if err != nil {
			slog.Error("Pairwise alignment produced an invalid script", "witness", w.ID, "error", err)
			return m.Table{}, err
		}

		table.Witnesses = append(table.Witnesses, w.ID)
		table.Columns = columns

		slog.Debug("Aligned witness", "witness", w.ID, "tokens", len(w.Tokens), "columns", len(columns))
	}

	return table, nil
}

// applySteps builds the next consensus table. The previous columns are copied,
// never modified.
func applySteps(columns []m.Column, w m.Witness, steps []Step) ([]m.Column, error) {
	next := make([]m.Column, 0, len(columns)+len(w.Tokens))
	col, tok := 0, 0

	invalid := func(reason string) error {
		return &StructuralError{Witnesses: []string{w.ID}, Reason: reason}
	}

	for _, step := range steps {
		switch step.Kind {
		case StepAlign:
			if step.Column != col || step.Token != tok || col >= len(columns) || tok >= len(w.Tokens) {
				return nil, invalid(fmt.Sprintf("align step (%d,%d) out of order at (%d,%d)", step.Column, step.Token, col, tok))
			}

			c := cloneColumn(columns[col])
			c.Cells[w.ID] = m.Cell{Token: w.Tokens[tok], Index: tok}
			next = append(next, c)
			col++
			tok++
		case StepGap:
			if step.Column != col || col >= len(columns) {
				return nil, invalid(fmt.Sprintf("gap step for column %d out of order at %d", step.Column, col))
			}

			next = append(next, cloneColumn(columns[col]))
			col++
		case StepInsert:
			if step.Token != tok || tok >= len(w.Tokens) {
				return nil, invalid(fmt.Sprintf("insert step for token %d out of order at %d", step.Token, tok))
			}

			c := m.NewColumn()
			c.Cells[w.ID] = m.Cell{Token: w.Tokens[tok], Index: tok}
			next = append(next, c)
			tok++
		default:
			return nil, invalid(fmt.Sprintf("unknown step kind %d", step.Kind))
		}
	}

	if col != len(columns) || tok != len(w.Tokens) {
		return nil, invalid(fmt.Sprintf("script consumed %d/%d columns and %d/%d tokens", col, len(columns), tok, len(w.Tokens)))
	}

	return next, nil
}

func cloneColumn(c m.Column) m.Column {
	cells := make(map[string]m.Cell, len(c.Cells)+1)
	for id, cell := range c.Cells {
		cells[id] = cell
	}

	return m.Column{Cells: cells}
}

func columnKeySets(columns []m.Column) []map[string]struct{} {
	sets := make([]map[string]struct{}, len(columns))

	for i, c := range columns {
		set := make(map[string]struct{}, len(c.Cells))
		for _, cell := range c.Cells {
			set[cell.Token.Normalized] = struct{}{}
		}

		sets[i] = set
	}

	return sets
}
