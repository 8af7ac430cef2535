package domain

import (
	"github.com/pmezard/go-difflib/difflib"

	m "gollate.dev/pkg/gollate/internal/model"
)

// blockMatcher aligns with difflib's SequenceMatcher, which looks for the longest
// matching blocks first. Each column is represented by one key, its most common
// normalized form, so a token equal to a minority reading of a column is not
// recognised as a match. It is faster than the edit matcher on long witnesses
// and keeps long shared passages together.
type blockMatcher struct{}

// NewBlockMatcher returns the block-based PairwiseMatcher.
func NewBlockMatcher() PairwiseMatcher {
	return blockMatcher{}
}

func (blockMatcher) Match(columns []m.Column, witnesses []string, tokens []m.Token) []Step {
	reps := make([]string, len(columns))
	for i, c := range columns {
		reps[i] = representativeKey(c, witnesses)
	}

	keys := make([]string, len(tokens))
	for j, t := range tokens {
		keys[j] = t.Normalized
	}

	matcher := difflib.NewMatcherWithJunk(reps, keys, false, nil)
	steps := make([]Step, 0, len(columns)+len(tokens))

	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for k := 0; k < op.I2-op.I1; k++ {
				steps = append(steps, Step{Kind: StepAlign, Column: op.I1 + k, Token: op.J1 + k})
			}
		case 'r':
			steps = append(steps, replaceSteps(op)...)
		case 'd':
			for i := op.I1; i < op.I2; i++ {
				steps = append(steps, Step{Kind: StepGap, Column: i, Token: -1})
			}
		case 'i':
			for j := op.J1; j < op.J2; j++ {
				steps = append(steps, Step{Kind: StepInsert, Column: -1, Token: j})
			}
		}
	}

	return steps
}

// replaceSteps pairs a replaced range position by position; whatever is left
// over becomes gaps or new columns.
func replaceSteps(op difflib.OpCode) []Step {
	cols, toks := op.I2-op.I1, op.J2-op.J1
	paired := min(cols, toks)
	steps := make([]Step, 0, cols+toks-paired)

	for k := 0; k < paired; k++ {
		steps = append(steps, Step{Kind: StepAlign, Column: op.I1 + k, Token: op.J1 + k})
	}

	for i := op.I1 + paired; i < op.I2; i++ {
		steps = append(steps, Step{Kind: StepGap, Column: i, Token: -1})
	}

	for j := op.J1 + paired; j < op.J2; j++ {
		steps = append(steps, Step{Kind: StepInsert, Column: -1, Token: j})
	}

	return steps
}

// representativeKey is the most frequent normalized form in the column; ties go
// to the witness listed first.
func representativeKey(c m.Column, witnesses []string) string {
	counts := make(map[string]int, len(c.Cells))
	for _, cell := range c.Cells {
		counts[cell.Token.Normalized]++
	}

	best, bestCount := "", 0

	for _, key := range c.Keys(witnesses) {
		if counts[key] > bestCount {
			best, bestCount = key, counts[key]
		}
	}

	return best
}
