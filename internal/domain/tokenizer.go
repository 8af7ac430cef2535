// Package domain contains the collation core: tokenizing, normalizing,
// aligning and segmenting witnesses, plus the workflows driving it.
package domain

import (
	"fmt"
	"strings"

	"gollate.dev/pkg/gollate/internal/domain/tokenizers"
)

// Rule splits raw text into token strings. The concatenation of the result must
// equal the input and no element may be empty.
type Rule interface {
	Split(text string) []string
}

// RuleFunc adapts a plain function to Rule.
type RuleFunc func(text string) []string

// Split implements Rule.
func (f RuleFunc) Split(text string) []string { return f(text) }

// Tokenizer runs exactly one Rule and checks its output.
type Tokenizer interface {
	Tokenize(witnessID, text string) ([]string, error)
}

type tokenizer struct {
	rule Rule
}

// NewTokenizer wraps rule. A nil rule selects the default splitting rule.
func NewTokenizer(rule Rule) Tokenizer {
	if rule == nil {
		rule = RuleFunc(tokenizers.SplitDefault)
	}

	return &tokenizer{rule: rule}
}

// NewTokenizerByName builds a Tokenizer from a registered rule name.
func NewTokenizerByName(name string) (Tokenizer, error) {
	rule, ok := tokenizers.Lookup(name)
	if !ok {
		return nil, &ConfigurationError{
			Stage:   StageTokenizer,
			Index:   -1,
			Message: fmt.Sprintf("unknown tokenizer %q (available: %s)", name, strings.Join(tokenizers.Names(), ", ")),
		}
	}

	return NewTokenizer(RuleFunc(rule)), nil
}

func (t *tokenizer) Tokenize(witnessID, text string) (parts []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			parts = nil
			err = &ConfigurationError{
				Stage:   StageTokenizer,
				Witness: witnessID,
				Index:   -1,
				Message: "tokenizer rule is not total",
				Cause:   panicError(r),
			}
		}
	}()

	parts = t.rule.Split(text)

	if err := checkSplit(witnessID, text, parts); err != nil {
		return nil, err
	}

	return parts, nil
}

func checkSplit(witnessID, text string, parts []string) error {
	offset := 0

	for i, part := range parts {
		if part == "" {
			return &ConfigurationError{
				Stage:   StageTokenizer,
				Witness: witnessID,
				Index:   i,
				Message: "tokenizer rule returned an empty token",
			}
		}

		if !strings.HasPrefix(text[offset:], part) {
			return &ConfigurationError{
				Stage:   StageTokenizer,
				Witness: witnessID,
				Index:   i,
				Message: fmt.Sprintf("token %q does not continue the source text at byte %d", part, offset),
			}
		}

		offset += len(part)
	}

	if offset != len(text) {
		return &ConfigurationError{
			Stage:   StageTokenizer,
			Witness: witnessID,
			Index:   -1,
			Message: fmt.Sprintf("tokens cover %d of %d bytes of the source text", offset, len(text)),
		}
	}

	return nil
}
