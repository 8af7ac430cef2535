// Package model defines the data structures for witness collation.
package model

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Token is one unit of witness text. Original is the exact source substring and is
// the only text ever displayed; Normalized is the comparison key fixed at
// construction time.
type Token struct {
	Original   string `yaml:"t"`
	Normalized string `yaml:"n"`
}

// MarshalYAML writes both forms double quoted. Plain and block scalars do not
// keep whitespace-only text such as "\n\n" or "\t\n" intact.
func (t Token) MarshalYAML() (interface{}, error) {
	return &yaml.Node{
		Kind:  yaml.MappingNode,
		Style: yaml.FlowStyle,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: "t"},
			quoted(t.Original),
			{Kind: yaml.ScalarNode, Value: "n"},
			quoted(t.Normalized),
		},
	}, nil
}

func quoted(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: yaml.DoubleQuotedStyle}
}

// Witness is a named, ordered sequence of tokens.
type Witness struct {
	ID     string  `yaml:"id"`
	Tokens []Token `yaml:"tokens"`
}

// Text concatenates the original text of every token in reading order.
func (w Witness) Text() string {
	var b strings.Builder
	for _, t := range w.Tokens {
		b.WriteString(t.Original)
	}

	return b.String()
}

// SourceKind tells ingestion how to turn a WitnessSource into tokens.
type SourceKind string

const (
	// SourcePlain is raw text that still needs tokenizing and normalizing.
	SourcePlain SourceKind = "plain"
	// SourceTagged carries tokens produced upstream; missing normalized forms
	// are filled in by the normalizer.
	SourceTagged SourceKind = "tagged"
)

// WitnessSource is a witness as loaded from disk, before ingestion.
type WitnessSource struct {
	ID     string
	Kind   SourceKind
	Origin Path
	Digest string
	Text   string
	Tokens []TaggedToken
}

// TaggedToken is a pre-tokenized input token. A nil Normalized means "not
// provided", which is different from an empty normalized form.
type TaggedToken struct {
	Original   string  `yaml:"t" json:"t"`
	Normalized *string `yaml:"n,omitempty" json:"n,omitempty"`
}
