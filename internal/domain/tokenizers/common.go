// Package tokenizers contains the built-in splitting rules. Each rule is a total
// replacement for the others; rules are never combined within one run.
package tokenizers

import "regexp"

// Rule names accepted by Lookup.
const (
	Default    = "default"
	Attached   = "attached"
	Whitespace = "whitespace"
)

// word is the character class of word-like runs. Go's \w is ASCII only, so the
// Unicode letter and number classes are spelled out.
const word = `[\p{L}\p{N}\p{M}_]`

const nonWord = `[^\p{L}\p{N}\p{M}_]`

var rules = map[string]func(string) []string{
	Default:    SplitDefault,
	Attached:   SplitAttached,
	Whitespace: SplitWhitespace,
}

// Lookup returns the rule registered under name.
func Lookup(name string) (func(string) []string, bool) {
	rule, ok := rules[name]
	return rule, ok
}

// Names lists the registered rules.
func Names() []string {
	return []string{Default, Attached, Whitespace}
}

func splitWith(re *regexp.Regexp, text string) []string {
	if text == "" {
		return nil
	}

	return re.FindAllString(text, -1)
}
