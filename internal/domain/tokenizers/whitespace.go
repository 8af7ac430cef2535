package tokenizers

import "regexp"

var whitespacePattern = regexp.MustCompile(`\S+\s*|\s+`)

// SplitWhitespace splits on whitespace only, punctuation stays inside tokens.
func SplitWhitespace(text string) []string {
	return splitWith(whitespacePattern, text)
}
