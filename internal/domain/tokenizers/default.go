package tokenizers

import "regexp"

var defaultPattern = regexp.MustCompile(word + `+\s*|` + nonWord + `+`)

// SplitDefault splits text into word runs carrying their trailing whitespace and
// runs of punctuation (with any whitespace) as separate tokens.
//
//	"Yes, no, or maybe" -> "Yes" ", " "no" ", " "or " "maybe"
func SplitDefault(text string) []string {
	return splitWith(defaultPattern, text)
}
