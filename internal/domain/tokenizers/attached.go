package tokenizers

import "regexp"

var attachedPattern = regexp.MustCompile(word + `+` + nonWord + `*|` + nonWord + `+`)

// SplitAttached keeps trailing punctuation and whitespace on the preceding word.
// Only punctuation that opens the text becomes a token of its own.
//
//	"Yes, no, or maybe" -> "Yes, " "no, " "or " "maybe"
func SplitAttached(text string) []string {
	return splitWith(attachedPattern, text)
}
