package normalizers

import (
	"regexp"
	"strings"
)

var trailingNonWord = regexp.MustCompile(`[^\p{L}\p{N}\p{M}_]+$`)

// StripPunctuation strips trailing whitespace, then any trailing run of non-word
// characters, and lower-cases the rest: "Yes, " and "Yes; " both become "yes".
func StripPunctuation(s string) string {
	return strings.ToLower(trailingNonWord.ReplaceAllString(TrimTrailingSpace(s), ""))
}
