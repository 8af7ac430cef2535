package normalizers

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldUnicode removes combining marks (so "café" and "cafe" compare equal),
// recomposes to NFC, folds case and strips trailing whitespace.
func FoldUnicode(s string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	result, _, err := transform.String(stripMarks, s)
	if err != nil {
		result = norm.NFC.String(s)
	}

	return cases.Fold().String(TrimTrailingSpace(result))
}
