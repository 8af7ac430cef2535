package normalizers

import "golang.org/x/text/cases"

// CaseFold strips trailing whitespace and applies Unicode case folding.
func CaseFold(s string) string {
	// cases.Caser keeps state between calls, so one is built per call.
	return cases.Fold().String(TrimTrailingSpace(s))
}
