// Package normalizers contains the built-in normalization functions. Every
// function here is complete on its own: none of them builds on the default, so
// installing one replaces trailing-whitespace stripping unless it does that itself.
package normalizers

import (
	"strings"
	"unicode"
)

// Normalizer names accepted by Lookup.
const (
	Default     = "default"
	Casefold    = "casefold"
	Punctuation = "punctuation"
	Unicode     = "unicode"
)

var normalizers = map[string]func(string) string{
	Default:     TrimTrailingSpace,
	Casefold:    CaseFold,
	Punctuation: StripPunctuation,
	Unicode:     FoldUnicode,
}

// Lookup returns the normalizer registered under name.
func Lookup(name string) (func(string) string, bool) {
	fn, ok := normalizers[name]
	return fn, ok
}

// Names lists the registered normalizers.
func Names() []string {
	return []string{Default, Casefold, Punctuation, Unicode}
}

// Chain applies fns left to right. It is how callers compose a normalizer out of
// several steps, e.g. Chain(TrimTrailingSpace, strings.ToUpper).
func Chain(fns ...func(string) string) func(string) string {
	return func(s string) string {
		for _, fn := range fns {
			s = fn(s)
		}

		return s
	}
}

// TrimTrailingSpace removes trailing Unicode whitespace and nothing else.
func TrimTrailingSpace(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
