package normalizers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltins(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"default keeps case", TrimTrailingSpace, "Koala ", "Koala"},
		{"default keeps punctuation", TrimTrailingSpace, ", ", ","},
		{"default keeps leading space", TrimTrailingSpace, "  a\t\n", "  a"},
		{"default empty", TrimTrailingSpace, "", ""},
		{"casefold", CaseFold, "Koala ", "koala"},
		{"casefold sharp s", CaseFold, "Straße", "strasse"},
		{"punctuation comma", StripPunctuation, "Yes, ", "yes"},
		{"punctuation semicolon", StripPunctuation, "Yes; ", "yes"},
		{"punctuation only", StripPunctuation, "; ", ""},
		{"punctuation inner kept", StripPunctuation, "don't!", "don't"},
		{"unicode accents", FoldUnicode, "Café ", "cafe"},
		{"unicode decomposed input", FoldUnicode, "café", "cafe"},
		{"unicode empty", FoldUnicode, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.in))
		})
	}
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		fn, ok := Lookup(name)
		require.True(t, ok, name)
		require.NotNil(t, fn)
		assert.NotPanics(t, func() { fn("") }, name)
	}

	_, ok := Lookup("nope")
	assert.False(t, ok)
}

func TestChainDoesNotInheritDefault(t *testing.T) {
	upper := Chain(strings.ToUpper)
	assert.Equal(t, "KOALA ", upper("koala "), "a custom chain keeps trailing whitespace unless it strips it")

	withTrim := Chain(TrimTrailingSpace, strings.ToUpper)
	assert.Equal(t, "KOALA", withTrim("koala "))
}
