package domain

import (
	"fmt"
	"strings"

	"gollate.dev/pkg/gollate/internal/domain/normalizers"
)

// Normalizer maps a token's original text to its comparison key. It sees one
// token at a time and must accept every string, including "".
//
// A Normalizer replaces the default completely. To extend the default, wrap it:
//
//	NormalizerFunc(normalizers.Chain(normalizers.TrimTrailingSpace, strings.ToLower))
type Normalizer interface {
	Normalize(original string) string
}

// NormalizerFunc adapts a plain function to Normalizer.
type NormalizerFunc func(original string) string

// Normalize implements Normalizer.
func (f NormalizerFunc) Normalize(original string) string { return f(original) }

// DefaultNormalizer strips trailing whitespace only.
func DefaultNormalizer() Normalizer {
	return NormalizerFunc(normalizers.TrimTrailingSpace)
}

// NewNormalizerByName returns a registered built-in normalizer.
func NewNormalizerByName(name string) (Normalizer, error) {
	fn, ok := normalizers.Lookup(name)
	if !ok {
		return nil, &ConfigurationError{
			Stage:   StageNormalizer,
			Index:   -1,
			Message: fmt.Sprintf("unknown normalizer %q (available: %s)", name, strings.Join(normalizers.Names(), ", ")),
		}
	}

	return NormalizerFunc(fn), nil
}

// CheckNormalizer probes n with the empty string, the one input every
// normalizer is guaranteed to meet sooner or later.
func CheckNormalizer(n Normalizer) error {
	if n == nil {
		return &ConfigurationError{Stage: StageNormalizer, Index: -1, Message: "normalizer is nil"}
	}

	_, err := normalizeSafe(n, "", -1, "")

	return err
}

func normalizeSafe(n Normalizer, witnessID string, index int, original string) (key string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ConfigurationError{
				Stage:   StageNormalizer,
				Witness: witnessID,
				Index:   index,
				Message: fmt.Sprintf("normalizer is not total for %q", original),
				Cause:   panicError(r),
			}
		}
	}()

	return n.Normalize(original), nil
}
