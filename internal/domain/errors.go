package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration matches every *ConfigurationError.
	ErrConfiguration = errors.New("configuration error")
	// ErrStructural matches every *StructuralError.
	ErrStructural = errors.New("structural error")
)

// Stage names the pluggable step a ConfigurationError came from.
type Stage string

// Stages that can reject configuration.
const (
	StageTokenizer  Stage = "tokenizer"
	StageNormalizer Stage = "normalizer"
	StageInput      Stage = "input"
)

// ConfigurationError reports a supplied tokenizer rule or normalizer that is not
// total, returns malformed output, or input witnesses that cannot be collated.
// Index is the token index inside the witness, or -1 when not applicable.
type ConfigurationError struct {
	Stage   Stage
	Witness string
	Index   int
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s", e.Stage, e.Message)

	if e.Witness != "" {
		fmt.Fprintf(&b, " (witness %q", e.Witness)

		if e.Index >= 0 {
			fmt.Fprintf(&b, ", token %d", e.Index)
		}

		b.WriteString(")")
	}

	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}

	return b.String()
}

// Unwrap returns the underlying cause.
func (e *ConfigurationError) Unwrap() error { return e.Cause }

// Is makes errors.Is(err, ErrConfiguration) hold.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// StructuralError reports an alignment that broke one of the table invariants.
// It always indicates a bug in an alignment engine.
type StructuralError struct {
	Witnesses []string
	Reason    string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural invariant violated for %s: %s", strings.Join(e.Witnesses, ", "), e.Reason)
}

// Is makes errors.Is(err, ErrStructural) hold.
func (e *StructuralError) Is(target error) bool { return target == ErrStructural }

func panicError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}

	return fmt.Errorf("panic: %v", recovered)
}
