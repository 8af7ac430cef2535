package domain

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	m "gollate.dev/pkg/gollate/internal/model"
)

// Ingestor turns witness sources into witnesses: it owns the tokenizer rule and
// invokes the normalizer once per token.
type Ingestor interface {
	Ingest(ctx context.Context, sources []m.WitnessSource) ([]m.Witness, error)
}

type ingestor struct {
	tokenizer  Tokenizer
	normalizer Normalizer
	threads    int
}

// NewIngestor creates an Ingestor. Witnesses are built on up to threads
// goroutines; they share nothing but the tokenizer and normalizer, which must
// therefore be safe for concurrent use.
func NewIngestor(tokenizer Tokenizer, normalizer Normalizer, threads int) (Ingestor, error) {
	if tokenizer == nil {
		tokenizer = NewTokenizer(nil)
	}

	if normalizer == nil {
		normalizer = DefaultNormalizer()
	}

	if err := CheckNormalizer(normalizer); err != nil {
		return nil, err
	}

	if threads <= 0 {
		threads = 1
	}

	return &ingestor{tokenizer: tokenizer, normalizer: normalizer, threads: threads}, nil
}

func (in *ingestor) Ingest(ctx context.Context, sources []m.WitnessSource) ([]m.Witness, error) {
	if err := validateSourceIDs(sources); err != nil {
		return nil, err
	}

	witnesses := make([]m.Witness, len(sources))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(in.threads)

	for i, source := range sources {
		i, source := i, source
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			witness, err := in.build(source)
			if err != nil {
				slog.Error("Failed to ingest witness", "witness", source.ID, "origin", source.Origin, "error", err)
				return err
			}

			witnesses[i] = witness

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("Ingested witnesses", "count", len(witnesses))

	return witnesses, nil
}

func (in *ingestor) build(source m.WitnessSource) (m.Witness, error) {
	switch source.Kind {
	case m.SourceTagged:
		return in.buildTagged(source)
	case m.SourcePlain, "":
		return in.buildPlain(source)
	default:
		return m.Witness{}, &ConfigurationError{
			Stage:   StageInput,
			Witness: source.ID,
			Index:   -1,
			Message: fmt.Sprintf("unknown source kind %q", source.Kind),
		}
	}
}

func (in *ingestor) buildPlain(source m.WitnessSource) (m.Witness, error) {
	parts, err := in.tokenizer.Tokenize(source.ID, source.Text)
	if err != nil {
		return m.Witness{}, err
	}

	tokens := make([]m.Token, 0, len(parts))

	for i, part := range parts {
		key, err := normalizeSafe(in.normalizer, source.ID, i, part)
		if err != nil {
			return m.Witness{}, err
		}

		tokens = append(tokens, m.Token{Original: part, Normalized: key})
	}

	return m.Witness{ID: source.ID, Tokens: tokens}, nil
}

func (in *ingestor) buildTagged(source m.WitnessSource) (m.Witness, error) {
	tokens := make([]m.Token, 0, len(source.Tokens))

	for i, tagged := range source.Tokens {
		if tagged.Original == "" {
			return m.Witness{}, &ConfigurationError{
				Stage:   StageInput,
				Witness: source.ID,
				Index:   i,
				Message: "pre-tagged token has no original text",
			}
		}

		if tagged.Normalized != nil {
			tokens = append(tokens, m.Token{Original: tagged.Original, Normalized: *tagged.Normalized})
			continue
		}

		key, err := normalizeSafe(in.normalizer, source.ID, i, tagged.Original)
		if err != nil {
			return m.Witness{}, err
		}

		tokens = append(tokens, m.Token{Original: tagged.Original, Normalized: key})
	}

	return m.Witness{ID: source.ID, Tokens: tokens}, nil
}

func validateSourceIDs(sources []m.WitnessSource) error {
	ids := make([]string, len(sources))
	for i, s := range sources {
		ids[i] = s.ID
	}

	return validateIDs(ids)
}

func validateIDs(ids []string) error {
	seen := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		if id == "" {
			return &ConfigurationError{Stage: StageInput, Index: -1, Message: "witness id is empty"}
		}

		if _, dup := seen[id]; dup {
			return &ConfigurationError{Stage: StageInput, Witness: id, Index: -1, Message: "duplicate witness id"}
		}

		seen[id] = struct{}{}
	}

	return nil
}
