package domain

import (
	"fmt"
	"log/slog"

	m "gollate.dev/pkg/gollate/internal/model"
)

// Collator is the entry point of the core: witnesses in, verified alignment and
// segments out. It is synchronous and keeps no state between calls, so separate
// jobs may use separate Collators concurrently.
type Collator interface {
	Collate(witnesses []m.Witness, segmentation bool) (m.Collation, error)
}

type collator struct {
	aligner Aligner
}

// NewCollator creates a Collator. A nil aligner selects the default engine.
func NewCollator(aligner Aligner) Collator {
	if aligner == nil {
		aligner = NewAligner()
	}

	return &collator{aligner: aligner}
}

func (c *collator) Collate(witnesses []m.Witness, segmentation bool) (m.Collation, error) {
	ids := make([]string, len(witnesses))
	for i, w := range witnesses {
		ids[i] = w.ID
	}

	if err := validateIDs(ids); err != nil {
		return m.Collation{}, err
	}

	table, err := c.aligner.Align(witnesses)
	if err != nil {
		return m.Collation{}, fmt.Errorf("align: %w", err)
	}

	if err := VerifyTable(table, witnesses); err != nil {
		slog.Error("Alignment table failed verification", "error", err)
		return m.Collation{}, err
	}

	segments := Segment(table, segmentation)

	slog.Debug("Collated witnesses",
		"witnesses", len(witnesses),
		"columns", len(table.Columns),
		"segments", len(segments),
		"segmented", segmentation,
	)

	return m.Collation{Table: table, Segments: segments, Segmented: segmentation}, nil
}
