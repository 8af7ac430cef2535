// Package controller renders collation results for the gollate CLI.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "gollate.dev/pkg/gollate/internal/model"
)

// StartOption is a functional option for the Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	detail bool
}

// WithDetail makes the UI show a character-level diff for every varying
// reading against the first witness' reading.
func WithDetail(detail bool) StartOption {
	return func(c *StartConfig) {
		c.detail = detail
	}
}

func newStartConfig(options []StartOption) StartConfig {
	var cfg StartConfig
	for _, option := range options {
		option(&cfg)
	}

	return cfg
}

// UI defines how workflows present their results. Implementations only ever
// print the original text of tokens; normalized forms are shown only where they
// are explicitly requested (token listings).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for the UI to finish (user closes it)
	DisplayTokens(ctx context.Context, witnesses []m.Witness) error
	DisplayReport(ctx context.Context, report m.Report, cached bool) error
	DisplayJobFailure(ctx context.Context, name string, err error)
	DisplaySummary(ctx context.Context, jobs int, failed int)
}

// NewUI returns the interactive UI on a terminal and the plain one otherwise.
func NewUI(cmd *cobra.Command, isTTY bool) UI {
	if isTTY {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
