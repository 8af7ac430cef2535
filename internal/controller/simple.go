package controller

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	m "gollate.dev/pkg/gollate/internal/model"
)

// SimpleUI implements UI by printing straight to the command's output.
type SimpleUI struct {
	cmd    *cobra.Command
	config StartConfig
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.config = newStartConfig(options)

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait is a no-op: SimpleUI prints as it goes.
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayTokens prints the token listing of every witness.
func (s *SimpleUI) DisplayTokens(ctx context.Context, witnesses []m.Witness) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	renderTokens(s.cmd.OutOrStdout(), witnesses, s.palette())

	return nil
}

// DisplayReport prints the segment table of a report.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.Report, cached bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	renderReport(s.cmd.OutOrStdout(), report, cached, s.config.detail, s.palette())

	return nil
}

// DisplayJobFailure reports a job that could not be collated.
func (s *SimpleUI) DisplayJobFailure(ctx context.Context, name string, err error) {
	if ctx.Err() != nil {
		return
	}

	s.printf("%s %s: %v\n\n", color.New(color.FgRed, color.Bold).Sprint("failed"), name, err)
}

// DisplaySummary prints the job totals of a batch.
func (s *SimpleUI) DisplaySummary(ctx context.Context, jobs int, failed int) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Collated %d job(s), %d failed\n", jobs-failed, failed)
}

// palette colors varying readings unless color output is disabled (NO_COLOR,
// non-terminal output).
func (s *SimpleUI) palette() palette {
	return palette{
		varying: sprint(color.New(color.FgYellow)),
		muted:   sprint(color.New(color.FgHiBlack)),
		title:   sprint(color.New(color.Bold)),
		ansi:    !color.NoColor,
	}
}

func sprint(c *color.Color) func(string) string {
	return func(text string) string { return c.Sprint(text) }
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
