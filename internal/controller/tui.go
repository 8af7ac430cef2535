package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"golang.org/x/term"

	m "gollate.dev/pkg/gollate/internal/model"
)

// Lines used by the pager around the viewport: title, rule, rule, status.
const pagerChrome = 4

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	varyingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	failureStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// TUI implements UI with Bubble Tea. Output is collected while the workflow
// runs and shown on Wait: printed directly when it fits on the screen, in a
// scrollable pager otherwise.
type TUI struct {
	output io.Writer
	config StartConfig

	mu      sync.Mutex
	content strings.Builder
	width   int
	height  int
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start resets the collected output and reads the terminal size.
func (p *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.config = newStartConfig(options)
	p.content.Reset()

	if f, ok := p.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			p.width, p.height = width, height
		}
	}

	return nil
}

// Close finalizes the UI.
func (p *TUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait shows everything collected since Start and blocks until the user leaves
// the pager.
func (p *TUI) Wait(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	content := p.content.String()
	p.content.Reset()
	p.mu.Unlock()

	if content == "" {
		return
	}

	if !p.needsPagination(content) {
		_, _ = fmt.Fprint(p.output, content)
		return
	}

	model := newPagerModel("gollate", content)

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		slog.Error("Pager failed, printing instead", "error", err)

		_, _ = fmt.Fprint(p.output, content)
	}
}

func (p *TUI) needsPagination(content string) bool {
	if p.height == 0 {
		return false
	}

	return strings.Count(content, "\n") > p.height-pagerChrome
}

// DisplayTokens adds the token listing of every witness.
func (p *TUI) DisplayTokens(ctx context.Context, witnesses []m.Witness) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	renderTokens(&p.content, witnesses, p.palette())

	return nil
}

// DisplayReport adds the segment table of a report.
func (p *TUI) DisplayReport(ctx context.Context, report m.Report, cached bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	renderReport(&p.content, report, cached, p.config.detail, p.palette())

	return nil
}

// DisplayJobFailure adds a failed job.
func (p *TUI) DisplayJobFailure(ctx context.Context, name string, err error) {
	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(&p.content, "%s %s: %v\n\n", failureStyle.Render("✗ failed"), name, err)
}

// DisplaySummary adds the job totals of a batch.
func (p *TUI) DisplaySummary(ctx context.Context, jobs int, failed int) {
	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(&p.content, "%s\n", titleStyle.Render(fmt.Sprintf("Collated %d job(s), %d failed", jobs-failed, failed)))
}

func (p *TUI) palette() palette {
	return palette{
		varying: render(varyingStyle),
		muted:   render(mutedStyle),
		title:   render(titleStyle),
		ansi:    !color.NoColor,
	}
}

func render(style lipgloss.Style) func(string) string {
	return func(text string) string { return style.Render(text) }
}

// pagerModel is a read-only scrollable view over pre-rendered content.
type pagerModel struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
	quitting bool
}

func newPagerModel(title, content string) pagerModel {
	return pagerModel{title: title, content: content}
}

func (pm pagerModel) Init() tea.Cmd {
	return nil
}

func (pm pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			pm.quitting = true
			return pm, tea.Quit
		case "g", "home":
			pm.viewport.GotoTop()
			return pm, nil
		case "G", "end":
			pm.viewport.GotoBottom()
			return pm, nil
		}

	case tea.WindowSizeMsg:
		height := max(msg.Height-pagerChrome, 1)

		if !pm.ready {
			pm.viewport = viewport.New(msg.Width, height)
			pm.viewport.SetContent(pm.content)
			pm.ready = true
		} else {
			pm.viewport.Width = msg.Width
			pm.viewport.Height = height
		}

		return pm, nil
	}

	var cmd tea.Cmd

	pm.viewport, cmd = pm.viewport.Update(msg)

	return pm, cmd
}

func (pm pagerModel) View() string {
	if !pm.ready {
		return "\n  Loading..."
	}

	rule := ruleStyle.Render(strings.Repeat("─", max(pm.viewport.Width, 1)))

	var b strings.Builder

	b.WriteString(titleStyle.Render(pm.title) + "\n")
	b.WriteString(rule + "\n")
	b.WriteString(pm.viewport.View() + "\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "%3.f%% | ↑/k ↓/j: scroll | g/G: top/bottom | q: quit", pm.viewport.ScrollPercent()*100)

	return b.String()
}
