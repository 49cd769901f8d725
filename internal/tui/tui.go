package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/sokinpui/wolverine.go/internal/report"
	"github.com/sokinpui/wolverine.go/model"
)

// --- Styles ---
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

const footerHeight = 2

// --- Model ---
type Model struct {
	report   model.ChangeReport
	content  string
	viewport viewport.Model
	ready    bool
	approved bool
	decided  bool
}

// New creates a confirmation model for a change report.
func New(r model.ChangeReport) Model {
	return Model{
		report:  r,
		content: report.Render(r),
	}
}

// Approved reports whether the user accepted the change.
func (m Model) Approved() bool {
	return m.approved
}

// Decided reports whether the user answered at all.
func (m Model) Decided() bool {
	return m.decided
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := msg.Height - footerHeight
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y":
			m.approved = true
			m.decided = true
			return m, tea.Quit
		case "n", "N", "q", "esc", "ctrl+c":
			m.decided = true
			return m, tea.Quit
		}
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder
	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(m.content)
	}
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(m.report.Path))
	b.WriteString("  ")
	b.WriteString(promptStyle.Render("Apply these changes? (y/n)"))
	if m.ready {
		b.WriteString(faintStyle.Render("  ↑/↓ scroll"))
	}
	return b.String()
}

// Gate asks for confirmation, with a full-screen view on a terminal and a
// plain prompt otherwise.
type Gate struct {
	In  *os.File
	Out io.Writer
}

// NewGate creates a Gate on stdin and stderr.
func NewGate() *Gate {
	return &Gate{In: os.Stdin, Out: os.Stderr}
}

// Confirm implements repair.Gate.
func (g *Gate) Confirm(ctx context.Context, r model.ChangeReport) (bool, error) {
	if g.In != nil && isatty.IsTerminal(g.In.Fd()) {
		p := tea.NewProgram(New(r),
			tea.WithContext(ctx),
			tea.WithInput(g.In),
			tea.WithOutput(g.Out),
			tea.WithAltScreen(),
		)
		final, err := p.Run()
		if err != nil {
			return false, err
		}
		return final.(Model).Approved(), nil
	}
	var in io.Reader = g.In
	if in == nil {
		in = strings.NewReader("")
	}
	return PromptConfirm(in, g.Out, r)
}

// PromptConfirm prints the report and reads a y/N answer from in.
func PromptConfirm(in io.Reader, out io.Writer, r model.ChangeReport) (bool, error) {
	fmt.Fprint(out, report.Render(r))
	fmt.Fprint(out, promptStyle.Render("Do you want to apply these changes? (y/N): "))

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(response), "y"), nil
}
