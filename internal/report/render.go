package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/wolverine.go/model"
)

// --- Styles ---
var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	explanationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	addedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	removedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	hunkStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("37"))
	headerStyle      = lipgloss.NewStyle().Bold(true)
	faintStyle       = lipgloss.NewStyle().Faint(true)
)

// Render formats a report for the terminal. Styling only wraps each line;
// the text of every diff line is unchanged.
func Render(r model.ChangeReport) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Explanations:"))
	b.WriteString("\n")
	if len(r.Explanations) == 0 {
		b.WriteString(faintStyle.Render("  (none given)"))
		b.WriteString("\n")
	}
	for _, e := range r.Explanations {
		b.WriteString(explanationStyle.Render("- " + e))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Changes:"))
	b.WriteString("\n")
	if r.Empty() {
		b.WriteString(faintStyle.Render("  No changes."))
		b.WriteString("\n")
		return b.String()
	}
	for _, l := range r.Diff {
		b.WriteString(styleFor(l.Kind).Render(l.Text))
		b.WriteString("\n")
	}

	added, removed := Stats(r)
	b.WriteString(faintStyle.Render(fmt.Sprintf("%d addition(s), %d deletion(s)", added, removed)))
	b.WriteString("\n")
	return b.String()
}

func styleFor(kind model.DiffLineKind) lipgloss.Style {
	switch kind {
	case model.DiffAdded:
		return addedStyle
	case model.DiffRemoved:
		return removedStyle
	case model.DiffHunk:
		return hunkStyle
	case model.DiffHeader:
		return headerStyle
	default:
		return lipgloss.NewStyle()
	}
}
