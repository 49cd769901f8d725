package report

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/sokinpui/wolverine.go/internal/patch"
	"github.com/sokinpui/wolverine.go/model"
)

// DefaultContext is the number of unchanged lines shown around a change.
const DefaultContext = 3

const noNewline = "\\ No newline at end of file"

// Build computes the unified diff between before and after and pairs it with
// the explanations. Lines keep their terminators; an element holding several
// physical lines, as multi-line edit content does, is split before diffing.
func Build(path string, before, after, explanations []string) (model.ChangeReport, error) {
	diff := difflib.UnifiedDiff{
		A:        terminate(physical(before)),
		B:        terminate(physical(after)),
		FromFile: path,
		ToFile:   path,
		Context:  DefaultContext,
	}
	unified, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return model.ChangeReport{}, fmt.Errorf("failed to compute diff for %s: %w", path, err)
	}

	return model.ChangeReport{
		Path:         path,
		Explanations: append([]string(nil), explanations...),
		Diff:         classify(unified),
		Unified:      unified,
	}, nil
}

func physical(lines []string) []string {
	return patch.SplitLines(patch.JoinLines(lines))
}

// terminate gives every line a trailing "\n" for the diff writer, marking a
// missing final terminator the way git does.
func terminate(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if strings.HasSuffix(l, "\n") {
			out[i] = l
			continue
		}
		out[i] = l + "\n" + noNewline + "\n"
	}
	return out
}

func classify(unified string) []model.DiffLine {
	if unified == "" {
		return nil
	}
	raw := strings.Split(strings.TrimSuffix(unified, "\n"), "\n")
	lines := make([]model.DiffLine, 0, len(raw))
	inHunk := false
	for _, text := range raw {
		kind := model.DiffContext
		switch {
		case strings.HasPrefix(text, "@@"):
			kind = model.DiffHunk
			inHunk = true
		case !inHunk && (strings.HasPrefix(text, "---") || strings.HasPrefix(text, "+++")):
			kind = model.DiffHeader
		case strings.HasPrefix(text, "+"):
			kind = model.DiffAdded
		case strings.HasPrefix(text, "-"):
			kind = model.DiffRemoved
		}
		lines = append(lines, model.DiffLine{Kind: kind, Text: text})
	}
	return lines
}

// Stats counts added and removed lines of a report.
func Stats(r model.ChangeReport) (added, removed int) {
	for _, l := range r.Diff {
		switch l.Kind {
		case model.DiffAdded:
			added++
		case model.DiffRemoved:
			removed++
		}
	}
	return added, removed
}
