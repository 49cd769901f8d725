package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/wolverine.go/internal/patch"
	"github.com/sokinpui/wolverine.go/model"
)

func TestBuildReplace(t *testing.T) {
	before := []string{"first line\n", "second line\n", "third line\n"}
	after := []string{"first line\n", "new second line\n", "third line\n"}

	r, err := Build("script.py", before, after, []string{"fix typo", "rename"})
	require.NoError(t, err)

	assert.Equal(t, []string{"fix typo", "rename"}, r.Explanations)
	assert.Equal(t, []model.DiffLine{
		{Kind: model.DiffHeader, Text: "--- script.py"},
		{Kind: model.DiffHeader, Text: "+++ script.py"},
		{Kind: model.DiffHunk, Text: "@@ -1,3 +1,3 @@"},
		{Kind: model.DiffContext, Text: " first line"},
		{Kind: model.DiffRemoved, Text: "-second line"},
		{Kind: model.DiffAdded, Text: "+new second line"},
		{Kind: model.DiffContext, Text: " third line"},
	}, r.Diff)

	added, removed := Stats(r)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)
}

func TestBuildMultiLineContent(t *testing.T) {
	before := patch.SplitLines("a\nb\nc\n")
	after, err := patch.Apply(before, patch.Normalize(model.EditBatch{Operations: []model.EditOperation{
		{Kind: model.Replace, Line: 2, Content: "x = 1\ny = 2"},
	}}, len(before)))
	require.NoError(t, err)
	require.Len(t, after, 3)

	r, err := Build("m.py", before, after, nil)
	require.NoError(t, err)

	assert.Equal(t, []model.DiffLine{
		{Kind: model.DiffHeader, Text: "--- m.py"},
		{Kind: model.DiffHeader, Text: "+++ m.py"},
		{Kind: model.DiffHunk, Text: "@@ -1,3 +1,4 @@"},
		{Kind: model.DiffContext, Text: " a"},
		{Kind: model.DiffRemoved, Text: "-b"},
		{Kind: model.DiffAdded, Text: "+x = 1"},
		{Kind: model.DiffAdded, Text: "+y = 2"},
		{Kind: model.DiffContext, Text: " c"},
	}, r.Diff)

	added, removed := Stats(r)
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, removed)
}

func TestBuildNoChange(t *testing.T) {
	lines := []string{"a\n", "b"}
	r, err := Build("x", lines, lines, nil)
	require.NoError(t, err)
	assert.True(t, r.Empty())
	assert.Equal(t, "", r.Unified)
}

func TestBuildMissingFinalNewline(t *testing.T) {
	before := []string{"a\n", "b"}
	after := []string{"a\n", "b\n"}
	r, err := Build("x", before, after, nil)
	require.NoError(t, err)

	var texts []string
	for _, l := range r.Diff {
		texts = append(texts, l.Text)
	}
	assert.Contains(t, texts, "-b")
	assert.Contains(t, texts, noNewline)
	assert.Contains(t, texts, "+b")
}

func TestRemovedLineStartingWithDashes(t *testing.T) {
	before := []string{"-- comment\n", "keep\n"}
	after := []string{"keep\n"}
	r, err := Build("q.sql", before, after, nil)
	require.NoError(t, err)

	last := r.Diff[len(r.Diff)-2]
	assert.Equal(t, "--- comment", last.Text)
	assert.Equal(t, model.DiffRemoved, last.Kind)
}

func TestRenderKeepsText(t *testing.T) {
	r, err := Build("s.py", []string{"x\n"}, []string{"y\n"}, []string{"why"})
	require.NoError(t, err)

	out := Render(r)
	assert.Contains(t, out, "- why")
	assert.Contains(t, out, "-x")
	assert.Contains(t, out, "+y")
	assert.True(t, strings.Contains(out, "1 addition(s), 1 deletion(s)"))
}
