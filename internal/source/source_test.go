package source

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/wolverine.go/internal/ui"
)

func silence(t *testing.T) {
	t.Helper()
	old := ui.Out
	ui.Out = io.Discard
	t.Cleanup(func() { ui.Out = old })
}

func TestGetContentFromFile(t *testing.T) {
	silence(t)
	path := filepath.Join(t.TempDir(), "reply.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"explanation":"x"}]`), 0644))

	content, err := New(path).GetContent()
	require.NoError(t, err)
	assert.Equal(t, `[{"explanation":"x"}]`, content)
}

func TestGetContentFromPipe(t *testing.T) {
	silence(t)
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = io.WriteString(w, "[]")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	t.Cleanup(func() { r.Close() })

	sp := &SourceProvider{Stdin: r, ReadClipboard: func() (string, error) {
		t.Fatal("clipboard must not be read when stdin is piped")
		return "", nil
	}}
	content, err := sp.GetContent()
	require.NoError(t, err)
	assert.Equal(t, "[]", content)
}

func TestGetContentFromClipboard(t *testing.T) {
	silence(t)
	sp := &SourceProvider{ReadClipboard: func() (string, error) { return "  \n", nil }}
	content, err := sp.GetContent()
	require.NoError(t, err)
	assert.Equal(t, "", content)

	sp.ReadClipboard = func() (string, error) { return "", errors.New("no clipboard utility") }
	_, err = sp.GetContent()
	assert.Error(t, err)
}
