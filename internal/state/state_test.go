package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScript(t *testing.T, content string) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "buggy.py")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return dir, path
}

func TestBeginBacksUpAndRevertRestores(t *testing.T) {
	dir, script := newScript(t, "print(1)\nprint(undefined)")
	m, err := New(filepath.Join(dir, ".wolverine"))
	require.NoError(t, err)

	s, err := m.Begin(script)
	require.NoError(t, err)
	require.Len(t, s.Operations, 1)
	assert.Equal(t, ActionBackup, s.Operations[0].Action)
	assert.NotEmpty(t, s.Operations[0].ContentHash)

	backup, err := os.ReadFile(BackupPath(script))
	require.NoError(t, err)
	assert.Equal(t, "print(1)\nprint(undefined)", string(backup))

	require.NoError(t, os.WriteFile(script, []byte("print(1)\n"), 0644))
	require.NoError(t, m.Record(s.ID, ActionApply, script))

	require.NoError(t, m.Revert(script))
	restored, err := os.ReadFile(script)
	require.NoError(t, err)
	assert.Equal(t, backup, restored)

	sessions := m.Sessions()
	require.Len(t, sessions, 1)
	var actions []string
	for _, op := range sessions[0].Operations {
		actions = append(actions, op.Action)
	}
	assert.Equal(t, []string{ActionBackup, ActionApply, ActionRevert}, actions)
}

func TestStateSurvivesReload(t *testing.T) {
	dir, script := newScript(t, "x = 1\n")
	stateDir := filepath.Join(dir, ".wolverine")

	m, err := New(stateDir)
	require.NoError(t, err)
	s, err := m.Begin(script)
	require.NoError(t, err)
	// Hashing a missing file records no hash.
	require.NoError(t, m.Record(s.ID, ActionApply, filepath.Join(dir, "gone.py")))

	reloaded, err := New(stateDir)
	require.NoError(t, err)
	sessions := reloaded.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, s.ID, sessions[0].ID)
	assert.Equal(t, s.Script, sessions[0].Script)
	require.Len(t, sessions[0].Operations, 2)
	assert.Equal(t, "", sessions[0].Operations[1].ContentHash)
}

func TestRevertWithoutBackup(t *testing.T) {
	dir, script := newScript(t, "x\n")
	m, err := New(filepath.Join(dir, ".wolverine"))
	require.NoError(t, err)

	err = m.Revert(script)
	assert.ErrorIs(t, err, ErrNoBackup)
}

func TestRevertRefusesTamperedBackup(t *testing.T) {
	dir, script := newScript(t, "x\n")
	m, err := New(filepath.Join(dir, ".wolverine"))
	require.NoError(t, err)
	_, err = m.Begin(script)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(BackupPath(script), []byte("other\n"), 0644))
	assert.Error(t, m.Revert(script))
}

func TestRecordUnknownSession(t *testing.T) {
	m, err := New(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, m.Record("missing", ActionApply, "x"))
}

func TestInvalidStateFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, stateFileName), []byte("id\nnot-a-time\n/x\n"), 0644))
	_, err := New(dir)
	assert.Error(t, err)
}
