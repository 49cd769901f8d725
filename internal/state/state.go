package state

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sokinpui/wolverine.go/internal/fs"
)

const (
	stateDirName  = ".wolverine"
	stateFileName = "state.wolverine"
	// BackupSuffix is appended to a script path to name its backup.
	BackupSuffix = ".bak"
	noHash       = "-"
)

// Actions recorded in a session.
const (
	ActionBackup = "backup"
	ActionApply  = "apply"
	ActionRevert = "revert"
)

// ErrNoBackup is returned by Revert when a script has no backup file.
var ErrNoBackup = errors.New("no backup file found")

// Operation is a single recorded step of a repair session.
type Operation struct {
	Action      string
	Path        string
	ContentHash string // SHA256 of Path after the step
}

// Session is one repair session.
type Session struct {
	ID         string
	Timestamp  int64
	Script     string
	Operations []Operation
}

// Manager handles the lifecycle of the state file and backups.
type Manager struct {
	statePath string
	sessions  []Session
	StateDir  string
}

// findGitRoot finds the root of the git repository.
func findGitRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// New creates and loads a state manager. An empty dir puts the state
// directory at the git root, or the working directory outside a repository.
func New(dir string) (*Manager, error) {
	if dir == "" {
		rootDir, err := findGitRoot()
		if err != nil {
			rootDir, err = os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("could not get current working directory: %w", err)
			}
		}
		dir = filepath.Join(rootDir, stateDirName)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create state directory: %w", err)
	}
	m := &Manager{
		statePath: filepath.Join(dir, stateFileName),
		StateDir:  dir,
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

// BackupPath returns where the backup of script lives.
func BackupPath(script string) string {
	return script + BackupSuffix
}

// Begin starts a session for script, copying it to its backup path first.
func (m *Manager) Begin(script string) (Session, error) {
	abs, err := filepath.Abs(script)
	if err != nil {
		return Session{}, err
	}
	backup := BackupPath(abs)
	if err := fs.CopyFile(abs, backup); err != nil {
		return Session{}, fmt.Errorf("failed to back up %s: %w", script, err)
	}

	s := Session{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC().Unix(),
		Script:    abs,
	}
	m.sessions = append(m.sessions, s)
	if err := m.Record(s.ID, ActionBackup, backup); err != nil {
		return Session{}, err
	}
	return *m.session(s.ID), nil
}

// Record appends an operation to a session, hashing path as it is now.
func (m *Manager) Record(sessionID, action, path string) error {
	s := m.session(sessionID)
	if s == nil {
		return fmt.Errorf("unknown session %s", sessionID)
	}
	hash, err := fs.GetFileSHA256(path)
	if err != nil {
		// Revert falls back to an unchecked copy.
		hash = ""
	}
	s.Operations = append(s.Operations, Operation{Action: action, Path: path, ContentHash: hash})
	return m.save()
}

// Revert restores script from its backup byte for byte. When the backup was
// recorded by a session, its content must still match the recorded hash.
func (m *Manager) Revert(script string) error {
	abs, err := filepath.Abs(script)
	if err != nil {
		return err
	}
	backup := BackupPath(abs)
	if !fs.Exists(backup) {
		return fmt.Errorf("%w for %s", ErrNoBackup, script)
	}

	s := m.latestFor(abs)
	if s != nil {
		if want := backupHash(s); want != "" {
			got, err := fs.GetFileSHA256(backup)
			if err != nil {
				return err
			}
			if got != want {
				return fmt.Errorf("backup %s changed since session %s", backup, s.ID)
			}
		}
	}

	if err := fs.CopyFile(backup, abs); err != nil {
		return fmt.Errorf("failed to restore %s: %w", script, err)
	}

	if s == nil {
		m.sessions = append(m.sessions, Session{
			ID:        uuid.NewString(),
			Timestamp: time.Now().UTC().Unix(),
			Script:    abs,
		})
		s = &m.sessions[len(m.sessions)-1]
	}
	return m.Record(s.ID, ActionRevert, abs)
}

// Sessions returns recorded sessions, oldest first.
func (m *Manager) Sessions() []Session {
	out := make([]Session, len(m.sessions))
	copy(out, m.sessions)
	return out
}

func (m *Manager) session(id string) *Session {
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			return &m.sessions[i]
		}
	}
	return nil
}

func (m *Manager) latestFor(script string) *Session {
	for i := len(m.sessions) - 1; i >= 0; i-- {
		if m.sessions[i].Script == script {
			return &m.sessions[i]
		}
	}
	return nil
}

func backupHash(s *Session) string {
	for _, op := range s.Operations {
		if op.Action == ActionBackup {
			return op.ContentHash
		}
	}
	return ""
}

// The state file is a list of blank-line separated blocks, one per session:
// id, timestamp, script, then three lines (action, path, hash) per operation.
// A missing hash is written as noHash.
func (m *Manager) load() error {
	data, err := os.ReadFile(m.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	for _, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			return fmt.Errorf("invalid state file: incomplete session header")
		}

		ts, err := strconv.ParseInt(lines[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid state file: could not parse timestamp from '%s': %w", lines[1], err)
		}
		s := Session{ID: lines[0], Timestamp: ts, Script: lines[2]}

		opLines := lines[3:]
		if len(opLines)%3 != 0 {
			return fmt.Errorf("invalid state file: incomplete operation record")
		}
		for i := 0; i < len(opLines); i += 3 {
			s.Operations = append(s.Operations, Operation{
				Action:      opLines[i],
				Path:        opLines[i+1],
				ContentHash: strings.TrimPrefix(opLines[i+2], noHash),
			})
		}
		m.sessions = append(m.sessions, s)
	}
	return nil
}

func (m *Manager) save() error {
	blocks := make([]string, 0, len(m.sessions))
	for _, s := range m.sessions {
		var b strings.Builder
		fmt.Fprintf(&b, "%s\n%d\n%s", s.ID, s.Timestamp, s.Script)
		for _, op := range s.Operations {
			hash := op.ContentHash
			if hash == "" {
				hash = noHash
			}
			fmt.Fprintf(&b, "\n%s\n%s\n%s", op.Action, op.Path, hash)
		}
		blocks = append(blocks, b.String())
	}

	content := strings.Join(blocks, "\n\n") + "\n"
	if err := fs.WriteFileAtomic(m.statePath, []byte(content)); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}
