package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/sokinpui/wolverine.go/internal/ui"
)

// SourceProvider retrieves a raw model reply for the apply command.
type SourceProvider struct {
	// Path, when set, is read instead of stdin or the clipboard. "-" is stdin.
	Path  string
	Stdin *os.File
	// ReadClipboard defaults to clipboard.ReadAll.
	ReadClipboard func() (string, error)
}

// New creates a new SourceProvider.
func New(path string) *SourceProvider {
	return &SourceProvider{
		Path:          path,
		Stdin:         os.Stdin,
		ReadClipboard: clipboard.ReadAll,
	}
}

// GetContent retrieves content from the file, stdin (if piped) or the
// clipboard, in that order.
func (sp *SourceProvider) GetContent() (string, error) {
	if sp.Path != "" && sp.Path != "-" {
		data, err := os.ReadFile(sp.Path)
		if err != nil {
			return "", fmt.Errorf("failed to read reply file: %w", err)
		}
		return string(data), nil
	}

	if sp.Path == "-" || sp.isPiped() {
		ui.Header("--- Reading from stdin ---")
		content, err := io.ReadAll(sp.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return string(content), nil
	}

	ui.Header("--- Reading from clipboard ---")
	content, err := sp.ReadClipboard()
	if err != nil {
		return "", fmt.Errorf("failed to read from clipboard: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		ui.Warning("Clipboard is empty. Nothing to process.")
		return "", nil
	}
	return content, nil
}

func (sp *SourceProvider) isPiped() bool {
	if sp.Stdin == nil {
		return false
	}
	stat, err := sp.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
