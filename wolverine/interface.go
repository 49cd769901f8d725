package wolverine

import (
	"context"
	"fmt"

	"github.com/sokinpui/wolverine.go/internal/config"
	"github.com/sokinpui/wolverine.go/model"
)

// Config for using wolverine as a library.
type Config struct {
	// Compute the change report without writing the script.
	DryRun bool
	// Directory for session history; empty means <repo root>/.wolverine.
	StateDir string
}

// Apply parses a model reply and applies its edits to script, backing the
// script up first. It returns the change report and a summary.
func Apply(script, reply string, cfg Config) (model.ChangeReport, map[string][]string, error) {
	appCfg := config.Default()
	appCfg.StateDir = cfg.StateDir

	app, err := New(appCfg)
	if err != nil {
		return model.ChangeReport{}, nil, fmt.Errorf("failed to initialize wolverine app: %w", err)
	}

	r, summary, err := app.ApplyReply(context.Background(), script, reply, cfg.DryRun)
	if err != nil {
		return r, nil, err
	}

	result := map[string][]string{
		"Modified": summary.Modified,
		"Failed":   summary.Failed,
	}
	return r, result, nil
}
