package wolverine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/sokinpui/wolverine.go/internal/config"
	"github.com/sokinpui/wolverine.go/internal/nvim"
	"github.com/sokinpui/wolverine.go/internal/oracle"
	"github.com/sokinpui/wolverine.go/internal/repair"
	"github.com/sokinpui/wolverine.go/internal/report"
	"github.com/sokinpui/wolverine.go/internal/runner"
	"github.com/sokinpui/wolverine.go/internal/state"
	"github.com/sokinpui/wolverine.go/internal/ui"
	"github.com/sokinpui/wolverine.go/model"
)

// App orchestrates repair sessions, one-off applies and reverts.
type App struct {
	cfg      *config.Config
	store    *state.Manager
	runner   *runner.Runner
	oracle   oracle.Oracle
	gate     repair.Gate
	reloader repair.Reloader
	logger   *slog.Logger
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

// Option customizes an App.
type Option func(*App)

// WithOracle replaces the OpenAI-backed oracle.
func WithOracle(o oracle.Oracle) Option { return func(a *App) { a.oracle = o } }

// WithGate sets the confirmation gate used when cfg.Confirm is set.
func WithGate(g repair.Gate) Option { return func(a *App) { a.gate = g } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(a *App) { a.logger = l } }

// New creates a new App instance.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	store, err := state.New(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize state manager: %w", err)
	}

	a := &App{
		cfg:      cfg,
		store:    store,
		runner:   runner.New(cfg.Interpreters),
		reloader: nvim.Reloader{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *App) loop(observe func(repair.Event)) (*repair.Loop, error) {
	opts := []repair.Option{
		repair.WithLogger(a.logger),
		repair.WithReloader(a.reloader),
	}
	if a.cfg.Confirm {
		if a.gate == nil {
			return nil, errors.New("confirmation requested but no gate configured")
		}
		opts = append(opts, repair.WithGate(a.gate))
	}
	if observe != nil {
		opts = append(opts, repair.WithObserver(observe))
	}
	return repair.New(a.cfg, a.runner, a.oracle, a.store, opts...), nil
}

// ensureOracle builds the OpenAI client on first use.
func (a *App) ensureOracle(ctx context.Context) error {
	if a.oracle != nil {
		return nil
	}
	if err := a.cfg.Validate(true); err != nil {
		return err
	}
	prompt, err := a.cfg.Prompt()
	if err != nil {
		return err
	}
	client := oracle.New(oracle.Options{
		APIKey:       a.cfg.APIKey,
		BaseURL:      a.cfg.BaseURL,
		Model:        a.cfg.Model,
		Temperature:  a.cfg.Temperature,
		Retries:      a.cfg.JSONRetries,
		SystemPrompt: prompt,
		Logger:       a.logger,
	})
	if a.cfg.CheckModel {
		if err := client.CheckModel(ctx); err != nil {
			return fmt.Errorf("%w; try --model=gpt-3.5-turbo or set %s", err, config.EnvModel)
		}
	}
	a.oracle = client
	return nil
}

// Repair runs a repair session on script.
func (a *App) Repair(ctx context.Context, script string, args []string) (summary model.Summary, err error) {
	defer recoverPanic(&err)

	if _, err := os.Stat(script); err != nil {
		return model.Summary{}, fmt.Errorf("cannot repair %s: %w", script, err)
	}
	if err := a.ensureOracle(ctx); err != nil {
		return model.Summary{}, err
	}

	l, err := a.loop(a.printEvent)
	if err != nil {
		return model.Summary{}, err
	}
	out, err := l.Run(ctx, script, args)
	if err != nil {
		var perr *repair.PersistError
		if errors.As(err, &perr) {
			return model.Summary{Failed: []string{script}}, err
		}
		return model.Summary{}, err
	}

	summary = model.Summary{Message: "Script ran successfully."}
	if out.Attempts > 0 {
		summary.Modified = []string{script}
		summary.Message = fmt.Sprintf("Script ran successfully after %d repair(s). Revert with: wolverine revert %s", out.Attempts, script)
	}
	a.relativizeSummaryPaths(&summary)
	return summary, nil
}

func (a *App) printEvent(e repair.Event) {
	switch e.Kind {
	case repair.EventRunFailed:
		ui.Header("Script crashed. Trying to fix...")
		ui.Output("Output", e.Result.Output)
	case repair.EventRequesting:
		ui.Info("Asking %s for a fix (attempt %d)...", a.cfg.Model, e.Attempt)
	case repair.EventApplied:
		if !a.cfg.Confirm {
			// The gate already showed the report when confirming.
			fmt.Fprint(ui.Out, report.Render(e.Report))
		}
		ui.Success("Changes applied. Rerunning...")
	case repair.EventRejected:
		ui.Warning("Proposed edits did not fit the file: %v", e.Err)
	case repair.EventRunSucceeded:
		ui.Header("Script ran successfully.")
		ui.Output("Output", e.Result.Output)
	}
}

// ApplyReply applies one raw model reply to script. With dryRun the change
// is only computed.
func (a *App) ApplyReply(ctx context.Context, script, reply string, dryRun bool) (r model.ChangeReport, summary model.Summary, err error) {
	defer recoverPanic(&err)

	batch, err := oracle.ParseReply(reply)
	if err != nil {
		return model.ChangeReport{}, model.Summary{}, fmt.Errorf("failed to parse reply: %w", err)
	}

	l, err := a.loop(nil)
	if err != nil {
		return model.ChangeReport{}, model.Summary{}, err
	}
	change, err := l.Preview(script, batch)
	if err != nil {
		return model.ChangeReport{}, model.Summary{}, err
	}
	if dryRun {
		return change.Report, model.Summary{Message: "Dry run: nothing written."}, nil
	}
	if !batch.HasEdits() {
		return change.Report, model.Summary{Message: "Reply contains no edits. Nothing to do."}, nil
	}

	if err := l.Commit(ctx, change); err != nil {
		if errors.Is(err, repair.ErrDeclined) {
			return change.Report, model.Summary{Message: "Changes not applied."}, nil
		}
		return change.Report, model.Summary{Failed: []string{script}}, err
	}
	summary = model.Summary{Modified: []string{script}, Message: "Changes applied."}
	a.relativizeSummaryPaths(&summary)
	return change.Report, summary, nil
}

// Revert restores script from the backup taken by its last session.
func (a *App) Revert(script string) (summary model.Summary, err error) {
	defer recoverPanic(&err)

	if err := a.store.Revert(script); err != nil {
		return model.Summary{}, err
	}
	summary = model.Summary{
		Reverted: []string{script},
		Message:  fmt.Sprintf("Reverted changes to %s", script),
	}
	if err := a.reloader.Reload(script); err != nil {
		a.logger.Debug("editor reload skipped", "error", err)
	}
	a.relativizeSummaryPaths(&summary)
	return summary, nil
}

// History returns recorded sessions, oldest first.
func (a *App) History() []state.Session {
	return a.store.Sessions()
}

func recoverPanic(err *error) {
	if r := recover(); r != nil {
		*err = &DetailedError{
			Err:   fmt.Errorf("internal panic: %v", r),
			Stack: debug.Stack(),
		}
	}
}

// relativizeSummaryPaths converts absolute file paths in a summary to be
// relative to the current working directory for cleaner display.
func (a *App) relativizeSummaryPaths(summary *model.Summary) {
	wd, err := os.Getwd()
	if err != nil {
		return
	}

	makeRelative := func(paths []string) []string {
		out := make([]string, len(paths))
		for i, p := range paths {
			if !filepath.IsAbs(p) {
				out[i] = p
				continue
			}
			rel, err := filepath.Rel(wd, p)
			if err != nil {
				out[i] = p // Fallback to absolute path
			} else {
				out[i] = rel
			}
		}
		return out
	}

	summary.Modified = makeRelative(summary.Modified)
	summary.Reverted = makeRelative(summary.Reverted)
	summary.Failed = makeRelative(summary.Failed)
}
