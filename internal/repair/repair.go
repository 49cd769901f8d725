package repair

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sokinpui/wolverine.go/internal/config"
	"github.com/sokinpui/wolverine.go/internal/fs"
	"github.com/sokinpui/wolverine.go/internal/oracle"
	"github.com/sokinpui/wolverine.go/internal/patch"
	"github.com/sokinpui/wolverine.go/internal/report"
	"github.com/sokinpui/wolverine.go/internal/runner"
	"github.com/sokinpui/wolverine.go/internal/state"
	"github.com/sokinpui/wolverine.go/model"
)

// Runner executes the target script.
type Runner interface {
	Run(ctx context.Context, script string, args []string) (runner.Result, error)
}

// Gate decides whether a change is written.
type Gate interface {
	Confirm(ctx context.Context, r model.ChangeReport) (bool, error)
}

// Store snapshots a script before its first edit and records each write.
type Store interface {
	Begin(script string) (state.Session, error)
	Record(sessionID, action, path string) error
}

// Reloader refreshes an editor view of a file after it was written.
type Reloader interface {
	Reload(path string) error
}

// EventKind identifies a step of a repair session.
type EventKind int

const (
	EventRunFailed EventKind = iota
	EventRunSucceeded
	EventRequesting
	EventApplied
	EventRejected
)

// Event is sent to the observer after each step.
type Event struct {
	Kind    EventKind
	Attempt int
	Result  runner.Result
	Report  model.ChangeReport
	Err     error
}

// Outcome summarizes a finished session.
type Outcome struct {
	Attempts  int
	Output    string
	SessionID string
}

// Change is a computed but not yet written patch.
type Change struct {
	Script string
	Plan   patch.Plan
	Before []string
	After  []string
	Report model.ChangeReport
}

// Loop runs the target script and repairs it until it exits cleanly.
type Loop struct {
	cfg      *config.Config
	runner   Runner
	oracle   oracle.Oracle
	store    Store
	gate     Gate
	reloader Reloader
	write    func(path string, lines []string) error
	observe  func(Event)
	logger   *slog.Logger

	sessionID string
}

// Option customizes a Loop.
type Option func(*Loop)

// WithGate sets the confirmation gate. Without one every change is written.
func WithGate(g Gate) Option { return func(l *Loop) { l.gate = g } }

// WithReloader sets an editor reloader.
func WithReloader(r Reloader) Option { return func(l *Loop) { l.reloader = r } }

// WithObserver receives an Event after each step.
func WithObserver(fn func(Event)) Option { return func(l *Loop) { l.observe = fn } }

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option { return func(l *Loop) { l.logger = logger } }

// WithWriter replaces the file writer.
func WithWriter(fn func(path string, lines []string) error) Option {
	return func(l *Loop) { l.write = fn }
}

// New creates a Loop. o may be nil for a Loop that only applies batches.
func New(cfg *config.Config, r Runner, o oracle.Oracle, store Store, opts ...Option) *Loop {
	l := &Loop{
		cfg:    cfg,
		runner: r,
		oracle: o,
		store:  store,
		write:  fs.WriteLines,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes script until it exits with status 0. Each failure is sent to
// the oracle and the proposed batch applied. An out-of-range batch is
// discarded and a fresh one requested on the next attempt.
func (l *Loop) Run(ctx context.Context, script string, args []string) (Outcome, error) {
	repairs := 0
	for {
		res, err := l.runner.Run(ctx, script, args)
		if err != nil {
			return Outcome{Attempts: repairs, SessionID: l.sessionID}, err
		}
		if !res.Failed() {
			l.emit(Event{Kind: EventRunSucceeded, Attempt: repairs, Result: res})
			return Outcome{Attempts: repairs, Output: res.Output, SessionID: l.sessionID}, nil
		}
		l.emit(Event{Kind: EventRunFailed, Attempt: repairs, Result: res})

		if l.cfg.MaxAttempts > 0 && repairs >= l.cfg.MaxAttempts {
			return Outcome{Attempts: repairs, Output: res.Output, SessionID: l.sessionID},
				fmt.Errorf("%w after %d attempt(s)", ErrAbandoned, repairs)
		}
		repairs++

		if err := l.repairOnce(ctx, script, args, res, repairs); err != nil {
			if errors.Is(err, patch.ErrOutOfRange) {
				l.logger.Warn("discarding out-of-range edits", "attempt", repairs, "error", err)
				l.emit(Event{Kind: EventRejected, Attempt: repairs, Err: err})
				continue
			}
			return Outcome{Attempts: repairs, Output: res.Output, SessionID: l.sessionID}, err
		}
	}
}

func (l *Loop) repairOnce(ctx context.Context, script string, args []string, res runner.Result, attempt int) error {
	if l.oracle == nil {
		return errors.New("no oracle configured")
	}
	lines, err := fs.ReadLines(script)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", script, err)
	}

	l.emit(Event{Kind: EventRequesting, Attempt: attempt})
	batch, err := l.oracle.Propose(ctx, oracle.Request{
		Script:      script,
		Lines:       lines,
		Args:        args,
		ErrorOutput: res.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to get edits: %w", err)
	}
	if batch.Ignored > 0 {
		l.logger.Debug("ignored malformed records", "count", batch.Ignored)
	}
	if !batch.HasEdits() {
		return ErrNoProgress
	}

	change, err := l.prepare(script, lines, batch)
	if err != nil {
		return err
	}
	if err := l.Commit(ctx, change); err != nil {
		return err
	}
	l.emit(Event{Kind: EventApplied, Attempt: attempt, Report: change.Report})
	return nil
}

// Preview reads script and computes the change a batch would make without
// writing anything.
func (l *Loop) Preview(script string, batch model.EditBatch) (Change, error) {
	lines, err := fs.ReadLines(script)
	if err != nil {
		return Change{}, fmt.Errorf("failed to read %s: %w", script, err)
	}
	return l.prepare(script, lines, batch)
}

func (l *Loop) prepare(script string, lines []string, batch model.EditBatch) (Change, error) {
	plan := patch.Normalize(batch, len(lines))
	after, err := patch.Apply(lines, plan)
	if err != nil {
		return Change{}, err
	}
	r, err := report.Build(script, lines, after, plan.Explanations)
	if err != nil {
		return Change{}, err
	}
	return Change{Script: script, Plan: plan, Before: lines, After: after, Report: r}, nil
}

// Commit passes a change through the gate, snapshots the script on the
// first write of the session, and writes the patched lines.
func (l *Loop) Commit(ctx context.Context, c Change) error {
	if l.gate != nil {
		ok, err := l.gate.Confirm(ctx, c.Report)
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			return ErrDeclined
		}
	}

	if l.store != nil && l.sessionID == "" {
		s, err := l.store.Begin(c.Script)
		if err != nil {
			return err
		}
		l.sessionID = s.ID
		l.logger.Debug("started repair session", "session", s.ID, "script", c.Script)
	}

	if err := l.write(c.Script, c.After); err != nil {
		return &PersistError{Path: c.Script, Lines: c.After, Err: err}
	}

	if l.store != nil {
		if err := l.store.Record(l.sessionID, state.ActionApply, c.Script); err != nil {
			l.logger.Warn("failed to record change", "error", err)
		}
	}
	if l.reloader != nil {
		if err := l.reloader.Reload(c.Script); err != nil {
			l.logger.Debug("editor reload skipped", "error", err)
		}
	}
	return nil
}

// SessionID returns the current session, empty before the first write.
func (l *Loop) SessionID() string {
	return l.sessionID
}

func (l *Loop) emit(e Event) {
	if l.observe != nil {
		l.observe(e)
	}
}
