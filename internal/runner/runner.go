package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultInterpreters maps a script extension to the command that runs it.
var DefaultInterpreters = map[string][]string{
	".py": {"python3"},
	".js": {"node"},
	".go": {"go", "run"},
	".sh": {"sh"},
}

// Result is the outcome of one run of the target script.
type Result struct {
	Output   string // stdout and stderr, interleaved
	ExitCode int
}

// Failed reports whether the script exited non-zero.
func (r Result) Failed() bool {
	return r.ExitCode != 0
}

// Runner executes target scripts.
type Runner struct {
	interpreters map[string][]string
}

// New creates a Runner. Entries in interpreters override the defaults.
func New(interpreters map[string][]string) *Runner {
	merged := make(map[string][]string, len(DefaultInterpreters)+len(interpreters))
	for ext, cmd := range DefaultInterpreters {
		merged[ext] = cmd
	}
	for ext, cmd := range interpreters {
		if len(cmd) == 0 {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		merged[ext] = cmd
	}
	return &Runner{interpreters: merged}
}

// Command returns the argv used to run script with args.
func (r *Runner) Command(script string, args []string) ([]string, error) {
	ext := filepath.Ext(script)
	interp, ok := r.interpreters[ext]
	if !ok {
		return nil, fmt.Errorf("no interpreter configured for %q files", ext)
	}
	argv := make([]string, 0, len(interp)+1+len(args))
	argv = append(argv, interp...)
	argv = append(argv, script)
	argv = append(argv, args...)
	return argv, nil
}

// Run executes script and captures its combined output and exit code. A
// non-zero exit is reported in Result, not as an error; errors mean the
// script could not be started at all.
func (r *Runner) Run(ctx context.Context, script string, args []string) (Result, error) {
	argv, err := r.Command(script, args)
	if err != nil {
		return Result{}, err
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err = cmd.Run()
	if err == nil {
		return Result{Output: out.String()}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{Output: out.String(), ExitCode: exitErr.ExitCode()}, nil
	}
	return Result{}, fmt.Errorf("failed to run %s: %w", strings.Join(argv, " "), err)
}
