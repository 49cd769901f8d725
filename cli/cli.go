package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sokinpui/wolverine.go/internal/config"
	"github.com/sokinpui/wolverine.go/internal/report"
	"github.com/sokinpui/wolverine.go/internal/source"
	"github.com/sokinpui/wolverine.go/internal/tui"
	"github.com/sokinpui/wolverine.go/internal/ui"
	"github.com/sokinpui/wolverine.go/wolverine"
)

// Flags holds all the command-line flag values.
type Flags struct {
	ConfigFile   string
	StateDir     string
	Verbose      bool
	Model        string
	Attempts     int
	Yes          bool
	Confirm      bool
	NoCheckModel bool
	Revert       bool
	DryRun       bool
}

// NewRootCommand builds the wolverine command tree.
func NewRootCommand() *cobra.Command {
	f := &Flags{}

	root := &cobra.Command{
		Use:   "wolverine",
		Short: "Run a script and let a language model repair it until it stops crashing",
		Long: `wolverine runs a script, sends the crash output to a language model,
applies the line edits it proposes and reruns the script until it exits cleanly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), f.Verbose))
		},
	}
	root.PersistentFlags().AddFlagSet(globalFlags(f))

	root.AddCommand(
		newRunCommand(f),
		newApplyCommand(f),
		newRevertCommand(f),
		newHistoryCommand(f),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func globalFlags(f *Flags) *pflag.FlagSet {
	fs := pflag.NewFlagSet("global", pflag.ContinueOnError)
	fs.StringVar(&f.ConfigFile, "config", "", "YAML configuration file (default: ./"+config.DefaultConfigFile+" if present).")
	fs.StringVar(&f.StateDir, "state-dir", "", "Directory for session history (default: <repo root>/.wolverine).")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "Enable debug logging.")
	return fs
}

func confirmFlags(f *Flags) *pflag.FlagSet {
	fs := pflag.NewFlagSet("confirm", pflag.ContinueOnError)
	fs.BoolVarP(&f.Yes, "yes", "y", false, "Apply changes without asking.")
	fs.BoolVar(&f.Confirm, "confirm", false, "Show each change and ask before writing it.")
	return fs
}

func newRunCommand(f *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script> [args...]",
		Short: "Run a script and repair it until it exits cleanly",
		Example: `  wolverine run buggy_script.py "subtract" 20 3
  wolverine run --confirm -m gpt-3.5-turbo buggy_script.py
  wolverine run --revert buggy_script.py`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			app, err := newApp(cfg)
			if err != nil {
				return err
			}

			if f.Revert {
				summary, err := app.Revert(args[0])
				if err != nil {
					return err
				}
				ui.PrintSummary(summary)
				return nil
			}

			summary, err := app.Repair(cmd.Context(), args[0], args[1:])
			if err != nil {
				if len(summary.Failed) > 0 {
					ui.PrintSummary(summary)
				}
				return err
			}
			ui.PrintSummary(summary)
			return nil
		},
	}

	flags := cmd.Flags()
	// Everything after the script belongs to the script.
	flags.SetInterspersed(false)
	flags.StringVarP(&f.Model, "model", "m", "", "Model to ask for fixes (default: $"+config.EnvModel+" or "+config.DefaultModel+").")
	flags.IntVar(&f.Attempts, "attempts", 0, "Maximum repair attempts; 0 is unbounded.")
	flags.BoolVar(&f.NoCheckModel, "no-check-model", false, "Skip checking that the model is available.")
	flags.BoolVar(&f.Revert, "revert", false, "Restore the script from its backup instead of running it.")
	flags.AddFlagSet(confirmFlags(f))
	cmd.MarkFlagsMutuallyExclusive("yes", "confirm")
	return cmd
}

func newApplyCommand(f *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <script> [reply-file]",
		Short: "Apply one model reply to a script",
		Long: `Apply the edits of one model reply to a script. The reply is read from
reply-file, from stdin when piped (or when reply-file is "-"), or from the clipboard.`,
		Example: `  pbpaste | wolverine apply buggy_script.py
  wolverine apply --dry-run buggy_script.py reply.json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			app, err := newApp(cfg)
			if err != nil {
				return err
			}

			path := ""
			if len(args) == 2 {
				path = args[1]
			}
			reply, err := source.New(path).GetContent()
			if err != nil {
				return err
			}
			if reply == "" {
				ui.Warning("Reply is empty. Nothing to process.")
				return nil
			}

			r, summary, err := app.ApplyReply(cmd.Context(), args[0], reply, f.DryRun)
			if err != nil {
				return err
			}
			if f.DryRun || !cfg.Confirm {
				fmt.Fprint(cmd.OutOrStdout(), report.Render(r))
			}
			ui.PrintSummary(summary)
			return nil
		},
	}
	cmd.Flags().BoolVar(&f.DryRun, "dry-run", false, "Print the change report without writing the script.")
	cmd.Flags().AddFlagSet(confirmFlags(f))
	cmd.MarkFlagsMutuallyExclusive("yes", "confirm")
	return cmd
}

func newRevertCommand(f *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "revert <script>",
		Short: "Restore a script from the backup taken by its last session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			app, err := newApp(cfg)
			if err != nil {
				return err
			}
			summary, err := app.Revert(args[0])
			if err != nil {
				return err
			}
			ui.PrintSummary(summary)
			return nil
		},
	}
}

func newHistoryCommand(f *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recorded repair sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			app, err := newApp(cfg)
			if err != nil {
				return err
			}

			sessions := app.History()
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions recorded.")
				return nil
			}
			for _, s := range sessions {
				fmt.Fprintf(out, "%s  %s  %s\n",
					time.Unix(s.Timestamp, 0).Local().Format(time.DateTime), s.ID, s.Script)
				for _, op := range s.Operations {
					fmt.Fprintf(out, "    %-7s %s\n", op.Action, op.Path)
				}
			}
			return nil
		},
	}
}

// load resolves the configuration. Flags win over every other source, but
// only when they were set explicitly.
func (f *Flags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: f.ConfigFile})
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("state-dir") {
		cfg.StateDir = f.StateDir
	}
	if flags.Changed("model") {
		cfg.Model = f.Model
	}
	if flags.Changed("attempts") {
		cfg.MaxAttempts = f.Attempts
	}
	if flags.Changed("no-check-model") {
		cfg.CheckModel = !f.NoCheckModel
	}
	if flags.Changed("confirm") {
		cfg.Confirm = f.Confirm
	}
	if flags.Changed("yes") && f.Yes {
		cfg.Confirm = false
	}

	if err := cfg.Validate(false); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp(cfg *config.Config) (*wolverine.App, error) {
	app, err := wolverine.New(cfg,
		wolverine.WithGate(tui.NewGate()),
		wolverine.WithLogger(slog.Default()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return app, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
