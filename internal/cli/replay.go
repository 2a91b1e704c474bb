package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mbrukman/sqlsmith/internal/driver"
	"github.com/mbrukman/sqlsmith/internal/store"
	"github.com/mbrukman/sqlsmith/internal/target"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Execute  bool // re-execute on the configured target
	Driver   string
	DSN      string
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [catalog] <run-id>",
		Short: "Regenerate a recorded run and verify determinism",
		Long: `Regenerate a recorded run from its stored seed and grammar configuration
and compare every statement against the run log.

The catalog must be the one the run was recorded with; its hash is
checked first. With --execute, the regenerated statements are executed
again and statements whose outcome changed are reported.

Exit codes:
  0 - Every statement regenerated identically
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, unknown run, catalog mismatch, etc.)

Examples:
  sqlsmith replay ./catalog.cue 01890a5d-ac96-774b-bcce-b302099a8057 --db ./runs.db
  sqlsmith replay ./catalog.cue <run-id> --db ./runs.db --execute --driver sqlite3 --dsn ./test.db`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite run log (default from config)")
	cmd.Flags().BoolVar(&opts.Execute, "execute", false, "execute regenerated statements and report outcome changes")
	cmd.Flags().StringVar(&opts.Driver, "driver", "", "database driver for --execute (default from config)")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "data source name for --execute (default from config)")

	return cmd
}

func runReplay(opts *ReplayOptions, args []string, cmd *cobra.Command) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	out := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	runID := args[len(args)-1]
	catalogPath, err := catalogArg(cfg, args[:len(args)-1])
	if err != nil {
		return err
	}
	cat, err := LoadCatalog(catalogPath)
	if err != nil {
		out.Error(loadErrorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load catalog", err)
	}

	st, err := store.Open(flagOr(cmd, "db", opts.Database, cfg.Database))
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runnerOpts := opts.runnerOptions(logger)
	if opts.Execute {
		drv := flagOr(cmd, "driver", opts.Driver, cfg.Target.Driver)
		if !slices.Contains(target.Drivers(), drv) {
			return NewExitError(ExitCommandError,
				fmt.Sprintf("unsupported driver %q: must be one of %v", drv, target.Drivers()))
		}
		tgt, err := target.Open(ctx, drv, flagOr(cmd, "dsn", opts.DSN, cfg.Target.DSN), cfg.Target.Options())
		if err != nil {
			out.Error(ErrCodeTarget, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open target", err)
		}
		defer tgt.Close()
		runnerOpts = append(runnerOpts, driver.WithExecutor(tgt))
	}

	// The recorded config replaces this one; only the catalog matters here.
	runner, err := driver.New(cat, cfg.Grammar, runnerOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid grammar configuration", err)
	}

	result, err := runner.Replay(ctx, st, runID)
	switch {
	case errors.Is(err, store.ErrRunNotFound):
		out.Error(ErrCodeRunMissing, err.Error(), nil)
		return WrapExitError(ExitCommandError, "unknown run", err)
	case err != nil:
		return WrapExitError(ExitCommandError, "replay failed", err)
	}

	if out.JSON() {
		if err := out.encode(CLIResponse{Status: replayStatus(result), Data: result, RunID: runID}); err != nil {
			return err
		}
	} else {
		writeReplayText(out.Writer, result, opts.Verbose)
	}

	if !result.Deterministic() {
		return NewExitError(ExitFailure,
			fmt.Sprintf("replay of %s diverged in %d statement(s)", runID, len(result.Mismatches)))
	}
	return nil
}

func replayStatus(r driver.ReplayResult) string {
	if r.Deterministic() {
		return "ok"
	}
	return "error"
}

func writeReplayText(w io.Writer, r driver.ReplayResult, verbose bool) {
	fmt.Fprintf(w, "Replay %s: %d statements\n", r.RunID, r.Statements)
	for _, m := range r.Mismatches {
		fmt.Fprintf(w, "✗ statement %d diverged\n", m.Seq)
		if verbose {
			fmt.Fprintf(w, "  recorded:    %s\n", m.Recorded)
			fmt.Fprintf(w, "  regenerated: %s\n", m.Regenerated)
		}
	}
	for _, c := range r.Changes {
		fmt.Fprintf(w, "~ statement %d: %s -> %s\n", c.Seq, describeOutcome(c.Before.Status, c.Before.Class), describeOutcome(c.After.Status, c.After.Class))
	}
	if r.Deterministic() {
		fmt.Fprintln(w, "✓ Deterministic")
	}
}
