package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mbrukman/sqlsmith/internal/driver"
	"github.com/mbrukman/sqlsmith/internal/grammar"
	"github.com/mbrukman/sqlsmith/internal/ir"
	"github.com/mbrukman/sqlsmith/internal/store"
	"github.com/mbrukman/sqlsmith/internal/target"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Driver    string
	DSN       string
	Database  string
	Seed      int64
	Count     int
	Timeout   time.Duration
	MaxRows   int64
	AliasMode string
}

// RunResult is the JSON payload of the run command.
type RunResult struct {
	RunID     string                `json:"run_id"`
	Seed      int64                 `json:"seed"`
	Target    string                `json:"target"`
	Generated int                   `json:"generated"`
	OK        int                   `json:"ok"`
	Failed    map[ir.ErrorClass]int `json:"failed"`
	Stats     grammar.Stats         `json:"stats"`
	Canceled  bool                  `json:"canceled,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [catalog]",
		Short: "Generate statements and execute them on a database",
		Long: `Generate statements from a catalog, execute each one on the target
database and record every outcome in the run log.

Engine errors are the point of the exercise: they are classified
(syntax, semantic, timeout, connection, other) and recorded, and do not
fail the command. Ctrl-C stops the run after the current statement; the
partial run stays in the log.

Drivers: sqlite3, postgres, pgx, mysql.

Example:
  sqlsmith run ./catalog.cue --driver sqlite3 --dsn ./test.db --db ./runs.db
  sqlsmith run ./catalog.yaml --driver pgx --dsn postgres://localhost/db --count 1000`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Driver, "driver", "", fmt.Sprintf("database driver %v (default from config)", target.Drivers()))
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "data source name (default from config)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite run log (default from config)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (default from config)")
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 0, "number of statements (default from config)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "per-statement timeout (default from config)")
	cmd.Flags().Int64Var(&opts.MaxRows, "max-rows", 0, "rows read per result set (default from config)")
	cmd.Flags().StringVar(&opts.AliasMode, "alias-mode", "", "select-list aliasing (always|nested)")

	return cmd
}

func runRun(opts *RunOptions, args []string, cmd *cobra.Command) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	out := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	catalogPath, err := catalogArg(cfg, args)
	if err != nil {
		return err
	}
	cat, err := LoadCatalog(catalogPath)
	if err != nil {
		out.Error(loadErrorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load catalog", err)
	}
	gcfg, err := grammarConfig(cfg, cmd, opts.AliasMode)
	if err != nil {
		return err
	}

	tcfg := cfg.Target
	tcfg.Driver = flagOr(cmd, "driver", opts.Driver, tcfg.Driver)
	tcfg.DSN = flagOr(cmd, "dsn", opts.DSN, tcfg.DSN)
	tcfg.Timeout = flagOr(cmd, "timeout", opts.Timeout, tcfg.Timeout)
	tcfg.MaxRows = flagOr(cmd, "max-rows", opts.MaxRows, tcfg.MaxRows)
	if !slices.Contains(target.Drivers(), tcfg.Driver) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("unsupported driver %q: must be one of %v", tcfg.Driver, target.Drivers()))
	}
	dbPath := flagOr(cmd, "db", opts.Database, cfg.Database)
	seed := flagOr(cmd, "seed", opts.Seed, cfg.Seed)
	count := flagOr(cmd, "count", opts.Count, cfg.Count)

	ctx, cancel := signalContext(commandContext(cmd), logger)
	defer cancel()

	logger.Info("opening target", "driver", tcfg.Driver)
	tgt, err := target.Open(ctx, tcfg.Driver, tcfg.DSN, tcfg.Options())
	if err != nil {
		out.Error(ErrCodeTarget, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open target", err)
	}
	defer func() {
		if closeErr := tgt.Close(); closeErr != nil {
			logger.Error("error closing target", "error", closeErr)
		}
	}()

	logger.Info("opening run log", "path", dbPath)
	st, err := store.Open(dbPath)
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	runnerOpts := append(opts.runnerOptions(logger),
		driver.WithExecutor(tgt),
		driver.WithRecorder(st),
	)
	runner, err := driver.New(cat, gcfg, runnerOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid grammar configuration", err)
	}

	sum, err := runner.Run(ctx, driver.RunSpec{Seed: seed, Count: count})
	canceled := errors.Is(err, context.Canceled)
	if err != nil && !canceled {
		if grammar.IsExhausted(err) {
			out.Error(ErrCodeExhausted, err.Error(), nil)
		}
		return WrapExitError(ExitCommandError, "run failed", err)
	}

	result := RunResult{
		RunID:     sum.RunID,
		Seed:      sum.Seed,
		Target:    sum.Target,
		Generated: sum.Generated,
		OK:        sum.OK,
		Failed:    sum.Failed,
		Stats:     sum.Stats,
		Canceled:  canceled,
	}
	return out.Success(result, func(w io.Writer) { writeRunText(w, result) })
}

func writeRunText(w io.Writer, r RunResult) {
	fmt.Fprintf(w, "Run %s on %s (seed %d)\n", r.RunID, r.Target, r.Seed)
	if r.Canceled {
		fmt.Fprintln(w, "  canceled")
	}
	fmt.Fprintf(w, "  generated: %d\n", r.Generated)
	fmt.Fprintf(w, "  ok:        %d\n", r.OK)
	for _, class := range errorClasses {
		if n := r.Failed[class]; n > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", string(class)+":", n)
		}
	}
}

// errorClasses is the display order of failure classes.
var errorClasses = []ir.ErrorClass{
	ir.ClassSyntax,
	ir.ClassSemantic,
	ir.ClassTimeout,
	ir.ClassConnection,
	ir.ClassOther,
}

// commandContext returns the command's context, or a background context
// when the command is executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// signalContext derives a context canceled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping run", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
