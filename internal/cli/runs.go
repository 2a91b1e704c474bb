package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mbrukman/sqlsmith/internal/ir"
	"github.com/mbrukman/sqlsmith/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
	Class    string
}

// RunInfo is one run with its failure counts.
type RunInfo struct {
	ir.Run
	Failures map[ir.ErrorClass]int64 `json:"failures"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recorded runs or the failures of one run",
		Long: `Without arguments, list every run in the log with its failure counts
by error class. With a run ID, print that run's failed statements,
optionally restricted to one error class.

Examples:
  sqlsmith runs --db ./runs.db
  sqlsmith runs <run-id> --db ./runs.db --class syntax`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite run log (default from config)")
	cmd.Flags().StringVar(&opts.Class, "class", "", "only failures of this class (syntax|semantic|timeout|connection|other)")

	return cmd
}

func runRuns(opts *RunsOptions, args []string, cmd *cobra.Command) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	out := opts.formatter(cmd)
	ctx := commandContext(cmd)

	class := ir.ErrorClass(opts.Class)
	if class != ir.ClassNone && !slices.Contains(errorClasses, class) {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown error class %q", opts.Class))
	}

	st, err := store.Open(flagOr(cmd, "db", opts.Database, cfg.Database))
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if len(args) == 1 {
		if _, err := st.ReadRun(ctx, args[0]); err != nil {
			out.Error(ErrCodeRunMissing, err.Error(), nil)
			return WrapExitError(ExitCommandError, "unknown run", err)
		}
		failures, err := st.ReadFailures(ctx, args[0], class)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read failures", err)
		}
		return out.Success(failures, func(w io.Writer) { writeFailuresText(w, failures) })
	}

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	infos := make([]RunInfo, 0, len(runs))
	for _, r := range runs {
		counts, err := st.CountByClass(ctx, r.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to count failures", err)
		}
		infos = append(infos, RunInfo{Run: r, Failures: counts})
	}
	return out.Success(infos, func(w io.Writer) { writeRunsText(w, infos) })
}

func writeRunsText(w io.Writer, infos []RunInfo) {
	if len(infos) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return
	}
	for _, r := range infos {
		var failed int64
		for _, n := range r.Failures {
			failed += n
		}
		fmt.Fprintf(w, "%s  seed=%d  target=%s  statements=%d  failed=%d\n",
			r.ID, r.Seed, r.Target, r.StatementCount, failed)
	}
}

func writeFailuresText(w io.Writer, failures []ir.Statement) {
	if len(failures) == 0 {
		fmt.Fprintln(w, "No failures.")
		return
	}
	for _, st := range failures {
		fmt.Fprintf(w, "-- %d %s %s: %s\n%s;\n", st.Seq, st.Outcome.Class, st.Outcome.Code, st.Outcome.Message, st.SQL)
	}
}

// describeOutcome renders a status and class as "ok" or "error/syntax".
func describeOutcome(s ir.Status, c ir.ErrorClass) string {
	if c == ir.ClassNone {
		return string(s)
	}
	return string(s) + "/" + string(c)
}
