package cli

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mbrukman/sqlsmith/internal/compiler"
	"github.com/mbrukman/sqlsmith/internal/target"
)

// IntrospectOptions holds flags for the introspect command.
type IntrospectOptions struct {
	*RootOptions
	Driver string
	DSN    string
	Output string
}

// NewIntrospectCommand creates the introspect command.
func NewIntrospectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IntrospectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "introspect",
		Short: "Read a catalog from a live database",
		Long: `Read the tables, columns and (for postgres) boolean operators of a
live database and write them as a YAML catalog that generate and run
accept.

Examples:
  sqlsmith introspect --driver sqlite3 --dsn ./test.db -o catalog.yaml
  sqlsmith introspect --driver postgres --dsn postgres://localhost/db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntrospect(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Driver, "driver", "", fmt.Sprintf("database driver %v (default from config)", target.Drivers()))
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "data source name (default from config)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the catalog to this file instead of stdout")

	return cmd
}

func runIntrospect(opts *IntrospectOptions, cmd *cobra.Command) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	out := opts.formatter(cmd)
	ctx := commandContext(cmd)

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

	cat, err := tgt.Introspect(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "introspection failed", err)
	}
	out.VerboseLog("introspected %d tables, %d operators", len(cat.Tables), len(cat.Operators))

	if out.JSON() && opts.Output == "" {
		return out.Success(cat, nil)
	}

	data, err := compiler.MarshalYAML(cat)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode catalog", err)
	}
	if opts.Output == "" {
		_, err := out.Writer.Write(data)
		return err
	}
	if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
		out.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to write catalog", err)
	}
	return out.Success(map[string]any{"output": opts.Output, "tables": len(cat.Tables)}, func(w io.Writer) {
		fmt.Fprintf(w, "Wrote %d tables to %s\n", len(cat.Tables), opts.Output)
	})
}
