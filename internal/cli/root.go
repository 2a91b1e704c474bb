package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mbrukman/sqlsmith/internal/driver"
)

// RootOptions holds global flags for all commands, and the configuration
// loaded before any command runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	Config     *Config
	ConfigFile string // file Config was read from, empty for defaults only

	// IDGenerator overrides the run ID source (for testing).
	// If nil, runs get UUIDv7 IDs.
	IDGenerator driver.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sqlsmith CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sqlsmith",
		Short: "Random SQL query generator",
		Long: `sqlsmith generates random, well-formed SELECT statements from a
catalog of tables and operators, runs them against a database engine and
records what the engine did with each one.

The same catalog, seed and grammar configuration always produce the same
statements, so any recorded run can be replayed.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			cfg, path, err := LoadConfig(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "loading configuration", err)
			}
			opts.Config, opts.ConfigFile = cfg, path
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: auto-discover sqlsmith.yaml)")

	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))
	cmd.AddCommand(NewIntrospectCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

// config returns the loaded configuration, or the defaults when a command
// is executed on its own without the root's pre-run.
func (o *RootOptions) config() (*Config, error) {
	if o.Config != nil {
		return o.Config, nil
	}
	cfg, path, err := LoadConfig(o.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "loading configuration", err)
	}
	o.Config, o.ConfigFile = cfg, path
	return cfg, nil
}

// runnerOptions returns the driver options every command shares.
func (o *RootOptions) runnerOptions(logger *slog.Logger) []driver.Option {
	opts := []driver.Option{driver.WithLogger(logger)}
	if o.IDGenerator != nil {
		opts = append(opts, driver.WithIDGenerator(o.IDGenerator))
	}
	return opts
}

// formatter returns an OutputFormatter writing to the command's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger builds the command's logger: text on w, or JSON lines when the
// output format is JSON. Debug level with --verbose.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(w, hopts)
	if o.Format == "json" {
		h = slog.NewJSONHandler(w, hopts)
	}
	l := slog.New(h)
	slog.SetDefault(l)
	return l
}
