package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mbrukman/sqlsmith/internal/driver"
	"github.com/mbrukman/sqlsmith/internal/grammar"
	"github.com/mbrukman/sqlsmith/internal/ir"
	"github.com/mbrukman/sqlsmith/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Seed      int64
	Count     int
	Database  string // record the dry run when set
	AliasMode string
}

// GenerateResult is the JSON payload of the generate command.
type GenerateResult struct {
	RunID      string        `json:"run_id"`
	Seed       int64         `json:"seed"`
	Statements []string      `json:"statements"`
	Stats      grammar.Stats `json:"stats"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate [catalog]",
		Short: "Print generated statements",
		Long: `Generate statements from a catalog and print them, one per line,
without executing them.

The catalog is a .cue file, a directory of .cue files, or a .yaml file.
When omitted, the catalog from sqlsmith.yaml is used.

Example:
  sqlsmith generate ./catalog.cue --seed 7 --count 20
  sqlsmith generate ./catalog.yaml --alias-mode nested
  sqlsmith generate ./catalog.cue --db ./runs.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (default from config)")
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 0, "number of statements (default from config)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().StringVar(&opts.AliasMode, "alias-mode", "", "select-list aliasing (always|nested)")

	return cmd
}

func runGenerate(opts *GenerateOptions, args []string, cmd *cobra.Command) error {
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
	seed := flagOr(cmd, "seed", opts.Seed, cfg.Seed)
	count := flagOr(cmd, "count", opts.Count, cfg.Count)

	result := GenerateResult{Seed: seed, Statements: []string{}}
	runnerOpts := append(opts.runnerOptions(logger),
		driver.WithStatementHook(func(st ir.Statement) {
			if out.JSON() {
				result.Statements = append(result.Statements, st.SQL)
				return
			}
			fmt.Fprintf(out.Writer, "%s;\n", st.SQL)
		}),
	)
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		runnerOpts = append(runnerOpts, driver.WithRecorder(st))
	}

	runner, err := driver.New(cat, gcfg, runnerOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid grammar configuration", err)
	}

	sum, err := runner.Run(commandContext(cmd), driver.RunSpec{Seed: seed, Count: count})
	if err != nil {
		if grammar.IsExhausted(err) {
			out.Error(ErrCodeExhausted, err.Error(), nil)
		}
		return WrapExitError(ExitCommandError, "generation failed", err)
	}

	if !out.JSON() {
		out.VerboseLog("run %s: %d statements, %d subqueries", sum.RunID, sum.Generated, sum.Stats.Subqueries)
		return nil
	}
	result.RunID = sum.RunID
	result.Stats = sum.Stats
	return out.Success(result, nil)
}

// catalogArg returns the catalog path from the command line, falling back
// to the configured one.
func catalogArg(cfg *Config, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg.Catalog != "" {
		return cfg.Catalog, nil
	}
	return "", NewExitError(ExitCommandError, "no catalog given and none configured")
}

// grammarConfig returns the configured grammar settings with the alias
// mode flag applied.
func grammarConfig(cfg *Config, cmd *cobra.Command, aliasMode string) (grammar.Config, error) {
	g := cfg.Grammar
	if cmd.Flags().Changed("alias-mode") {
		mode, err := grammar.ParseAliasMode(aliasMode)
		if err != nil {
			return g, WrapExitError(ExitCommandError, "invalid flag", err)
		}
		g.AliasMode = mode
	}
	return g, nil
}

// flagOr returns the flag value when the flag was set on the command line,
// otherwise the configured value.
func flagOr[T any](cmd *cobra.Command, name string, flag, configured T) T {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return flag
	}
	return configured
}
