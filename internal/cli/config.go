package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mbrukman/sqlsmith/internal/grammar"
	"github.com/mbrukman/sqlsmith/internal/target"
)

const maxWalkDepth = 25

// Config is the content of sqlsmith.yaml.
type Config struct {
	// Catalog is used when a command is given no catalog argument.
	Catalog string `mapstructure:"catalog"`

	// Database is the run log path.
	Database string `mapstructure:"database"`

	Seed  int64 `mapstructure:"seed"`
	Count int   `mapstructure:"count"`

	Target  TargetConfig   `mapstructure:"target"`
	Grammar grammar.Config `mapstructure:"grammar"`
}

// TargetConfig selects the engine under test.
type TargetConfig struct {
	Driver  string        `mapstructure:"driver"`
	DSN     string        `mapstructure:"dsn"`
	Timeout time.Duration `mapstructure:"timeout"`
	MaxRows int64         `mapstructure:"max_rows"`
}

// Options returns the execution settings for target.Open.
func (c TargetConfig) Options() target.Options {
	return target.Options{Timeout: c.Timeout, MaxRows: c.MaxRows}
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults. Flags are applied by each command.
//
// Returns the loaded config, the path to the config file (empty if none found),
// and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("SQLSMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}
	alias, err := grammar.ParseAliasMode(string(cfg.Grammar.AliasMode))
	if err != nil {
		return nil, configPath, err
	}
	cfg.Grammar.AliasMode = alias
	if err := cfg.Grammar.Validate(); err != nil {
		return nil, configPath, fmt.Errorf("grammar: %w", err)
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog", "")
	v.SetDefault("database", "sqlsmith.db")
	v.SetDefault("seed", 1)
	v.SetDefault("count", 100)

	opts := target.DefaultOptions()
	v.SetDefault("target.driver", target.DriverSQLite)
	v.SetDefault("target.dsn", ":memory:")
	v.SetDefault("target.timeout", opts.Timeout)
	v.SetDefault("target.max_rows", opts.MaxRows)

	g := grammar.DefaultConfig()
	v.SetDefault("grammar.max_subqueries", g.MaxSubqueries)
	v.SetDefault("grammar.max_depth", g.MaxDepth)
	v.SetDefault("grammar.max_from_items", g.MaxFromItems)
	v.SetDefault("grammar.extra_from_prob", g.ExtraFromProb)
	v.SetDefault("grammar.max_columns", g.MaxColumns)
	v.SetDefault("grammar.extra_column_prob", g.ExtraColumnProb)
	v.SetDefault("grammar.const_max", g.ConstMax)
	v.SetDefault("grammar.limit_prob", g.LimitProb)
	v.SetDefault("grammar.limit_max", g.LimitMax)
	v.SetDefault("grammar.alias_mode", string(g.AliasMode))

	w := g.Weights
	v.SetDefault("grammar.weights.named", w.Named)
	v.SetDefault("grammar.weights.subquery", w.Subquery)
	v.SetDefault("grammar.weights.join", w.Join)
	v.SetDefault("grammar.weights.const", w.Const)
	v.SetDefault("grammar.weights.column", w.Column)
	v.SetDefault("grammar.weights.comparison", w.Comparison)
	v.SetDefault("grammar.weights.plain", w.Plain)
	v.SetDefault("grammar.weights.all", w.All)
	v.SetDefault("grammar.weights.distinct", w.Distinct)
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for sqlsmith.yaml or sqlsmith.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range []string{"sqlsmith.yaml", "sqlsmith.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil
}
