package grammar

import (
	"fmt"
	"strings"
)

// AliasMode controls when select-list items are suffixed with
// "AS c<i>".
type AliasMode string

const (
	// AliasAlways aliases every select-list item. This is the zero value.
	AliasAlways AliasMode = "always"

	// AliasNested aliases only select lists of a subquery reference, where
	// the names are needed to address the derived relation.
	AliasNested AliasMode = "nested"
)

// ParseAliasMode accepts "always", "nested" or "" (always).
func ParseAliasMode(s string) (AliasMode, error) {
	switch AliasMode(strings.ToLower(s)) {
	case "", AliasAlways:
		return AliasAlways, nil
	case AliasNested:
		return AliasNested, nil
	default:
		return "", fmt.Errorf("invalid alias mode %q: must be always or nested", s)
	}
}

// Weights are the relative selection weights of each production variant
// before depth and budget decay.
type Weights struct {
	Named      float64 `mapstructure:"named" yaml:"named" json:"named"`
	Subquery   float64 `mapstructure:"subquery" yaml:"subquery" json:"subquery"`
	Join       float64 `mapstructure:"join" yaml:"join" json:"join"`
	Const      float64 `mapstructure:"const" yaml:"const" json:"const"`
	Column     float64 `mapstructure:"column" yaml:"column" json:"column"`
	Comparison float64 `mapstructure:"comparison" yaml:"comparison" json:"comparison"`

	// Quantifier weights: none, ALL, DISTINCT.
	Plain    float64 `mapstructure:"plain" yaml:"plain" json:"plain"`
	All      float64 `mapstructure:"all" yaml:"all" json:"all"`
	Distinct float64 `mapstructure:"distinct" yaml:"distinct" json:"distinct"`
}

// Config parameterizes a session.
type Config struct {
	// Seed initializes the session's random source.
	Seed int64 `mapstructure:"seed" yaml:"seed" json:"seed"`

	// MaxSubqueries is the run-wide subquery budget.
	MaxSubqueries int `mapstructure:"max_subqueries" yaml:"max_subqueries" json:"max_subqueries"`

	// MaxDepth caps recursion of subqueries, joins and comparisons.
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth" json:"max_depth"`

	// MaxFromItems caps the FROM list length; ExtraFromProb is the chance
	// of adding each entry after the first.
	MaxFromItems  int     `mapstructure:"max_from_items" yaml:"max_from_items" json:"max_from_items"`
	ExtraFromProb float64 `mapstructure:"extra_from_prob" yaml:"extra_from_prob" json:"extra_from_prob"`

	// MaxColumns caps the select list length; ExtraColumnProb is the chance
	// of adding each column after the first.
	MaxColumns      int     `mapstructure:"max_columns" yaml:"max_columns" json:"max_columns"`
	ExtraColumnProb float64 `mapstructure:"extra_column_prob" yaml:"extra_column_prob" json:"extra_column_prob"`

	// ConstMax is the exclusive upper bound of generated constants.
	ConstMax int `mapstructure:"const_max" yaml:"const_max" json:"const_max"`

	// LimitProb is the chance of a LIMIT clause; its value is drawn from
	// [0, LimitMax].
	LimitProb float64 `mapstructure:"limit_prob" yaml:"limit_prob" json:"limit_prob"`
	LimitMax  int     `mapstructure:"limit_max" yaml:"limit_max" json:"limit_max"`

	Weights   Weights   `mapstructure:"weights" yaml:"weights" json:"weights"`
	AliasMode AliasMode `mapstructure:"alias_mode" yaml:"alias_mode" json:"alias_mode"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Seed:            1,
		MaxSubqueries:   8,
		MaxDepth:        4,
		MaxFromItems:    1,
		ExtraFromProb:   0.3,
		MaxColumns:      8,
		ExtraColumnProb: 0.4,
		ConstMax:        43,
		LimitProb:       0.5,
		LimitMax:        100,
		Weights: Weights{
			Named:      6,
			Subquery:   2,
			Join:       2,
			Const:      2,
			Column:     4,
			Comparison: 3,
			Plain:      8,
			All:        1,
			Distinct:   1,
		},
		AliasMode: AliasAlways,
	}
}

// Validate rejects configurations that cannot drive a run.
func (c Config) Validate() error {
	switch {
	case c.MaxSubqueries < 0:
		return invalidConfig("max_subqueries must be >= 0, got %d", c.MaxSubqueries)
	case c.MaxDepth < 1:
		return invalidConfig("max_depth must be >= 1, got %d", c.MaxDepth)
	case c.MaxFromItems < 1:
		return invalidConfig("max_from_items must be >= 1, got %d", c.MaxFromItems)
	case c.MaxColumns < 1:
		return invalidConfig("max_columns must be >= 1, got %d", c.MaxColumns)
	case c.ConstMax < 1:
		return invalidConfig("const_max must be >= 1, got %d", c.ConstMax)
	case c.LimitMax < 0:
		return invalidConfig("limit_max must be >= 0, got %d", c.LimitMax)
	}
	for name, p := range map[string]float64{
		"extra_from_prob":   c.ExtraFromProb,
		"extra_column_prob": c.ExtraColumnProb,
		"limit_prob":        c.LimitProb,
	} {
		if p < 0 || p > 1 {
			return invalidConfig("%s must be within [0, 1], got %v", name, p)
		}
	}
	w := c.Weights
	for _, v := range []float64{w.Named, w.Subquery, w.Join, w.Const, w.Column, w.Comparison, w.Plain, w.All, w.Distinct} {
		if v < 0 {
			return invalidConfig("weights must be >= 0")
		}
	}
	if w.Named == 0 {
		return invalidConfig("weights.named must be > 0")
	}
	if w.Const+w.Column+w.Comparison == 0 {
		return invalidConfig("at least one value expression weight must be > 0")
	}
	if _, err := ParseAliasMode(string(c.AliasMode)); err != nil {
		return invalidConfig("%v", err)
	}
	return nil
}
