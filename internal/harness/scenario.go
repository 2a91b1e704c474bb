package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mbrukman/sqlsmith/internal/grammar"
)

// Scenario defines a conformance scenario: generate Count statements from
// Seed over a catalog, check every tree's invariants, then evaluate the
// assertions against the rendered statements.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is the path of a CUE file, CUE directory or YAML catalog.
	// Relative paths resolve against the scenario file's directory.
	Catalog string `yaml:"catalog"`

	// Seed and Count select the statements. Config.Seed is ignored.
	Seed  int64 `yaml:"seed"`
	Count int   `yaml:"count"`

	// Config overrides the default grammar config field by field.
	Config grammar.Config `yaml:"config,omitempty"`

	// Assertions are evaluated against the rendered statements.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Assertion checks the rendered statements of a scenario.
type Assertion struct {
	// Type specifies the assertion type:
	// - "contains": some statement contains Text
	// - "all_contain": every statement contains Text
	// - "absent": no statement contains Text
	// - "distinct": at least Count statements are distinct
	Type string `yaml:"type"`

	// Text is the substring searched for (contains, all_contain, absent).
	Text string `yaml:"text,omitempty"`

	// Count is the minimum number of distinct statements (distinct).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertContains   = "contains"
	AssertAllContain = "all_contain"
	AssertAbsent     = "absent"
	AssertDistinct   = "distinct"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// The catalog path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}
	if _, err := os.Stat(scenario.Catalog); err != nil {
		return nil, fmt.Errorf("invalid scenario: catalog not found: %s", scenario.Catalog)
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML. Config fields not present in the
// document keep their defaults.
func ParseScenario(data []byte) (*Scenario, error) {
	scenario := Scenario{Config: grammar.DefaultConfig()}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Catalog == "" {
		return fmt.Errorf("catalog is required")
	}
	if s.Count < 1 {
		return fmt.Errorf("count must be >= 1, got %d", s.Count)
	}
	if err := s.Config.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertContains, AssertAllContain, AssertAbsent:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertDistinct:
		if a.Count < 1 {
			return fmt.Errorf("assertions[%d]: count must be >= 1 for distinct", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
