package harness

import (
	"fmt"
	"strings"

	"github.com/mbrukman/sqlsmith/internal/compiler"
	"github.com/mbrukman/sqlsmith/internal/grammar"
)

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load the catalog (default operators when it declares none)
//  2. Generate Count statements from Seed with the scenario's config
//  3. Check every tree's invariants and render it
//  4. Evaluate the assertions against the rendered statements
//
// A returned error means the scenario could not run at all (bad catalog,
// generation exhausted); failed checks are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	cat, err := compiler.LoadCatalog(scenario.Catalog)
	if err != nil {
		return nil, err
	}
	cat = cat.WithDefaultOperators()

	cfg := scenario.Config
	cfg.Seed = scenario.Seed
	sess, err := grammar.NewSession(cat, cfg)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	renderer := sess.Renderer()
	for seq := 1; seq <= scenario.Count; seq++ {
		q, err := sess.Generate()
		if err != nil {
			return nil, fmt.Errorf("scenario %s: statement %d: %w", scenario.Name, seq, err)
		}
		result.AddViolations(seq, Check(q))
		result.Statements = append(result.Statements, renderer.Render(q))
	}
	result.Stats = sess.Stats()

	for _, a := range scenario.Assertions {
		if err := evaluate(a, result.Statements); err != nil {
			result.AddError(err.Error())
		}
	}
	return result, nil
}

// evaluate checks one assertion against the rendered statements.
func evaluate(a Assertion, statements []string) error {
	switch a.Type {
	case AssertContains:
		for _, s := range statements {
			if strings.Contains(s, a.Text) {
				return nil
			}
		}
		return fmt.Errorf("contains %q: no statement matches", a.Text)
	case AssertAllContain:
		for i, s := range statements {
			if !strings.Contains(s, a.Text) {
				return fmt.Errorf("all_contain %q: statement %d does not: %s", a.Text, i+1, s)
			}
		}
		return nil
	case AssertAbsent:
		for i, s := range statements {
			if strings.Contains(s, a.Text) {
				return fmt.Errorf("absent %q: statement %d contains it: %s", a.Text, i+1, s)
			}
		}
		return nil
	case AssertDistinct:
		seen := map[string]bool{}
		for _, s := range statements {
			seen[s] = true
		}
		if len(seen) < a.Count {
			return fmt.Errorf("distinct: %d distinct statements, want at least %d", len(seen), a.Count)
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}
