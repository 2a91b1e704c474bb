package harness

import "github.com/mbrukman/sqlsmith/internal/grammar"

// StatementViolation attaches a violation to the statement it was found in.
type StatementViolation struct {
	Seq       int       `json:"seq"`
	Violation Violation `json:"violation"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when no invariant is violated and every assertion holds.
	Pass bool `json:"pass"`

	// Statements are the rendered statements in generation order.
	Statements []string `json:"statements"`

	// Violations lists broken tree invariants, by statement.
	Violations []StatementViolation `json:"violations,omitempty"`

	// Errors contains failed assertion messages.
	Errors []string `json:"errors,omitempty"`

	// Stats are the session counters after generation.
	Stats grammar.Stats `json:"stats"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Statements: []string{},
		Errors:     []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddViolations records invariant violations of statement seq.
func (r *Result) AddViolations(seq int, vs []Violation) {
	for _, v := range vs {
		r.Violations = append(r.Violations, StatementViolation{Seq: seq, Violation: v})
		r.Pass = false
	}
}
