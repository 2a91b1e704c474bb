package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/mbrukman/sqlsmith/internal/ir"
)

// Rule fails every statement containing Text with Outcome.
type Rule struct {
	Text    string
	Outcome ir.Outcome
}

// Executor is a scripted engine: the first matching Rule decides a
// statement's outcome, anything else succeeds with one row. It records
// every statement it sees.
//
// Thread-safety: Executor is safe for concurrent use via internal mutex.
type Executor struct {
	name  string
	rules []Rule

	mu   sync.Mutex
	seen []string
}

// NewExecutor creates an Executor reporting name.
func NewExecutor(name string, rules ...Rule) *Executor {
	return &Executor{name: name, rules: rules}
}

// RejectJoins fails every join as a semantic error.
var RejectJoins = Rule{
	Text:    " JOIN ",
	Outcome: ir.Outcome{Status: ir.StatusError, Class: ir.ClassSemantic, Code: "42000", Message: "joins unsupported"},
}

func (e *Executor) Name() string { return e.name }

func (e *Executor) Execute(_ context.Context, query string) ir.Outcome {
	e.mu.Lock()
	e.seen = append(e.seen, query)
	e.mu.Unlock()
	for _, r := range e.rules {
		if strings.Contains(query, r.Text) {
			return r.Outcome
		}
	}
	return ir.Outcome{Status: ir.StatusOK, Rows: 1}
}

// Seen returns the executed statements in order.
func (e *Executor) Seen() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.seen...)
}
