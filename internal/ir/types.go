package ir

import "encoding/json"

// Run is one generation run: a seed, a catalog and a grammar config.
// Replaying the same triple regenerates the same statements.
type Run struct {
	ID               string          `json:"id"` // UUIDv7
	Seed             int64           `json:"seed"`
	CatalogHash      string          `json:"catalog_hash"`
	Config           json.RawMessage `json:"config"` // grammar config as plain JSON
	Target           string          `json:"target"` // driver name, "dry" when not executed
	StatementCount   int64           `json:"statement_count"`
	GeneratorVersion string          `json:"generator_version"`
}

// Statement is one generated statement and what the target did with it.
type Statement struct {
	ID      string  `json:"id"` // Content-addressed hash
	RunID   string  `json:"run_id"`
	Seq     int64   `json:"seq"` // Position within the run, from 1
	SQL     string  `json:"sql"`
	Outcome Outcome `json:"outcome"`
}

// Status is the coarse result of executing a statement.
type Status string

const (
	StatusOK      Status = "ok"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// ErrorClass buckets engine errors so runs across engines compare.
type ErrorClass string

const (
	ClassNone       ErrorClass = ""
	ClassSyntax     ErrorClass = "syntax"
	ClassSemantic   ErrorClass = "semantic"
	ClassTimeout    ErrorClass = "timeout"
	ClassConnection ErrorClass = "connection"
	ClassOther      ErrorClass = "other"

	// ClassCanceled marks a statement the caller abandoned. It describes
	// the run, not the engine, and is never recorded.
	ClassCanceled ErrorClass = "canceled"
)

// Outcome records an execution result. Code is the engine's native code
// (SQLSTATE, MySQL error number, SQLite extended code).
type Outcome struct {
	Status  Status     `json:"status"`
	Class   ErrorClass `json:"error_class,omitempty"`
	Code    string     `json:"error_code,omitempty"`
	Message string     `json:"error_message,omitempty"`
	Rows    int64      `json:"rows,omitempty"`
}

// OK reports whether the statement executed without error.
func (o Outcome) OK() bool { return o.Status == StatusOK }
