package target

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mbrukman/sqlsmith/internal/ir"
)

// Supported driver names, as registered with database/sql.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverMySQL    = "mysql"
)

// Drivers lists the accepted driver names.
func Drivers() []string {
	return []string{DriverSQLite, DriverPostgres, DriverPgx, DriverMySQL}
}

// Options tunes statement execution.
type Options struct {
	// Timeout bounds each statement. Zero means no timeout.
	Timeout time.Duration
	// MaxRows stops reading a result set early. Zero means read all rows.
	MaxRows int64
}

// DefaultOptions returns the execution settings used by the CLI.
func DefaultOptions() Options {
	return Options{Timeout: 5 * time.Second, MaxRows: 10000}
}

// Target executes statements against one database.
// Safe for concurrent use to the extent the underlying driver is.
type Target struct {
	db     *sql.DB
	driver string
	opts   Options
}

// Open connects to a database and verifies the connection.
func Open(ctx context.Context, driver, dsn string, opts Options) (*Target, error) {
	if !slices.Contains(Drivers(), driver) {
		return nil, fmt.Errorf("unsupported driver %q (want one of %v)", driver, Drivers())
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// An in-memory database exists per connection.
		db.SetMaxOpenConns(1)
	}
	return &Target{db: db, driver: driver, opts: opts}, nil
}

// New wraps an existing connection. The driver name selects the error
// classifier and the introspection queries.
func New(db *sql.DB, driver string, opts Options) *Target {
	return &Target{db: db, driver: driver, opts: opts}
}

// Name returns the driver name.
func (t *Target) Name() string { return t.driver }

// DB returns the underlying connection.
func (t *Target) DB() *sql.DB { return t.db }

// Close closes the connection.
func (t *Target) Close() error {
	if t.db == nil {
		return nil
	}
	return t.db.Close()
}

// Execute runs one statement and reports its outcome. Engine errors are
// data here, not failures: they come back classified inside the Outcome.
func (t *Target) Execute(ctx context.Context, query string) ir.Outcome {
	execCtx := ctx
	if t.opts.Timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, t.opts.Timeout)
		defer cancel()
	}

	rows, err := t.db.QueryContext(execCtx, query)
	if err != nil {
		return t.failed(execCtx, err)
	}
	defer rows.Close()

	var n int64
	for rows.Next() {
		n++
		if t.opts.MaxRows > 0 && n >= t.opts.MaxRows {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return t.failed(execCtx, err)
	}
	if err := rows.Close(); err != nil {
		return t.failed(execCtx, err)
	}
	return ir.Outcome{Status: ir.StatusOK, Rows: n}
}

func (t *Target) failed(ctx context.Context, err error) ir.Outcome {
	e := Classify(err)
	switch ctx.Err() {
	case context.DeadlineExceeded:
		e.Class = ir.ClassTimeout
	case context.Canceled:
		e.Class = ir.ClassCanceled
	}
	return ir.Outcome{
		Status:  ir.StatusError,
		Class:   e.Class,
		Code:    e.Code,
		Message: e.Message,
	}
}
