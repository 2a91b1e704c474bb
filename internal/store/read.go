package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mbrukman/sqlsmith/internal/ir"
)

// ErrRunNotFound is returned by ReadRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// ReadRun returns the run record with the given ID.
func (s *Store) ReadRun(ctx context.Context, runID string) (ir.Run, error) {
	var r ir.Run
	var config string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seed, catalog_hash, config, target, statement_count, generator_version
		FROM runs
		WHERE id = ?
	`, runID).Scan(&r.ID, &r.Seed, &r.CatalogHash, &config, &r.Target, &r.StatementCount, &r.GeneratorVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Run{}, fmt.Errorf("read run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return ir.Run{}, fmt.Errorf("read run %s: %w", runID, err)
	}
	r.Config = []byte(config)
	return r, nil
}

// ListRuns returns every run ordered by ID. Run IDs are UUIDv7, so this
// is creation order.
func (s *Store) ListRuns(ctx context.Context) ([]ir.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seed, catalog_hash, config, target, statement_count, generator_version
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.Run{}
	for rows.Next() {
		var r ir.Run
		var config string
		if err := rows.Scan(&r.ID, &r.Seed, &r.CatalogHash, &config, &r.Target, &r.StatementCount, &r.GeneratorVersion); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Config = []byte(config)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadStatements returns all statements of a run in generation order.
// Returns an empty slice (not nil) when the run has none.
func (s *Store) ReadStatements(ctx context.Context, runID string) ([]ir.Statement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, seq, sql, outcome, error_class, error_code, error_message, rows
		FROM statements
		WHERE run_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query statements: %w", err)
	}
	defer rows.Close()

	statements := []ir.Statement{}
	for rows.Next() {
		st, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		statements = append(statements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statements: %w", err)
	}
	return statements, nil
}

// ReadFailures returns the failed statements of a run, optionally
// restricted to one error class (ClassNone means every class).
func (s *Store) ReadFailures(ctx context.Context, runID string, class ir.ErrorClass) ([]ir.Statement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, seq, sql, outcome, error_class, error_code, error_message, rows
		FROM statements
		WHERE run_id = ? AND outcome = ? AND (? = '' OR error_class = ?)
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, runID, string(ir.StatusError), string(class), string(class))
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	statements := []ir.Statement{}
	for rows.Next() {
		st, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		statements = append(statements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failures: %w", err)
	}
	return statements, nil
}

// CountByClass returns how many statements of a run failed per error class.
func (s *Store) CountByClass(ctx context.Context, runID string) (map[ir.ErrorClass]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT error_class, COUNT(*)
		FROM statements
		WHERE run_id = ? AND outcome = ?
		GROUP BY error_class
		ORDER BY error_class COLLATE BINARY ASC
	`, runID, string(ir.StatusError))
	if err != nil {
		return nil, fmt.Errorf("count by class: %w", err)
	}
	defer rows.Close()

	counts := map[ir.ErrorClass]int64{}
	for rows.Next() {
		var class string
		var n int64
		if err := rows.Scan(&class, &n); err != nil {
			return nil, fmt.Errorf("scan class count: %w", err)
		}
		counts[ir.ErrorClass(class)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate class counts: %w", err)
	}
	return counts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStatement(row scanner) (ir.Statement, error) {
	var st ir.Statement
	var status, class string
	if err := row.Scan(
		&st.ID, &st.RunID, &st.Seq, &st.SQL,
		&status, &class, &st.Outcome.Code, &st.Outcome.Message, &st.Outcome.Rows,
	); err != nil {
		return ir.Statement{}, fmt.Errorf("scan statement: %w", err)
	}
	st.Outcome.Status = ir.Status(status)
	st.Outcome.Class = ir.ErrorClass(class)
	return st, nil
}
