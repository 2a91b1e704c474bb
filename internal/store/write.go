package store

import (
	"context"
	"fmt"

	"github.com/mbrukman/sqlsmith/internal/ir"
)

// WriteRun inserts a run record. The statement count is maintained by
// WriteStatement, so the value on r is only the starting point.
// Duplicate run IDs are an error: a run is written exactly once.
func (s *Store) WriteRun(ctx context.Context, r ir.Run) error {
	if len(r.Config) == 0 {
		return fmt.Errorf("write run %s: config is required", r.ID)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, seed, catalog_hash, config, target, statement_count, generator_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		r.Seed,
		r.CatalogHash,
		string(r.Config),
		r.Target,
		r.StatementCount,
		r.GeneratorVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteStatement appends one statement and bumps its run's count in the
// same transaction. Uses ON CONFLICT(id) DO NOTHING so rewriting a
// recorded statement is a no-op.
//
// Note: The run referenced by RunID must exist (foreign key constraint).
func (s *Store) WriteStatement(ctx context.Context, st ir.Statement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write statement: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO statements
		(id, run_id, seq, sql, outcome, error_class, error_code, error_message, rows)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		st.ID,
		st.RunID,
		st.Seq,
		st.SQL,
		string(st.Outcome.Status),
		string(st.Outcome.Class),
		st.Outcome.Code,
		st.Outcome.Message,
		st.Outcome.Rows,
	)
	if err != nil {
		return fmt.Errorf("write statement: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write statement: rows affected: %w", err)
	}
	if inserted > 0 {
		if _, err := tx.ExecContext(ctx, `
			UPDATE runs SET statement_count = statement_count + 1 WHERE id = ?
		`, st.RunID); err != nil {
			return fmt.Errorf("write statement: bump count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write statement: commit: %w", err)
	}
	return nil
}
