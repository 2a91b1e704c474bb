package store

import (
	"path/filepath"
	"testing"

	"github.com/mbrukman/sqlsmith/internal/ir"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with minimal required fields.
func createTestRun(id string, seed int64) ir.Run {
	return ir.Run{
		ID:               id,
		Seed:             seed,
		CatalogHash:      "test-hash",
		Config:           []byte(`{"seed":1}`),
		Target:           "dry",
		GeneratorVersion: ir.GeneratorVersion,
	}
}

// createTestStatement creates a statement with a computed ID.
func createTestStatement(runID string, seq int64, sql string, outcome ir.Outcome) ir.Statement {
	return ir.Statement{
		ID:      ir.MustStatementID(runID, seq, sql),
		RunID:   runID,
		Seq:     seq,
		SQL:     sql,
		Outcome: outcome,
	}
}
