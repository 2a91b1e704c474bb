package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbrukman/sqlsmith/internal/ir"
)

func TestOpenAppliesPragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.WriteRun(context.Background(), createTestRun("run-1", 7)))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	r, err := s2.ReadRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), r.Seed)
}

func TestWriteReadRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	in := createTestRun("run-1", 42)
	require.NoError(t, s.WriteRun(ctx, in))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestWriteRunDuplicate(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, createTestRun("run-1", 1)))
	assert.Error(t, s.WriteRun(ctx, createTestRun("run-1", 1)))
}

func TestWriteRunRequiresConfig(t *testing.T) {
	s := createTestStore(t)
	r := createTestRun("run-1", 1)
	r.Config = nil
	err := s.WriteRun(context.Background(), r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config is required")
}

func TestReadRunNotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadRun(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestWriteStatementCountsAndOrders(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, createTestRun("run-1", 1)))

	// Written out of order on purpose; reads must come back by seq.
	ok := ir.Outcome{Status: ir.StatusOK}
	require.NoError(t, s.WriteStatement(ctx, createTestStatement("run-1", 2, "SELECT 2", ok)))
	require.NoError(t, s.WriteStatement(ctx, createTestStatement("run-1", 1, "SELECT 1", ok)))
	require.NoError(t, s.WriteStatement(ctx, createTestStatement("run-1", 3, "SELECT 3", ok)))

	stmts, err := s.ReadStatements(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	for i, st := range stmts {
		assert.Equal(t, int64(i+1), st.Seq)
	}

	r, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), r.StatementCount)
}

func TestWriteStatementIdempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, createTestRun("run-1", 1)))

	st := createTestStatement("run-1", 1, "SELECT 1", ir.Outcome{Status: ir.StatusOK})
	require.NoError(t, s.WriteStatement(ctx, st))
	require.NoError(t, s.WriteStatement(ctx, st))

	r, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.StatementCount, "a rewritten statement must not bump the count")
}

func TestWriteStatementUnknownRun(t *testing.T) {
	s := createTestStore(t)
	st := createTestStatement("nope", 1, "SELECT 1", ir.Outcome{Status: ir.StatusOK})
	assert.Error(t, s.WriteStatement(context.Background(), st), "foreign key must reject orphan statements")
}

func TestReadStatementsEmpty(t *testing.T) {
	s := createTestStore(t)
	stmts, err := s.ReadStatements(context.Background(), "run-1")
	require.NoError(t, err)
	assert.NotNil(t, stmts)
	assert.Empty(t, stmts)
}

func TestFailuresAndClassCounts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, createTestRun("run-1", 1)))

	outcomes := []ir.Outcome{
		{Status: ir.StatusOK, Rows: 4},
		{Status: ir.StatusError, Class: ir.ClassSemantic, Code: "42883", Message: "operator does not exist"},
		{Status: ir.StatusError, Class: ir.ClassSyntax, Code: "42601", Message: "syntax error"},
		{Status: ir.StatusError, Class: ir.ClassSemantic, Code: "42703", Message: "column does not exist"},
	}
	for i, o := range outcomes {
		require.NoError(t, s.WriteStatement(ctx, createTestStatement("run-1", int64(i+1), "q", o)))
	}

	all, err := s.ReadFailures(ctx, "run-1", ir.ClassNone)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	semantic, err := s.ReadFailures(ctx, "run-1", ir.ClassSemantic)
	require.NoError(t, err)
	require.Len(t, semantic, 2)
	assert.Equal(t, "42883", semantic[0].Outcome.Code)
	assert.Equal(t, int64(2), semantic[0].Seq)

	counts, err := s.CountByClass(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, map[ir.ErrorClass]int64{ir.ClassSemantic: 2, ir.ClassSyntax: 1}, counts)

	stmts, err := s.ReadStatements(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), stmts[0].Outcome.Rows)
}

func TestListRuns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, createTestRun("b", 2)))
	require.NoError(t, s.WriteRun(ctx, createTestRun("a", 1)))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "a", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
}
