package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbrukman/sqlsmith/internal/grammar"
	"github.com/mbrukman/sqlsmith/internal/ir"
	"github.com/mbrukman/sqlsmith/internal/relmodel"
	"github.com/mbrukman/sqlsmith/internal/store"
)

func recordRun(t *testing.T, s *store.Store, cfg grammar.Config, seed int64, count int, opts ...Option) *Runner {
	t.Helper()
	opts = append([]Option{WithRecorder(s), WithIDGenerator(NewFixedGenerator("run-1"))}, opts...)
	r, err := New(testCatalog(), cfg, opts...)
	require.NoError(t, err)
	_, err = r.Run(context.Background(), RunSpec{Seed: seed, Count: count})
	require.NoError(t, err)
	return r
}

func TestReplayDeterministic(t *testing.T) {
	s := createTestStore(t)
	recordRun(t, s, grammar.DefaultConfig(), 5, 30)

	// A fresh runner with a different default config must still follow
	// the recorded config.
	cfg := grammar.DefaultConfig()
	cfg.MaxSubqueries = 0
	replayer, err := New(testCatalog(), cfg)
	require.NoError(t, err)

	res, err := replayer.Replay(context.Background(), s, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 30, res.Statements)
	assert.True(t, res.Deterministic(), "mismatches: %v", res.Mismatches)
	assert.Empty(t, res.Changes)
}

func TestReplayNestedAliasMode(t *testing.T) {
	s := createTestStore(t)
	cfg := grammar.DefaultConfig()
	cfg.AliasMode = grammar.AliasNested
	recordRun(t, s, cfg, 9, 20)

	replayer, err := New(testCatalog(), grammar.DefaultConfig())
	require.NoError(t, err)
	res, err := replayer.Replay(context.Background(), s, "run-1")
	require.NoError(t, err)
	assert.True(t, res.Deterministic())
}

func TestReplayDetectsDivergence(t *testing.T) {
	s := createTestStore(t)
	r := recordRun(t, s, grammar.DefaultConfig(), 5, 10)

	_, err := s.DB().Exec(`UPDATE statements SET sql = 'SELECT 1' WHERE run_id = 'run-1' AND seq = 4`)
	require.NoError(t, err)

	res, err := r.Replay(context.Background(), s, "run-1")
	require.NoError(t, err)
	require.Len(t, res.Mismatches, 1)
	assert.Equal(t, int64(4), res.Mismatches[0].Seq)
	assert.Equal(t, "SELECT 1", res.Mismatches[0].Recorded)
	assert.False(t, res.Deterministic())
}

func TestReplayReportsOutcomeChanges(t *testing.T) {
	s := createTestStore(t)
	cfg := grammar.DefaultConfig()
	cfg.Weights.Join = 50
	recordRun(t, s, cfg, 2, 20)

	// Recorded dry; replaying with an executor turns every statement into
	// a change from skipped to ok or error.
	r, err := New(testCatalog(), cfg, WithExecutor(rejectJoins()))
	require.NoError(t, err)
	res, err := r.Replay(context.Background(), s, "run-1")
	require.NoError(t, err)
	assert.True(t, res.Deterministic())
	require.Len(t, res.Changes, 20)
	for _, c := range res.Changes {
		assert.Equal(t, ir.StatusSkipped, c.Before.Status)
		assert.NotEqual(t, ir.StatusSkipped, c.After.Status)
	}
}

func TestReplayCatalogMismatch(t *testing.T) {
	s := createTestStore(t)
	recordRun(t, s, grammar.DefaultConfig(), 5, 3)

	other := testCatalog()
	other.Tables = other.Tables[:1]
	r, err := New(other, grammar.DefaultConfig())
	require.NoError(t, err)

	_, err = r.Replay(context.Background(), s, "run-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCatalogMismatch))
}

func TestReplayUnknownRun(t *testing.T) {
	s := createTestStore(t)
	r, err := New(testCatalog(), grammar.DefaultConfig())
	require.NoError(t, err)

	_, err = r.Replay(context.Background(), s, "missing")
	assert.True(t, errors.Is(err, store.ErrRunNotFound))
}

func TestReplayEmptyCatalogHashDiffers(t *testing.T) {
	a, err := New(testCatalog(), grammar.DefaultConfig())
	require.NoError(t, err)
	b, err := New(&relmodel.Catalog{}, grammar.DefaultConfig())
	require.NoError(t, err)
	assert.NotEqual(t, a.CatalogHash(), b.CatalogHash())
}
