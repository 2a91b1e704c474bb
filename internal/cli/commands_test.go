package cli

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbrukman/sqlsmith/internal/store"
	"github.com/mbrukman/sqlsmith/internal/testutil"
)

// execute runs the root command with an empty config file, so tests never
// pick up a sqlsmith.yaml from the surrounding tree.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cfg := writeConfig(t, "{}\n")

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := newRootCommand(&RootOptions{IDGenerator: testutil.NewSequenceIDs("run")})
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// decodeData decodes the data field of a JSON CLIResponse into v.
func decodeData(t *testing.T, output string, v any) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp), output)
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
	return resp
}

// sqliteTarget creates a SQLite database holding table T1 with a few rows.
func sqliteTarget(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "target.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`
		CREATE TABLE T1 (a INTEGER, b BOOLEAN);
		INSERT INTO T1 VALUES (1, 1), (2, 0), (40, 1);
	`)
	require.NoError(t, err)
	return path
}

func TestGenerateText(t *testing.T) {
	out, _, err := execute(t, "generate", "testdata/t1.cue", "--seed", "5", "--count", "12")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 12)
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, "SELECT "), l)
		assert.True(t, strings.HasSuffix(l, ";"), l)
	}

	again, _, err := execute(t, "generate", "testdata/t1.cue", "--seed", "5", "--count", "12")
	require.NoError(t, err)
	assert.Equal(t, out, again)

	other, _, err := execute(t, "generate", "testdata/t1.cue", "--seed", "6", "--count", "12")
	require.NoError(t, err)
	assert.NotEqual(t, out, other)
}

func TestGenerateJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "generate", "testdata/t1.cue", "-n", "4")
	require.NoError(t, err)

	var result GenerateResult
	resp := decodeData(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, result.Statements, 4)
	assert.Equal(t, 4, result.Stats.Statements)
	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, int64(1), result.Seed)
}

func TestGenerateRecordsDryRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	out, _, err := execute(t, "--format", "json", "generate", "testdata/t1.cue", "-n", "3", "--db", dbPath)
	require.NoError(t, err)
	var result GenerateResult
	decodeData(t, out, &result)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	run, err := st.ReadRun(t.Context(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, "dry", run.Target)
	assert.Equal(t, int64(3), run.StatementCount)
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no catalog", []string{"generate"}, "no catalog given"},
		{"missing catalog", []string{"generate", "testdata/none.cue"}, "E005"},
		{"empty column type", []string{"generate", "testdata/bad_type.cue"}, "E102"},
		{"bad alias mode", []string{"generate", "testdata/t1.cue", "--alias-mode", "never"}, "invalid alias mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestRunReplayAndRuns(t *testing.T) {
	dsn := sqliteTarget(t)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	out, _, err := execute(t, "--format", "json", "run", "testdata/t1.cue",
		"--driver", "sqlite3", "--dsn", dsn, "--db", dbPath, "--seed", "11", "-n", "25")
	require.NoError(t, err)

	var run RunResult
	decodeData(t, out, &run)
	assert.Equal(t, "run-1", run.RunID)
	assert.Equal(t, "sqlite3", run.Target)
	assert.Equal(t, 25, run.Generated)
	failed := 0
	for _, n := range run.Failed {
		failed += n
	}
	assert.Equal(t, 25, run.OK+failed)
	assert.Positive(t, run.OK, "statements over an existing table should succeed")

	t.Run("replay", func(t *testing.T) {
		out, _, err := execute(t, "replay", "testdata/t1.cue", run.RunID, "--db", dbPath)
		require.NoError(t, err)
		assert.Contains(t, out, "✓ Deterministic")
	})

	t.Run("replay with execution", func(t *testing.T) {
		out, _, err := execute(t, "--format", "json", "replay", "testdata/t1.cue", run.RunID,
			"--db", dbPath, "--execute", "--driver", "sqlite3", "--dsn", dsn)
		require.NoError(t, err)
		var res struct {
			Statements int   `json:"statements"`
			Mismatches []any `json:"mismatches"`
			Changes    []any `json:"changes"`
		}
		resp := decodeData(t, out, &res)
		assert.Equal(t, run.RunID, resp.RunID)
		assert.Equal(t, 25, res.Statements)
		assert.Empty(t, res.Mismatches)
		assert.Empty(t, res.Changes)
	})

	t.Run("replay unknown run", func(t *testing.T) {
		_, _, err := execute(t, "replay", "testdata/t1.cue", "no-such-run", "--db", dbPath)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "unknown run")
	})

	t.Run("runs", func(t *testing.T) {
		out, _, err := execute(t, "--format", "json", "runs", "--db", dbPath)
		require.NoError(t, err)
		var infos []RunInfo
		decodeData(t, out, &infos)
		require.Len(t, infos, 1)
		assert.Equal(t, run.RunID, infos[0].ID)
		assert.Equal(t, int64(25), infos[0].StatementCount)
	})

	t.Run("runs failures", func(t *testing.T) {
		out, _, err := execute(t, "runs", run.RunID, "--db", dbPath)
		require.NoError(t, err)
		if failed == 0 {
			assert.Contains(t, out, "No failures.")
		} else {
			assert.Contains(t, out, "SELECT ")
		}
	})

	t.Run("runs bad class", func(t *testing.T) {
		_, _, err := execute(t, "runs", run.RunID, "--db", dbPath, "--class", "fatal")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown error class "fatal"`)
	})
}

func TestRunUnsupportedDriver(t *testing.T) {
	_, _, err := execute(t, "run", "testdata/t1.cue", "--driver", "oracle", "--db", filepath.Join(t.TempDir(), "r.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `unsupported driver "oracle"`)
}

func TestIntrospect(t *testing.T) {
	dsn := sqliteTarget(t)

	out, _, err := execute(t, "introspect", "--driver", "sqlite3", "--dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "name: T1")
	assert.Contains(t, out, "type: integer")
	assert.Contains(t, out, "type: bool")

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	out, _, err = execute(t, "introspect", "--driver", "sqlite3", "--dsn", dsn, "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 1 tables to")

	// The written catalog drives generation.
	gen, _, err := execute(t, "generate", path, "-n", "2")
	require.NoError(t, err)
	assert.Contains(t, gen, "FROM T1 AS")
}

func TestCheckScenarios(t *testing.T) {
	out, _, err := execute(t, "check", "../harness/testdata/scenarios")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ bool_column_only (3 statements)")
	assert.Contains(t, out, "All scenarios passed")
}

func TestCheckFailureAndUpdate(t *testing.T) {
	dir := t.TempDir()
	scenarios := filepath.Join(dir, "scenarios")
	require.NoError(t, os.MkdirAll(scenarios, 0o755))
	catalog, err := filepath.Abs("testdata/t1.cue")
	require.NoError(t, err)

	doc := "name: joins_expected\ndescription: d\ncatalog: " + catalog + "\nseed: 1\ncount: 2\n" +
		"config:\n  max_subqueries: 0\nassertions:\n  - type: contains\n    text: \" JOIN \"\n"
	require.NoError(t, os.WriteFile(filepath.Join(scenarios, "joins.yaml"), []byte(doc), 0o644))

	out, _, err := execute(t, "check", scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ joins_expected")

	// --update writes the golden file even though the assertion still fails.
	_, _, err = execute(t, "check", scenarios, "--update")
	require.Error(t, err)
	golden, err := os.ReadFile(filepath.Join(dir, "golden", "joins_expected.golden"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(golden), "\n"))
}

func TestCheckNotFound(t *testing.T) {
	_, _, err := execute(t, "check", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
