package driver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mbrukman/sqlsmith/internal/grammar"
	"github.com/mbrukman/sqlsmith/internal/ir"
)

// RunLog reads recorded runs. Implemented by *store.Store.
type RunLog interface {
	ReadRun(ctx context.Context, runID string) (ir.Run, error)
	ReadStatements(ctx context.Context, runID string) ([]ir.Statement, error)
}

// Mismatch is a recorded statement that regenerated differently.
type Mismatch struct {
	Seq         int64  `json:"seq"`
	Recorded    string `json:"recorded"`
	Regenerated string `json:"regenerated"`
}

// OutcomeChange is a statement whose execution result moved between the
// recorded run and the replay. Only reported when the Runner has an
// Executor.
type OutcomeChange struct {
	Seq    int64      `json:"seq"`
	SQL    string     `json:"sql"`
	Before ir.Outcome `json:"before"`
	After  ir.Outcome `json:"after"`
}

// ReplayResult reports a replay.
type ReplayResult struct {
	RunID      string          `json:"run_id"`
	Statements int             `json:"statements"`
	Mismatches []Mismatch      `json:"mismatches"`
	Changes    []OutcomeChange `json:"changes,omitempty"`
}

// Deterministic reports whether every statement regenerated identically.
func (r ReplayResult) Deterministic() bool {
	return len(r.Mismatches) == 0
}

// Replay regenerates a recorded run from its stored seed and config and
// compares each statement against the log. With an Executor configured,
// the regenerated statements are executed again and outcome changes
// (status or error class) are reported too.
//
// Replay never writes to a Recorder.
func (r *Runner) Replay(ctx context.Context, log RunLog, runID string) (ReplayResult, error) {
	res := ReplayResult{RunID: runID, Mismatches: []Mismatch{}}

	run, err := log.ReadRun(ctx, runID)
	if err != nil {
		return res, err
	}
	if run.CatalogHash != r.catalogHash {
		return res, fmt.Errorf("replay %s: %w (recorded %s, have %s)",
			runID, ErrCatalogMismatch, short(run.CatalogHash), short(r.catalogHash))
	}

	cfg := grammar.DefaultConfig()
	if err := json.Unmarshal(run.Config, &cfg); err != nil {
		return res, fmt.Errorf("replay %s: decode config: %w", runID, err)
	}
	sess, err := grammar.NewSession(r.catalog, cfg)
	if err != nil {
		return res, fmt.Errorf("replay %s: %w", runID, err)
	}

	recorded, err := log.ReadStatements(ctx, runID)
	if err != nil {
		return res, err
	}

	r.logger.Info("replay started", "run_id", runID, "seed", run.Seed, "statements", len(recorded))

	renderer := sess.Renderer()
	for _, st := range recorded {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		q, err := sess.Generate()
		if err != nil {
			return res, fmt.Errorf("replay %s: statement %d: %w", runID, st.Seq, err)
		}
		sql := renderer.Render(q)
		res.Statements++

		if sql != st.SQL {
			res.Mismatches = append(res.Mismatches, Mismatch{Seq: st.Seq, Recorded: st.SQL, Regenerated: sql})
			r.logger.Debug("statement diverged", "run_id", runID, "seq", st.Seq)
			continue
		}

		if r.exec != nil {
			after := r.exec.Execute(ctx, sql)
			if err := ctx.Err(); err != nil {
				return res, err
			}
			if after.Status != st.Outcome.Status || after.Class != st.Outcome.Class {
				res.Changes = append(res.Changes, OutcomeChange{Seq: st.Seq, SQL: sql, Before: st.Outcome, After: after})
			}
		}
	}

	r.logger.Info("replay finished",
		"run_id", runID,
		"statements", res.Statements,
		"mismatches", len(res.Mismatches),
		"changes", len(res.Changes),
	)
	return res, nil
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
