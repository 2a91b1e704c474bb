package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mbrukman/sqlsmith/internal/grammar"
	"github.com/mbrukman/sqlsmith/internal/ir"
	"github.com/mbrukman/sqlsmith/internal/relmodel"
)

// DryTarget is the target name recorded for runs without an Executor.
const DryTarget = "dry"

// Executor runs one statement on the engine under test.
// Implemented by *target.Target.
type Executor interface {
	Name() string
	Execute(ctx context.Context, query string) ir.Outcome
}

// Recorder appends runs and statements to a log.
// Implemented by *store.Store.
type Recorder interface {
	WriteRun(ctx context.Context, r ir.Run) error
	WriteStatement(ctx context.Context, st ir.Statement) error
}

// Runner generates statements over one catalog.
type Runner struct {
	catalog     *relmodel.Catalog
	catalogHash string
	config      grammar.Config

	exec   Executor
	rec    Recorder
	ids    IDGenerator
	logger *slog.Logger
	hook   func(ir.Statement)
}

// Option configures a Runner.
type Option func(*Runner)

// WithExecutor executes every statement on e. Without it runs are dry:
// statements are generated and recorded with StatusSkipped.
func WithExecutor(e Executor) Option {
	return func(r *Runner) { r.exec = e }
}

// WithRecorder appends every run and statement to rec.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.rec = rec }
}

// WithIDGenerator overrides the run ID source (default: UUIDv7).
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Runner) { r.ids = g }
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithStatementHook calls fn with every statement after it is executed
// and recorded, in generation order.
func WithStatementHook(fn func(ir.Statement)) Option {
	return func(r *Runner) { r.hook = fn }
}

// New creates a Runner. cfg.Seed is replaced by each RunSpec's seed.
func New(catalog *relmodel.Catalog, cfg grammar.Config, opts ...Option) (*Runner, error) {
	if catalog == nil {
		catalog = &relmodel.Catalog{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	hash, err := ir.CatalogHash(catalog)
	if err != nil {
		return nil, fmt.Errorf("hash catalog: %w", err)
	}

	r := &Runner{
		catalog:     catalog,
		catalogHash: hash,
		config:      cfg,
		ids:         UUIDv7Generator{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// CatalogHash returns the fingerprint recorded on every run.
func (r *Runner) CatalogHash() string {
	return r.catalogHash
}

// RunSpec selects one run.
type RunSpec struct {
	Seed  int64
	Count int
}

// Summary reports what a run did.
type Summary struct {
	RunID     string
	Seed      int64
	Target    string
	Generated int
	OK        int
	Skipped   int
	Failed    map[ir.ErrorClass]int
	Stats     grammar.Stats
}

// FailedTotal sums failures across classes.
func (s Summary) FailedTotal() int {
	n := 0
	for _, c := range s.Failed {
		n += c
	}
	return n
}

// Run generates spec.Count statements from spec.Seed.
//
// A GenerationExhausted error ends the run: the catalog cannot produce a
// statement and retrying with the same session cannot change that. Context
// cancellation also ends the run; the partial summary is returned with the
// error in both cases. A statement interrupted by cancellation is neither
// counted nor recorded.
func (r *Runner) Run(ctx context.Context, spec RunSpec) (Summary, error) {
	if spec.Count < 0 {
		return Summary{}, fmt.Errorf("count must be >= 0, got %d", spec.Count)
	}

	cfg := r.config
	cfg.Seed = spec.Seed
	sess, err := grammar.NewSession(r.catalog, cfg)
	if err != nil {
		return Summary{}, err
	}
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return Summary{}, fmt.Errorf("marshal config: %w", err)
	}

	sum := Summary{
		RunID:  r.ids.Generate(),
		Seed:   spec.Seed,
		Target: DryTarget,
		Failed: map[ir.ErrorClass]int{},
	}
	if r.exec != nil {
		sum.Target = r.exec.Name()
	}
	log := r.logger.With("run_id", sum.RunID)

	if r.rec != nil {
		if err := r.rec.WriteRun(ctx, ir.Run{
			ID:               sum.RunID,
			Seed:             spec.Seed,
			CatalogHash:      r.catalogHash,
			Config:           configJSON,
			Target:           sum.Target,
			GeneratorVersion: ir.GeneratorVersion,
		}); err != nil {
			return sum, fmt.Errorf("record run: %w", err)
		}
	}

	log.Info("run started", "seed", spec.Seed, "count", spec.Count, "target", sum.Target)

	renderer := sess.Renderer()
	for seq := int64(1); seq <= int64(spec.Count); seq++ {
		if err := ctx.Err(); err != nil {
			sum.Stats = sess.Stats()
			log.Info("run canceled", "generated", sum.Generated)
			return sum, err
		}

		q, err := sess.Generate()
		if err != nil {
			sum.Stats = sess.Stats()
			return sum, fmt.Errorf("statement %d: %w", seq, err)
		}
		sql := renderer.Render(q)

		outcome := ir.Outcome{Status: ir.StatusSkipped}
		if r.exec != nil {
			outcome = r.exec.Execute(ctx, sql)
			// An interrupted statement says nothing about the engine.
			if err := ctx.Err(); err != nil {
				sum.Stats = sess.Stats()
				log.Info("run canceled", "generated", sum.Generated, "seq", seq)
				return sum, err
			}
		}
		sum.Generated++

		switch outcome.Status {
		case ir.StatusOK:
			sum.OK++
		case ir.StatusSkipped:
			sum.Skipped++
		default:
			if sum.Failed[outcome.Class] == 0 {
				log.Info("new error class", "seq", seq, "class", outcome.Class, "code", outcome.Code)
			}
			sum.Failed[outcome.Class]++
			log.Debug("statement failed",
				"seq", seq,
				"class", outcome.Class,
				"code", outcome.Code,
				"error", outcome.Message,
				"sql", sql,
			)
		}

		st := ir.Statement{RunID: sum.RunID, Seq: seq, SQL: sql, Outcome: outcome}
		if st.ID, err = ir.StatementID(sum.RunID, seq, sql); err != nil {
			return sum, err
		}
		if r.rec != nil {
			if err := r.rec.WriteStatement(ctx, st); err != nil {
				return sum, fmt.Errorf("record statement %d: %w", seq, err)
			}
		}
		if r.hook != nil {
			r.hook(st)
		}
	}

	sum.Stats = sess.Stats()
	log.Info("run finished",
		"generated", sum.Generated,
		"ok", sum.OK,
		"failed", sum.FailedTotal(),
		"skipped", sum.Skipped,
		"subqueries", sum.Stats.Subqueries,
	)
	return sum, nil
}

// ErrCatalogMismatch is returned by Replay when the run was recorded
// against a different catalog than the Runner's.
var ErrCatalogMismatch = errors.New("catalog does not match the recorded run")
