package grammar

import (
	"math/rand"

	"github.com/mbrukman/sqlsmith/internal/relmodel"
	"github.com/mbrukman/sqlsmith/internal/scope"
)

// Session is the state of one generation run, passed to every
// construction call.
type Session struct {
	cfg     Config
	catalog *relmodel.Catalog
	rnd     *rand.Rand

	aliases    *Clock
	subqueries *Quota

	// depth is the number of recursive productions currently under
	// construction.
	depth      int
	statements int
}

// Stats summarizes a session's run-wide counters.
type Stats struct {
	Statements     int
	Aliases        int64
	Subqueries     int
	SubqueryBudget int
}

// NewSession creates a run over catalog. The catalog must not be modified
// while the session is in use.
func NewSession(catalog *relmodel.Catalog, cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.AliasMode == "" {
		cfg.AliasMode = AliasAlways
	}
	if catalog == nil {
		catalog = &relmodel.Catalog{}
	}
	return &Session{
		cfg:        cfg,
		catalog:    catalog,
		rnd:        rand.New(rand.NewSource(cfg.Seed)),
		aliases:    NewClock(),
		subqueries: NewQuota(cfg.MaxSubqueries),
	}, nil
}

// Generate constructs one statement. On failure no tree is returned.
// Counters consumed by a failed attempt stay consumed.
func (s *Session) Generate() (*QuerySpec, error) {
	s.depth = 0
	q, err := newQuerySpec(s, nil, scope.New(s.catalog))
	if err != nil {
		return nil, err
	}
	s.statements++
	return q, nil
}

// Config returns the session's configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// Renderer returns a renderer honoring the session's alias mode.
func (s *Session) Renderer() Renderer {
	return Renderer{AliasMode: s.cfg.AliasMode}
}

// Stats returns the current run-wide counters.
func (s *Session) Stats() Stats {
	return Stats{
		Statements:     s.statements,
		Aliases:        s.aliases.Current(),
		Subqueries:     s.subqueries.Used(),
		SubqueryBudget: s.subqueries.Limit(),
	}
}

// choose picks an index with probability proportional to its weight.
// Returns -1 when every weight is zero.
func (s *Session) choose(weights ...float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}
	x := s.rnd.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		if x < w {
			return i
		}
		x -= w
	}
	return last
}

// coin returns true with probability p.
func (s *Session) coin(p float64) bool {
	return s.rnd.Float64() < p
}

// decay scales a recursive weight down with construction depth and drops
// it to zero at MaxDepth.
func (s *Session) decay(w float64) float64 {
	if s.depth >= s.cfg.MaxDepth {
		return 0
	}
	return w / float64(1+s.depth)
}

func (s *Session) enter() { s.depth++ }
func (s *Session) leave() { s.depth-- }
