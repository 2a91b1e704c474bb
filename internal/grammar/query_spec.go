package grammar

import (
	"github.com/mbrukman/sqlsmith/internal/relmodel"
	"github.com/mbrukman/sqlsmith/internal/scope"
)

// Quantifier is the optional set quantifier of a statement.
type Quantifier string

const (
	QuantifierNone     Quantifier = ""
	QuantifierAll      Quantifier = "ALL"
	QuantifierDistinct Quantifier = "DISTINCT"
)

// Limit is the optional LIMIT clause.
type Limit struct {
	Count int
}

// QuerySpec is one complete SELECT statement.
type QuerySpec struct {
	node
	Quantifier Quantifier
	From       *FromClause
	Select     *SelectList
	Where      ValueExpr
	Limit      *Limit
}

// newQuerySpec assembles a statement in a fresh child of sc: FROM first,
// then the select list and the search condition against the scope it
// established, then the limit.
// newSearchCondition builds the WHERE expression. It is a comparison
// whenever comparisons are enabled at this depth; newComparison itself
// falls back to true when no operator yields bool.
func newSearchCondition(s *Session, parent Production, sc *scope.Scope) (ValueExpr, error) {
	if s.decay(s.cfg.Weights.Comparison) > 0 {
		return newComparison(s, parent, sc, relmodel.Bool)
	}
	return newValueExpr(s, parent, sc, relmodel.Bool)
}

func newQuerySpec(s *Session, parent Production, sc *scope.Scope) (*QuerySpec, error) {
	q := &QuerySpec{node: node{parent: parent}}
	qs := sc.Push()

	var err error
	if q.From, err = newFromClause(s, q, qs); err != nil {
		return nil, err
	}
	if q.Select, err = newSelectList(s, q, qs); err != nil {
		return nil, err
	}
	if q.Where, err = newSearchCondition(s, q, qs); err != nil {
		return nil, err
	}

	switch s.choose(s.cfg.Weights.Plain, s.cfg.Weights.All, s.cfg.Weights.Distinct) {
	case 1:
		q.Quantifier = QuantifierAll
	case 2:
		q.Quantifier = QuantifierDistinct
	}

	if s.coin(s.cfg.LimitProb) {
		q.Limit = &Limit{Count: s.rnd.Intn(s.cfg.LimitMax + 1)}
	}
	return q, nil
}
