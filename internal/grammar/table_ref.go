package grammar

import (
	"github.com/mbrukman/sqlsmith/internal/relmodel"
	"github.com/mbrukman/sqlsmith/internal/scope"
)

// NamedRef references a catalog relation directly.
type NamedRef struct {
	node
	Table relmodel.Table
	Alias string
}

func (r *NamedRef) Ident() string { return r.Alias }
func (*NamedRef) tableRef()       {}

// SubqueryRef wraps a nested statement and exposes its select list's
// derived relation.
type SubqueryRef struct {
	node
	Query *QuerySpec
	Alias string
}

func (r *SubqueryRef) Ident() string { return r.Alias }
func (*SubqueryRef) tableRef()       {}

// Columns returns the exposed relation: exactly the inner select list's
// derived relation, in order.
func (r *SubqueryRef) Columns() relmodel.Relation {
	return r.Query.Select.Derived()
}

// JoinKind is the join-type tag of a JoinRef.
type JoinKind string

const (
	InnerJoin JoinKind = "INNER"
	LeftJoin  JoinKind = "LEFT"
)

var joinKinds = []JoinKind{InnerJoin, LeftJoin}

// JoinRef joins two table references. Its columns are those of its two
// sides, still qualified by their own aliases.
type JoinRef struct {
	node
	Kind  JoinKind
	LHS   TableRef
	RHS   TableRef
	On    ValueExpr

	// Alias is never rendered. It holds a slot in the alias sequence so
	// every TableRef has a unique Ident.
	Alias string
}

func (r *JoinRef) Ident() string { return r.Alias }
func (*JoinRef) tableRef()       {}

// Condition returns the rendered join condition.
func (r *JoinRef) Condition() string {
	return Render(r.On)
}

const (
	prodTableRef = "table_ref"
	prodSubquery = "table_subquery"
	prodJoin     = "joined_table"
)

// newTableRef picks among the table reference variants. The recursive
// variants decay with depth and with subquery budget consumption.
func newTableRef(s *Session, parent Production, sc *scope.Scope) (TableRef, error) {
	tables := sc.Tables()
	if len(tables) == 0 {
		return nil, exhausted(prodTableRef, "catalog offers no relations")
	}

	var sub, join float64
	if !s.subqueries.Exhausted() {
		left := s.subqueries.Remaining()
		sub = s.decay(s.cfg.Weights.Subquery * left)
		join = s.decay(s.cfg.Weights.Join * left)
	}

	switch s.choose(s.cfg.Weights.Named, sub, join) {
	case 1:
		return newSubqueryRef(s, parent, sc)
	case 2:
		return newJoinRef(s, parent, sc)
	default:
		return newNamedRef(s, parent, tables), nil
	}
}

func newNamedRef(s *Session, parent Production, tables []relmodel.Table) *NamedRef {
	r := &NamedRef{node: node{parent: parent}}
	r.Table = tables[s.rnd.Intn(len(tables))]
	r.Alias = s.aliases.Alias("t")
	return r
}

func newSubqueryRef(s *Session, parent Production, sc *scope.Scope) (*SubqueryRef, error) {
	if !s.subqueries.TryAcquire() {
		return nil, exhausted(prodSubquery, "subquery budget exhausted")
	}
	s.enter()
	defer s.leave()

	r := &SubqueryRef{node: node{parent: parent}}
	q, err := newQuerySpec(s, r, sc)
	if err != nil {
		return nil, err
	}
	r.Query = q
	r.Alias = s.aliases.Alias("s")
	return r, nil
}

// newJoinRef builds both sides against sc, so neither side can see the
// other, then builds the condition in a child scope that sees both.
func newJoinRef(s *Session, parent Production, sc *scope.Scope) (*JoinRef, error) {
	s.enter()
	defer s.leave()

	r := &JoinRef{node: node{parent: parent}}
	r.Kind = joinKinds[s.rnd.Intn(len(joinKinds))]

	var err error
	if r.LHS, err = newTableRef(s, r, sc); err != nil {
		return nil, err
	}
	if r.RHS, err = newTableRef(s, r, sc); err != nil {
		return nil, err
	}

	on := sc.Push()
	register(on, r.LHS)
	register(on, r.RHS)
	if r.On, err = newValueExpr(s, r, on, relmodel.Bool); err != nil {
		return nil, err
	}
	r.Alias = s.aliases.Alias("j")
	return r, nil
}

// register makes ref's columns visible in sc. A join registers its
// sides, so their columns keep their own qualifiers.
func register(sc *scope.Scope, ref TableRef) {
	switch r := ref.(type) {
	case *NamedRef:
		sc.Register(r.Alias, r.Table.Relation)
	case *SubqueryRef:
		sc.Register(r.Alias, r.Columns())
	case *JoinRef:
		register(sc, r.LHS)
		register(sc, r.RHS)
	}
}
