package grammar

import (
	"github.com/mbrukman/sqlsmith/internal/relmodel"
	"github.com/mbrukman/sqlsmith/internal/scope"
)

// SelectList is the non-empty, ordered projection of a statement.
type SelectList struct {
	node
	Exprs []ValueExpr
}

// Derived returns the relation the list synthesizes: one (c<i>, type)
// column per expression, in order.
func (l *SelectList) Derived() relmodel.Relation {
	types := make([]relmodel.Type, len(l.Exprs))
	for i, e := range l.Exprs {
		types[i] = e.Type()
	}
	return relmodel.Derive(types)
}

const prodSelectList = "select_list"

func newSelectList(s *Session, parent Production, sc *scope.Scope) (*SelectList, error) {
	l := &SelectList{node: node{parent: parent}}
	for {
		e, err := newValueExpr(s, l, sc, relmodel.Any)
		if err != nil {
			return nil, err
		}
		l.Exprs = append(l.Exprs, e)
		if len(l.Exprs) >= s.cfg.MaxColumns || !s.coin(s.cfg.ExtraColumnProb) {
			break
		}
	}
	return l, nil
}

// FromClause is the ordered FROM list.
type FromClause struct {
	node
	Refs []TableRef
}

// newFromClause builds every entry against sc before registering any of
// them, so entries never reference their siblings. Registration then
// makes all entries visible to the rest of the statement.
func newFromClause(s *Session, parent Production, sc *scope.Scope) (*FromClause, error) {
	f := &FromClause{node: node{parent: parent}}
	for {
		ref, err := newTableRef(s, f, sc)
		if err != nil {
			return nil, err
		}
		f.Refs = append(f.Refs, ref)
		if len(f.Refs) >= s.cfg.MaxFromItems || !s.coin(s.cfg.ExtraFromProb) {
			break
		}
	}
	for _, ref := range f.Refs {
		register(sc, ref)
	}
	return f, nil
}
