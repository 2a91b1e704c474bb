package grammar

import "github.com/mbrukman/sqlsmith/internal/relmodel"

// Production is a node of a generated tree.
//
// This is a sealed interface: only types in this package implement it.
type Production interface {
	// Parent returns the owning node, or nil for a root. The reference is
	// for upward lookups only; a node never owns its parent.
	Parent() Production

	production()
}

type node struct {
	parent Production
}

func (n *node) Parent() Production { return n.parent }

func (*node) production() {}

// TableRef is one FROM-list entry: *NamedRef, *SubqueryRef or *JoinRef.
type TableRef interface {
	Production

	// Ident returns the reference's alias.
	Ident() string

	tableRef()
}

// ValueExpr is a typed scalar expression: *Const, *ColumnRef, *BoolLit or
// *Comparison.
type ValueExpr interface {
	Production

	// Type returns the expression's semantic type.
	Type() relmodel.Type

	valueExpr()
}

// EnclosingQuery returns the nearest QuerySpec strictly above p, or nil.
func EnclosingQuery(p Production) *QuerySpec {
	for n := p.Parent(); n != nil; n = n.Parent() {
		if q, ok := n.(*QuerySpec); ok {
			return q
		}
	}
	return nil
}

// Nesting returns the number of subquery references above p.
func Nesting(p Production) int {
	n := 0
	for cur := p.Parent(); cur != nil; cur = cur.Parent() {
		if _, ok := cur.(*SubqueryRef); ok {
			n++
		}
	}
	return n
}
