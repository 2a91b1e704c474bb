// Package scope tracks which relations and columns are visible at each
// point of query construction.
//
// Scopes form a chain. A child created with Push sees everything its
// ancestors registered plus its own registrations. Registration never
// leaks upward: popping a child discards what it added.
package scope

import "github.com/mbrukman/sqlsmith/internal/relmodel"

// ColumnRef is one visible column: the alias of the table reference
// exposing it, the column name and its type.
type ColumnRef struct {
	Table  string
	Column string
	Type   relmodel.Type
}

// Ident returns the qualified column reference text, e.g. "t1.a".
func (r ColumnRef) Ident() string {
	return r.Table + "." + r.Column
}

type entry struct {
	alias string
	rel   relmodel.Relation
}

// Scope is one level of visibility.
type Scope struct {
	parent  *Scope
	catalog *relmodel.Catalog
	level   int
	refs    []entry
}

// New creates a root scope over a catalog.
func New(catalog *relmodel.Catalog) *Scope {
	if catalog == nil {
		catalog = &relmodel.Catalog{}
	}
	return &Scope{catalog: catalog}
}

// Push returns a child scope inheriting s's visibility.
func (s *Scope) Push() *Scope {
	return &Scope{
		parent:  s,
		catalog: s.catalog,
		level:   s.level + 1,
	}
}

// Pop returns the parent scope. Popping the root returns the root.
func (s *Scope) Pop() *Scope {
	if s.parent == nil {
		return s
	}
	return s.parent
}

// Level is the nesting depth; the root is 0.
func (s *Scope) Level() int {
	return s.level
}

// Register makes the columns of rel visible under alias for subsequent
// construction in s and its descendants.
func (s *Scope) Register(alias string, rel relmodel.Relation) {
	s.refs = append(s.refs, entry{alias: alias, rel: rel})
}

// Resolve returns the visible columns whose type satisfies want, ancestors
// first and then in registration order.
func (s *Scope) Resolve(want relmodel.Type) []ColumnRef {
	var out []ColumnRef
	if s.parent != nil {
		out = s.parent.Resolve(want)
	}
	for _, e := range s.refs {
		for _, c := range e.rel.ColumnsOf(want) {
			out = append(out, ColumnRef{Table: e.alias, Column: c.Name, Type: c.Type})
		}
	}
	return out
}

// Aliases returns the table aliases visible in s, ancestors first.
func (s *Scope) Aliases() []string {
	var out []string
	if s.parent != nil {
		out = s.parent.Aliases()
	}
	for _, e := range s.refs {
		out = append(out, e.alias)
	}
	return out
}

// Tables returns the catalog relations available for table references.
func (s *Scope) Tables() []relmodel.Table {
	return s.catalog.Tables
}

// Catalog returns the catalog backing the scope chain.
func (s *Scope) Catalog() *relmodel.Catalog {
	return s.catalog
}
