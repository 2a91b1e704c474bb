package harness

import (
	"fmt"

	"github.com/mbrukman/sqlsmith/internal/grammar"
	"github.com/mbrukman/sqlsmith/internal/relmodel"
)

// Rule names reported by Check.
const (
	RuleDuplicateAlias   = "duplicate_alias"
	RuleOperandType      = "operand_type"
	RuleEmptySelect      = "empty_select"
	RuleMissingWhere     = "missing_where"
	RuleDerivedColumns   = "derived_columns"
	RuleUnresolvedColumn = "unresolved_column"
	RuleParentLink       = "parent_link"
	RuleNegativeLimit    = "negative_limit"
)

// Violation is one broken structural invariant of a generated tree.
type Violation struct {
	Rule    string `json:"rule" yaml:"rule"`
	Message string `json:"message" yaml:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Rule, v.Message)
}

// Check verifies the structural invariants every generated statement must
// satisfy and returns the violations found, in tree order:
//   - aliases are pairwise distinct across the whole tree
//   - comparison operands have exactly the operator's declared types
//   - select lists are non-empty, WHERE is present and boolean
//   - a subquery exposes exactly its select list's derived relation
//   - every column reference resolves to a relation visible at that point
//     (never a FROM sibling) and has that column's declared type
//   - every child's Parent() is the node that holds it
func Check(q *grammar.QuerySpec) []Violation {
	c := &checker{aliases: map[string]bool{}}
	c.parents(q, nil)
	grammar.Walk(q, func(p grammar.Production) bool {
		c.node(p)
		return true
	})
	return c.out
}

type checker struct {
	aliases map[string]bool
	out     []Violation
}

func (c *checker) add(rule, format string, args ...any) {
	c.out = append(c.out, Violation{Rule: rule, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) node(p grammar.Production) {
	switch n := p.(type) {
	case *grammar.QuerySpec:
		if n.Where == nil {
			c.add(RuleMissingWhere, "query has no search condition")
		} else if n.Where.Type() != relmodel.Bool {
			c.add(RuleMissingWhere, "search condition has type %s, want bool", n.Where.Type())
		}
		if n.Limit != nil && n.Limit.Count < 0 {
			c.add(RuleNegativeLimit, "limit %d", n.Limit.Count)
		}
	case *grammar.SelectList:
		if len(n.Exprs) == 0 {
			c.add(RuleEmptySelect, "select list is empty")
		}
	case *grammar.NamedRef:
		c.alias(n.Alias)
	case *grammar.SubqueryRef:
		c.alias(n.Alias)
		cols := n.Columns().Columns
		if len(cols) != len(n.Query.Select.Exprs) {
			c.add(RuleDerivedColumns, "%s exposes %d columns for %d select items", n.Alias, len(cols), len(n.Query.Select.Exprs))
			break
		}
		for i, e := range n.Query.Select.Exprs {
			want := relmodel.Column{Name: relmodel.DerivedColumnName(i), Type: e.Type()}
			if cols[i] != want {
				c.add(RuleDerivedColumns, "%s column %d is %s %s, want %s %s", n.Alias, i, cols[i].Name, cols[i].Type, want.Name, want.Type)
			}
		}
	case *grammar.JoinRef:
		c.alias(n.Alias)
		if n.On == nil || n.On.Type() != relmodel.Bool {
			c.add(RuleMissingWhere, "join %s has no boolean condition", n.Alias)
		}
	case *grammar.Comparison:
		if n.LHS.Type() != n.Op.Left || n.RHS.Type() != n.Op.Right {
			c.add(RuleOperandType, "%s applied to (%s, %s)", n.Op, n.LHS.Type(), n.RHS.Type())
		}
	case *grammar.ColumnRef:
		c.column(n)
	}
}

func (c *checker) alias(a string) {
	if c.aliases[a] {
		c.add(RuleDuplicateAlias, "alias %s used more than once", a)
	}
	c.aliases[a] = true
}

// column resolves a reference by walking up from it. A query's FROM list
// is visible from its select list and search condition but not from
// inside the FROM list itself; a join's sides are visible from its
// condition.
func (c *checker) column(ref *grammar.ColumnRef) {
	visible := map[string]grammar.TableRef{}
	inFrom := false
	var prev grammar.Production = ref
	for p := ref.Parent(); p != nil; prev, p = p, p.Parent() {
		switch n := p.(type) {
		case *grammar.JoinRef:
			if prev == grammar.Production(n.On) {
				exposed(n.LHS, visible)
				exposed(n.RHS, visible)
			}
		case *grammar.FromClause:
			inFrom = true
		case *grammar.QuerySpec:
			if !inFrom {
				for _, r := range n.From.Refs {
					exposed(r, visible)
				}
			}
			inFrom = false
		}
	}

	r := ref.Ref
	src, ok := visible[r.Table]
	if !ok {
		c.add(RuleUnresolvedColumn, "%s: relation %s is not visible", r.Ident(), r.Table)
		return
	}
	var rel relmodel.Relation
	switch s := src.(type) {
	case *grammar.NamedRef:
		rel = s.Table.Relation
	case *grammar.SubqueryRef:
		rel = s.Columns()
	}
	for _, col := range rel.Columns {
		if col.Name == r.Column {
			if col.Type != r.Type {
				c.add(RuleUnresolvedColumn, "%s has type %s, declared %s", r.Ident(), r.Type, col.Type)
			}
			return
		}
	}
	c.add(RuleUnresolvedColumn, "%s: no column %s in %s", r.Ident(), r.Column, r.Table)
}

// exposed adds the aliases a table reference registers: its own for named
// relations and subqueries, its sides' for joins.
func exposed(ref grammar.TableRef, into map[string]grammar.TableRef) {
	switch r := ref.(type) {
	case *grammar.JoinRef:
		exposed(r.LHS, into)
		exposed(r.RHS, into)
	default:
		into[r.Ident()] = r
	}
}

// parents checks the upward links of p's subtree.
func (c *checker) parents(p, want grammar.Production) {
	if p == nil {
		return
	}
	if p.Parent() != want {
		c.add(RuleParentLink, "%T has parent %T, want %T", p, p.Parent(), want)
	}
	switch n := p.(type) {
	case *grammar.QuerySpec:
		c.parents(n.From, n)
		c.parents(n.Select, n)
		c.parents(n.Where, n)
	case *grammar.FromClause:
		for _, r := range n.Refs {
			c.parents(r, n)
		}
	case *grammar.SelectList:
		for _, e := range n.Exprs {
			c.parents(e, n)
		}
	case *grammar.SubqueryRef:
		c.parents(n.Query, n)
	case *grammar.JoinRef:
		c.parents(n.LHS, n)
		c.parents(n.RHS, n)
		c.parents(n.On, n)
	case *grammar.Comparison:
		c.parents(n.LHS, n)
		c.parents(n.RHS, n)
	}
}
