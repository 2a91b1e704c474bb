// Package grammar generates random, well-typed SQL SELECT statements from
// a catalog and renders them to text.
//
// # Productions
//
// Every node of a generated tree is a Production. The families are closed:
//
//	TableRef:  *NamedRef | *SubqueryRef | *JoinRef
//	ValueExpr: *Const | *ColumnRef | *BoolLit | *Comparison
//
// plus *SelectList, *FromClause and *QuerySpec, the root of a statement.
// Each node is owned by exactly one parent and keeps a non-owning
// back-reference to it (Parent). Column and alias lookups go through the
// scope, never through shared nodes.
//
// # Sessions
//
// A Session is one generation run. It owns the random source, the alias
// counter, the subquery budget and the construction depth. Counters only
// increase for the life of the session, across every statement it
// generates. Two sessions with the same seed, config and catalog produce
// identical trees.
//
// A Session is not safe for concurrent use. Run concurrent generation with
// one Session per goroutine.
//
// # Termination
//
// The recursive variants (subquery and join table references, comparison
// expressions) lose weight with depth. Subquery and join references also
// lose weight as the run-wide subquery budget is consumed, and both are
// unavailable once it is exhausted or MaxDepth is reached. A named
// relation is always selectable when the catalog has a table.
//
// # Rendering
//
// Render is a pure read-only traversal. Rendering the same tree twice
// yields byte-identical text, and independent trees may be rendered
// concurrently.
//
//	sess, err := grammar.NewSession(catalog, grammar.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	q, err := sess.Generate()
//	if err != nil {
//		return err
//	}
//	fmt.Println(sess.Renderer().Render(q))
package grammar
