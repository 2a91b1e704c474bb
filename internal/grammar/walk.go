package grammar

// Walk traverses the tree rooted at p in pre-order, in rendering order.
// If fn returns false, the children of that node are skipped.
func Walk(p Production, fn func(Production) bool) {
	if p == nil || !fn(p) {
		return
	}
	switch n := p.(type) {
	case *QuerySpec:
		Walk(n.Select, fn)
		Walk(n.From, fn)
		Walk(n.Where, fn)
	case *SelectList:
		for _, e := range n.Exprs {
			Walk(e, fn)
		}
	case *FromClause:
		for _, ref := range n.Refs {
			Walk(ref, fn)
		}
	case *SubqueryRef:
		Walk(n.Query, fn)
	case *JoinRef:
		Walk(n.LHS, fn)
		Walk(n.RHS, fn)
		Walk(n.On, fn)
	case *Comparison:
		Walk(n.LHS, fn)
		Walk(n.RHS, fn)
	case *NamedRef, *Const, *ColumnRef, *BoolLit:
	}
}
