package grammar

import (
	"github.com/mbrukman/sqlsmith/internal/relmodel"
	"github.com/mbrukman/sqlsmith/internal/scope"
)

// Const is a numeric literal drawn from [0, ConstMax).
type Const struct {
	node
	T     relmodel.Type
	Value int
}

func (c *Const) Type() relmodel.Type { return c.T }
func (*Const) valueExpr()            {}

// ColumnRef names a visible column. Its type is the column's declared
// type.
type ColumnRef struct {
	node
	Ref scope.ColumnRef
}

func (c *ColumnRef) Type() relmodel.Type { return c.Ref.Type }
func (*ColumnRef) valueExpr()            {}

// BoolLit is the literal true.
type BoolLit struct {
	node
}

func (*BoolLit) Type() relmodel.Type { return relmodel.Bool }
func (*BoolLit) valueExpr()          {}

// Comparison applies a catalog operator to two operands whose types equal
// the operator's declared operand types.
type Comparison struct {
	node
	Op  relmodel.Op
	LHS ValueExpr
	RHS ValueExpr
}

func (c *Comparison) Type() relmodel.Type { return c.Op.Result }
func (*Comparison) valueExpr()            {}

const (
	prodValueExpr  = "value_expr"
	prodColumnRef  = "column_reference"
	prodComparison = "comparison_op"
)

// newValueExpr builds an expression of type want (relmodel.Any for no
// constraint). The variants are constant, column reference and
// comparison, filtered to those that can produce want.
func newValueExpr(s *Session, parent Production, sc *scope.Scope, want relmodel.Type) (ValueExpr, error) {
	w := s.cfg.Weights

	var constW, cmpW float64
	if want == relmodel.Any || want.HasLiteral() {
		constW = w.Const
	}
	if want == relmodel.Any || want == relmodel.Bool {
		cmpW = s.decay(w.Comparison)
	}

	switch s.choose(constW, w.Column, cmpW) {
	case 0:
		return newLiteral(s, parent, want)
	case 2:
		return newComparison(s, parent, sc, want)
	default:
		return newColumnRef(s, parent, sc, want)
	}
}

// newLiteral returns the simplest expression of type want: a constant for
// numeric types, true for bool. Other types have no literal fallback.
func newLiteral(s *Session, parent Production, want relmodel.Type) (ValueExpr, error) {
	switch {
	case want == relmodel.Bool:
		return &BoolLit{node: node{parent: parent}}, nil
	case want == relmodel.Any:
		want = relmodel.Integer
		fallthrough
	case want.IsNumeric():
		return &Const{
			node:  node{parent: parent},
			T:     want,
			Value: s.rnd.Intn(s.cfg.ConstMax),
		}, nil
	}
	return nil, exhausted(prodValueExpr, "no literal of type %s", want)
}

// newColumnRef picks uniformly among visible columns of type want and
// falls back to a literal when there are none.
func newColumnRef(s *Session, parent Production, sc *scope.Scope, want relmodel.Type) (ValueExpr, error) {
	refs := sc.Resolve(want)
	if len(refs) == 0 {
		v, err := newLiteral(s, parent, want)
		if err != nil {
			return nil, exhausted(prodColumnRef, "no visible column of type %s", want)
		}
		return v, nil
	}
	return &ColumnRef{
		node: node{parent: parent},
		Ref:  refs[s.rnd.Intn(len(refs))],
	}, nil
}

// newComparison picks an operator yielding want whose operand types can
// be produced in sc, then builds both operands. Without such an operator
// it falls back to a literal.
func newComparison(s *Session, parent Production, sc *scope.Scope, want relmodel.Type) (ValueExpr, error) {
	if want == relmodel.Any {
		want = relmodel.Bool
	}

	var ops []relmodel.Op
	for _, op := range sc.Catalog().OperatorsReturning(want) {
		if producible(sc, op.Left) && producible(sc, op.Right) {
			ops = append(ops, op)
		}
	}
	if len(ops) == 0 {
		return newLiteral(s, parent, want)
	}

	s.enter()
	defer s.leave()

	c := &Comparison{node: node{parent: parent}}
	c.Op = ops[s.rnd.Intn(len(ops))]

	var err error
	if c.LHS, err = newValueExpr(s, c, sc, c.Op.Left); err != nil {
		return nil, err
	}
	if c.RHS, err = newValueExpr(s, c, sc, c.Op.Right); err != nil {
		return nil, err
	}
	return c, nil
}

// producible reports whether an expression of type t can be built in sc
// without failing.
func producible(sc *scope.Scope, t relmodel.Type) bool {
	return t.HasLiteral() || len(sc.Resolve(t)) > 0
}
