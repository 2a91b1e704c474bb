package grammar

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mbrukman/sqlsmith/internal/relmodel"
)

// Renderer turns a tree into SQL text. The zero value aliases every
// select-list item.
type Renderer struct {
	AliasMode AliasMode
}

// Render renders p with the default renderer.
func Render(p Production) string {
	return Renderer{}.Render(p)
}

// Render returns the SQL text of p.
func (r Renderer) Render(p Production) string {
	var b strings.Builder
	r.render(&b, p)
	return b.String()
}

// WriteTo writes the SQL text of p to w.
func (r Renderer) WriteTo(w io.Writer, p Production) (int64, error) {
	n, err := io.WriteString(w, r.Render(p))
	return int64(n), err
}

func (r Renderer) render(b *strings.Builder, p Production) {
	switch n := p.(type) {
	case *QuerySpec:
		b.WriteString("SELECT ")
		if n.Quantifier != QuantifierNone {
			b.WriteString(string(n.Quantifier))
			b.WriteByte(' ')
		}
		r.render(b, n.Select)
		b.WriteString(" FROM ")
		r.render(b, n.From)
		b.WriteString(" WHERE ")
		r.render(b, n.Where)
		if n.Limit != nil {
			b.WriteString(" LIMIT ")
			b.WriteString(strconv.Itoa(n.Limit.Count))
		}

	case *SelectList:
		alias := r.aliasColumns(n)
		for i, e := range n.Exprs {
			if i > 0 {
				b.WriteString(", ")
			}
			r.render(b, e)
			if alias {
				b.WriteString(" AS ")
				b.WriteString(relmodel.DerivedColumnName(i))
			}
		}

	case *FromClause:
		for i, ref := range n.Refs {
			if i > 0 {
				b.WriteString(", ")
			}
			r.render(b, ref)
		}

	case *NamedRef:
		b.WriteString(n.Table.Ident())
		b.WriteString(" AS ")
		b.WriteString(n.Alias)

	case *SubqueryRef:
		b.WriteByte('(')
		r.render(b, n.Query)
		b.WriteString(") AS ")
		b.WriteString(n.Alias)

	case *JoinRef:
		r.render(b, n.LHS)
		b.WriteByte(' ')
		b.WriteString(string(n.Kind))
		b.WriteString(" JOIN ")
		if _, nested := n.RHS.(*JoinRef); nested {
			b.WriteByte('(')
			r.render(b, n.RHS)
			b.WriteByte(')')
		} else {
			r.render(b, n.RHS)
		}
		b.WriteString(" ON ")
		r.render(b, n.On)

	case *Const:
		b.WriteString(strconv.Itoa(n.Value))

	case *ColumnRef:
		b.WriteString(n.Ref.Ident())

	case *BoolLit:
		b.WriteString("true")

	case *Comparison:
		r.operand(b, n.LHS)
		b.WriteString(n.Op.Name)
		r.operand(b, n.RHS)

	default:
		panic(fmt.Sprintf("grammar: unknown production %T", p))
	}
}

// operand renders a comparison operand, parenthesizing nested comparisons
// so operator precedence cannot regroup them.
func (r Renderer) operand(b *strings.Builder, e ValueExpr) {
	if _, ok := e.(*Comparison); ok {
		b.WriteByte('(')
		r.render(b, e)
		b.WriteByte(')')
		return
	}
	r.render(b, e)
}

func (r Renderer) aliasColumns(l *SelectList) bool {
	if r.AliasMode != AliasNested {
		return true
	}
	q, ok := l.Parent().(*QuerySpec)
	if !ok {
		return false
	}
	_, nested := q.Parent().(*SubqueryRef)
	return nested
}
