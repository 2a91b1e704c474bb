package grammar

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbrukman/sqlsmith/internal/relmodel"
	"github.com/mbrukman/sqlsmith/internal/scope"
)

func table(name string, cols ...relmodel.Column) relmodel.Table {
	return relmodel.Table{
		NamedRelation: relmodel.NamedRelation{Name: name, Relation: relmodel.Relation{Columns: cols}},
		IsBaseTable:   true,
	}
}

func col(name string, t relmodel.Type) relmodel.Column {
	return relmodel.Column{Name: name, Type: t}
}

// singleTable is T1(a integer, b bool).
func singleTable() *relmodel.Catalog {
	c := &relmodel.Catalog{Tables: []relmodel.Table{
		table("T1", col("a", relmodel.Integer), col("b", relmodel.Bool)),
	}}
	return c.WithDefaultOperators()
}

func richCatalog() *relmodel.Catalog {
	c := &relmodel.Catalog{Tables: []relmodel.Table{
		table("T1", col("a", relmodel.Integer), col("b", relmodel.Bool)),
		table("T2", col("x", relmodel.Integer), col("y", relmodel.Text), col("z", relmodel.BigInt)),
		table("T3", col("name", relmodel.Text)),
	}}
	return c.WithDefaultOperators()
}

func richConfig(seed int64) Config {
	cfg := DefaultConfig()
	cfg.Seed = seed
	cfg.MaxSubqueries = 6
	cfg.MaxFromItems = 3
	return cfg
}

func newTestSession(t *testing.T, cat *relmodel.Catalog, cfg Config) *Session {
	t.Helper()
	s, err := NewSession(cat, cfg)
	require.NoError(t, err)
	return s
}

func TestGenerate_ZeroBudgetSingleTable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSubqueries = 0
	cfg.Seed = 42
	s := newTestSession(t, singleTable(), cfg)

	q, err := s.Generate()
	require.NoError(t, err)

	require.Len(t, q.From.Refs, 1)
	ref, ok := q.From.Refs[0].(*NamedRef)
	require.True(t, ok, "only named relations are selectable without budget, got %T", q.From.Refs[0])
	assert.Equal(t, "T1", ref.Table.Name)
	assert.Equal(t, "t1", ref.Alias)
	assert.Equal(t, relmodel.Bool, q.Where.Type())

	sql := Render(q)
	assert.Regexp(t, regexp.MustCompile(`^SELECT (ALL |DISTINCT )?.+ AS c0.* FROM T1 AS t1 WHERE .+`), sql)
	if q.Limit != nil {
		assert.True(t, strings.HasSuffix(sql, fmt.Sprintf(" LIMIT %d", q.Limit.Count)))
	}
}

func TestGenerate_EmptyCatalogExhausted(t *testing.T) {
	s := newTestSession(t, &relmodel.Catalog{}, DefaultConfig())

	q, err := s.Generate()
	require.Error(t, err)
	assert.Nil(t, q, "no partial tree is exposed")
	assert.True(t, IsExhausted(err))

	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "table_ref", ge.Production)
	assert.Equal(t, 0, s.Stats().Statements)
}

func TestGenerate_AliasesContinueAcrossStatements(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSubqueries = 0
	s := newTestSession(t, singleTable(), cfg)

	first, err := s.Generate()
	require.NoError(t, err)
	second, err := s.Generate()
	require.NoError(t, err)

	assert.Equal(t, "t1", first.From.Refs[0].Ident())
	assert.Equal(t, "t2", second.From.Refs[0].Ident())
	assert.Equal(t, 2, s.Stats().Statements)
	assert.Equal(t, int64(2), s.Stats().Aliases)
}

func TestGenerate_Deterministic(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		a := newTestSession(t, richCatalog(), richConfig(seed))
		b := newTestSession(t, richCatalog(), richConfig(seed))

		for i := 0; i < 10; i++ {
			qa, err := a.Generate()
			require.NoError(t, err)
			qb, err := b.Generate()
			require.NoError(t, err)
			require.Equal(t, Render(qa), Render(qb), "seed %d statement %d", seed, i)
		}
	}
}

func TestGenerate_Invariants(t *testing.T) {
	for seed := int64(1); seed <= 40; seed++ {
		cfg := richConfig(seed)
		s := newTestSession(t, richCatalog(), cfg)

		aliases := make(map[string]bool)
		subqueries := 0
		for i := 0; i < 15; i++ {
			q, err := s.Generate()
			require.NoError(t, err, "seed %d", seed)

			rels := make(map[string]relmodel.Relation)
			Walk(q, func(p Production) bool {
				switch n := p.(type) {
				case TableRef:
					assert.False(t, aliases[n.Ident()], "seed %d: alias %s reused", seed, n.Ident())
					aliases[n.Ident()] = true
				}
				switch n := p.(type) {
				case *NamedRef:
					rels[n.Alias] = n.Table.Relation
				case *SubqueryRef:
					subqueries++
					assert.Equal(t, n.Query.Select.Derived(), n.Columns())
					rels[n.Alias] = n.Columns()
				case *SelectList:
					require.NotEmpty(t, n.Exprs)
					require.Len(t, n.Derived().Columns, len(n.Exprs))
					for i, e := range n.Exprs {
						assert.Equal(t, e.Type(), n.Derived().Columns[i].Type)
					}
				case *Comparison:
					assert.Equal(t, n.Op.Left, n.LHS.Type(), "seed %d: %s", seed, Render(n))
					assert.Equal(t, n.Op.Right, n.RHS.Type(), "seed %d: %s", seed, Render(n))
				case *QuerySpec:
					require.NotNil(t, n.Where)
					assert.Equal(t, relmodel.Bool, n.Where.Type())
				}
				return true
			})

			// Every column reference names a column of a generated relation.
			Walk(q, func(p Production) bool {
				if c, ok := p.(*ColumnRef); ok {
					rel, found := rels[c.Ref.Table]
					require.True(t, found, "seed %d: unknown alias in %s", seed, Render(c))
					assert.Contains(t, rel.Columns, relmodel.Column{Name: c.Ref.Column, Type: c.Ref.Type})
				}
				return true
			})
		}

		st := s.Stats()
		assert.LessOrEqual(t, st.Subqueries, cfg.MaxSubqueries, "seed %d", seed)
		assert.Equal(t, st.Subqueries, subqueries, "seed %d", seed)
		assert.Equal(t, int64(len(aliases)), st.Aliases, "seed %d", seed)
	}
}

func TestGenerate_BudgetIsRunWide(t *testing.T) {
	cfg := richConfig(7)
	cfg.MaxSubqueries = 2
	cfg.Weights.Subquery = 50
	s := newTestSession(t, richCatalog(), cfg)

	for i := 0; i < 30; i++ {
		_, err := s.Generate()
		require.NoError(t, err)
	}
	assert.Equal(t, 2, s.Stats().Subqueries, "budget is consumed once, not per statement")
}

func TestGenerate_ParentLinks(t *testing.T) {
	s := newTestSession(t, richCatalog(), richConfig(3))
	q, err := s.Generate()
	require.NoError(t, err)
	assert.Nil(t, q.Parent())

	Walk(q, func(p Production) bool {
		Walk(p, func(child Production) bool {
			if child == p {
				return true
			}
			// every direct child points back at p
			if child.Parent() == p {
				return false
			}
			t.Errorf("%T under %T has parent %T", child, p, child.Parent())
			return false
		})
		return true
	})
}

func TestNewValueExpr_RequestedType(t *testing.T) {
	s := newTestSession(t, richCatalog(), richConfig(11))
	sc := scope.New(richCatalog())
	sc.Register("t1", richCatalog().Tables[0].Relation)
	sc.Register("t2", richCatalog().Tables[1].Relation)

	for _, want := range []relmodel.Type{relmodel.Integer, relmodel.Bool, relmodel.Text, relmodel.BigInt} {
		for i := 0; i < 50; i++ {
			e, err := newValueExpr(s, nil, sc, want)
			require.NoError(t, err)
			assert.Equal(t, want, e.Type(), Render(e))
		}
	}
}

func TestNewColumnRef_FallsBackToLiteral(t *testing.T) {
	s := newTestSession(t, singleTable(), DefaultConfig())
	sc := scope.New(singleTable())

	e, err := newColumnRef(s, nil, sc, relmodel.Bool)
	require.NoError(t, err)
	assert.IsType(t, &BoolLit{}, e)

	e, err = newColumnRef(s, nil, sc, relmodel.BigInt)
	require.NoError(t, err)
	require.IsType(t, &Const{}, e)
	assert.Equal(t, relmodel.BigInt, e.Type())
	assert.Less(t, e.(*Const).Value, DefaultConfig().ConstMax)

	_, err = newColumnRef(s, nil, sc, relmodel.Text)
	require.Error(t, err)
	assert.True(t, IsExhausted(err))
}

func TestNewComparison_WithoutOperatorsFallsBack(t *testing.T) {
	cat := &relmodel.Catalog{Tables: singleTable().Tables}
	s := newTestSession(t, cat, DefaultConfig())

	e, err := newComparison(s, nil, scope.New(cat), relmodel.Bool)
	require.NoError(t, err)
	assert.IsType(t, &BoolLit{}, e)
}

func TestNewComparison_SkipsUnproducibleOperands(t *testing.T) {
	cat := singleTable()
	cat.Operators = []relmodel.Op{
		{Name: "~~", Left: relmodel.Text, Right: relmodel.Text, Result: relmodel.Bool},
		{Name: "=", Left: relmodel.Integer, Right: relmodel.Integer, Result: relmodel.Bool},
	}
	s := newTestSession(t, cat, DefaultConfig())

	for i := 0; i < 20; i++ {
		e, err := newComparison(s, nil, scope.New(cat), relmodel.Bool)
		require.NoError(t, err)
		c, ok := e.(*Comparison)
		require.True(t, ok)
		assert.Equal(t, "=", c.Op.Name, "text operands cannot be produced without text columns")
	}
}

func TestNewTableRef_DepthCapsRecursion(t *testing.T) {
	cfg := richConfig(5)
	cfg.MaxDepth = 1
	cfg.Weights.Subquery = 100
	cfg.Weights.Join = 100
	s := newTestSession(t, richCatalog(), cfg)

	for i := 0; i < 20; i++ {
		q, err := s.Generate()
		require.NoError(t, err)
		Walk(q, func(p Production) bool {
			if sub, ok := p.(*SubqueryRef); ok {
				Walk(sub.Query.From, func(inner Production) bool {
					switch inner.(type) {
					case *SubqueryRef, *JoinRef:
						t.Errorf("recursive reference below depth cap: %s", Render(q))
					}
					return true
				})
			}
			return true
		})
	}
}

func TestGenerate_SearchConditionIsComparison(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		s := newTestSession(t, richCatalog(), richConfig(seed))
		for i := 0; i < 5; i++ {
			q, err := s.Generate()
			require.NoError(t, err)
			_, ok := q.Where.(*Comparison)
			assert.True(t, ok, "seed %d: WHERE %s", seed, Render(q.Where))
		}
	}
}

func TestGenerate_SearchConditionWithoutBoolOperators(t *testing.T) {
	cat := &relmodel.Catalog{
		Tables:    []relmodel.Table{table("T3", col("name", relmodel.Text))},
		Operators: []relmodel.Op{{Name: "||", Left: relmodel.Text, Right: relmodel.Text, Result: relmodel.Text}},
	}
	cfg := DefaultConfig()
	cfg.MaxSubqueries = 0
	s := newTestSession(t, cat, cfg)

	q, err := s.Generate()
	require.NoError(t, err)
	assert.IsType(t, &BoolLit{}, q.Where)
	assert.Contains(t, Render(q), " WHERE true")
}

func TestGenerate_SearchConditionFollowsWeightsWhenComparisonsDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.Comparison = 0
	for seed := int64(1); seed <= 20; seed++ {
		cfg.Seed = seed
		s := newTestSession(t, singleTable(), cfg)
		q, err := s.Generate()
		require.NoError(t, err)
		Walk(q, func(p Production) bool {
			_, isCmp := p.(*Comparison)
			assert.False(t, isCmp, "seed %d: %s", seed, Render(q))
			return true
		})
	}
}
