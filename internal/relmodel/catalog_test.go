package relmodel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return &Catalog{
		Tables: []Table{
			{NamedRelation: NamedRelation{Name: "T1", Relation: Relation{Columns: []Column{
				{Name: "a", Type: Integer},
				{Name: "b", Type: Bool},
			}}}, IsBaseTable: true},
		},
		Operators: []Op{
			{Name: "=", Left: Integer, Right: Integer, Result: Bool},
			{Name: "+", Left: Integer, Right: Integer, Result: Integer},
		},
	}
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"INTEGER", Integer},
		{"int4", Integer},
		{"boolean", Bool},
		{"character varying(20)", Text},
		{"numeric(10, 2)", Numeric},
		{"int8", BigInt},
		{" Point ", Type("point")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeType(tt.in))
		})
	}
}

func TestType_Literals(t *testing.T) {
	assert.True(t, Integer.HasLiteral())
	assert.True(t, Bool.HasLiteral())
	assert.False(t, Bool.IsNumeric())
	assert.False(t, Text.HasLiteral())
	assert.True(t, Text.Matches(Any))
	assert.False(t, Text.Matches(Integer))
	assert.Equal(t, "any", Any.String())
}

func TestDerive(t *testing.T) {
	rel := Derive([]Type{Integer, Integer, Integer})

	want := Relation{Columns: []Column{
		{Name: "c0", Type: Integer},
		{Name: "c1", Type: Integer},
		{Name: "c2", Type: Integer},
	}}
	if diff := cmp.Diff(want, rel); diff != "" {
		t.Errorf("Derive mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalog_OperatorsReturning(t *testing.T) {
	c := testCatalog()

	ops := c.OperatorsReturning(Bool)
	require.Len(t, ops, 1)
	assert.Equal(t, "=", ops[0].Name)

	assert.Len(t, c.OperatorsReturning(Any), 2)
	assert.Empty(t, c.OperatorsReturning(Text))
}

func TestCatalog_Types(t *testing.T) {
	assert.Equal(t, []Type{Bool, Integer}, testCatalog().Types())
}

func TestCatalog_Table(t *testing.T) {
	c := testCatalog()
	c.Tables = append(c.Tables, Table{NamedRelation: NamedRelation{Name: "T2"}, Schema: "s"})

	tbl, ok := c.Table("s.T2")
	require.True(t, ok)
	assert.Equal(t, "T2", tbl.Name)

	_, ok = c.Table("T2")
	assert.False(t, ok)
}

func TestCatalog_Validate(t *testing.T) {
	require.NoError(t, testCatalog().Validate())
	require.NoError(t, (&Catalog{}).Validate())

	bad := testCatalog()
	bad.Tables = append(bad.Tables, bad.Tables[0])
	bad.Tables = append(bad.Tables, Table{NamedRelation: NamedRelation{Name: "empty"}})
	bad.Operators = append(bad.Operators, Op{Name: "<"})

	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate identifier")
	assert.Contains(t, err.Error(), "at least one column")
	assert.Contains(t, err.Error(), "operator[2]")
}

func TestCatalog_WithDefaultOperators(t *testing.T) {
	c := testCatalog()
	assert.Same(t, c, c.WithDefaultOperators())

	c.Operators = nil
	withOps := c.WithDefaultOperators()
	assert.NotSame(t, c, withOps)
	assert.Nil(t, c.Operators, "original catalog is not modified")

	// bool: = <>; integer: six orderings
	assert.Len(t, withOps.Operators, 8)
	for _, op := range withOps.Operators {
		assert.Equal(t, Bool, op.Result)
		assert.Equal(t, op.Left, op.Right)
	}
}
