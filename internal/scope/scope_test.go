package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbrukman/sqlsmith/internal/relmodel"
)

var t1 = relmodel.Relation{Columns: []relmodel.Column{
	{Name: "a", Type: relmodel.Integer},
	{Name: "b", Type: relmodel.Bool},
}}

func TestScope_RegisterResolve(t *testing.T) {
	s := New(nil)
	assert.Empty(t, s.Resolve(relmodel.Any))

	s.Register("t1", t1)

	all := s.Resolve(relmodel.Any)
	require.Len(t, all, 2)
	assert.Equal(t, ColumnRef{Table: "t1", Column: "a", Type: relmodel.Integer}, all[0])
	assert.Equal(t, "t1.b", all[1].Ident())

	ints := s.Resolve(relmodel.Integer)
	require.Len(t, ints, 1)
	assert.Equal(t, "a", ints[0].Column)

	assert.Empty(t, s.Resolve(relmodel.Text))
}

func TestScope_PushInheritsAndPopDiscards(t *testing.T) {
	root := New(nil)
	root.Register("t1", t1)

	child := root.Push()
	assert.Equal(t, 1, child.Level())
	child.Register("t2", relmodel.Relation{Columns: []relmodel.Column{{Name: "x", Type: relmodel.Integer}}})

	refs := child.Resolve(relmodel.Integer)
	require.Len(t, refs, 2)
	assert.Equal(t, "t1.a", refs[0].Ident(), "ancestors resolve first")
	assert.Equal(t, "t2.x", refs[1].Ident())
	assert.Equal(t, []string{"t1", "t2"}, child.Aliases())

	back := child.Pop()
	assert.Same(t, root, back)
	assert.Len(t, back.Resolve(relmodel.Integer), 1)
	assert.Same(t, root, root.Pop())
}

func TestScope_Tables(t *testing.T) {
	cat := &relmodel.Catalog{Tables: []relmodel.Table{{NamedRelation: relmodel.NamedRelation{Name: "T1", Relation: t1}}}}
	s := New(cat).Push().Push()

	require.Len(t, s.Tables(), 1)
	assert.Same(t, cat, s.Catalog())
	assert.Empty(t, New(nil).Tables())
}
