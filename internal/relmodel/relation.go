package relmodel

import (
	"fmt"
	"strconv"
)

// Column is a named, typed column of a relation.
type Column struct {
	Name string `json:"name" yaml:"name"`
	Type Type   `json:"type" yaml:"type"`
}

// Relation is an ordered list of columns.
type Relation struct {
	Columns []Column `json:"columns" yaml:"columns"`
}

// ColumnsOf returns the columns of r whose type satisfies want.
func (r Relation) ColumnsOf(want Type) []Column {
	var out []Column
	for _, c := range r.Columns {
		if c.Type.Matches(want) {
			out = append(out, c)
		}
	}
	return out
}

// DerivedColumnName is the positional name given to the i-th column of a
// derived relation: c0, c1, ...
func DerivedColumnName(i int) string {
	return "c" + strconv.Itoa(i)
}

// Derive builds a relation with positional column names from a list of
// column types.
func Derive(types []Type) Relation {
	cols := make([]Column, len(types))
	for i, t := range types {
		cols[i] = Column{Name: DerivedColumnName(i), Type: t}
	}
	return Relation{Columns: cols}
}

// NamedRelation is a relation that can be referenced by name.
type NamedRelation struct {
	Relation
	Name string `json:"name" yaml:"name"`
}

// Table is a catalog relation.
type Table struct {
	NamedRelation
	Schema      string `json:"schema,omitempty" yaml:"schema,omitempty"`
	IsBaseTable bool   `json:"base_table" yaml:"base_table"`
}

// Ident returns the qualified identifier used to reference the table.
func (t Table) Ident() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Op is a binary operator available in the catalog.
type Op struct {
	Name   string `json:"name" yaml:"name"`
	Left   Type   `json:"left" yaml:"left"`
	Right  Type   `json:"right" yaml:"right"`
	Result Type   `json:"result" yaml:"result"`
}

func (o Op) String() string {
	return fmt.Sprintf("%s %s %s -> %s", o.Left, o.Name, o.Right, o.Result)
}
