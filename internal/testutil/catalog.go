package testutil

import "github.com/mbrukman/sqlsmith/internal/relmodel"

// Catalog returns a two-table catalog with the default operators:
//
//	T1(a integer, b bool)
//	T2(x integer, y text)
//
// Every call returns a fresh copy.
func Catalog() *relmodel.Catalog {
	return (&relmodel.Catalog{Tables: []relmodel.Table{
		Table("T1", relmodel.Column{Name: "a", Type: relmodel.Integer}, relmodel.Column{Name: "b", Type: relmodel.Bool}),
		Table("T2", relmodel.Column{Name: "x", Type: relmodel.Integer}, relmodel.Column{Name: "y", Type: relmodel.Text}),
	}}).WithDefaultOperators()
}

// Table builds a base table.
func Table(name string, cols ...relmodel.Column) relmodel.Table {
	t := relmodel.Table{IsBaseTable: true}
	t.Name = name
	t.Columns = cols
	return t
}
