// Package relmodel describes the catalog a generation run draws from:
// relations with ordered, typed columns and the operators available
// between types.
//
// The same Relation shape is used for catalog tables and for relations
// derived from a select list, so a subquery's exposed columns can be
// consumed exactly like a table's.
//
// A Catalog is read-only for the duration of a run. Nothing in this
// package mutates a Catalog after construction.
package relmodel
