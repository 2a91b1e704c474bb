package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/mbrukman/sqlsmith/internal/relmodel"
)

// CompileCatalog parses a CUE value into a Catalog. Uses the CUE SDK's Go
// API directly.
//
// The expected shape is:
//
//	table: T1: {
//		schema: "public" // optional
//		columns: {
//			a: "integer"
//			b: bool
//		}
//	}
//	operator: [
//		{name: "=", left: "integer", right: "integer", result: "bool"},
//	]
//
// Column order follows declaration order. A column type is either a type
// name string or a CUE kind (int, bool, string, number).
func CompileCatalog(v cue.Value) (*relmodel.Catalog, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	cat := &relmodel.Catalog{}

	tables, err := parseTables(v)
	if err != nil {
		return nil, err
	}
	cat.Tables = tables

	ops, err := parseOperators(v)
	if err != nil {
		return nil, err
	}
	cat.Operators = ops

	return cat, nil
}

func parseTables(v cue.Value) ([]relmodel.Table, error) {
	var tables []relmodel.Table

	tableVal := v.LookupPath(cue.ParsePath("table"))
	if !tableVal.Exists() {
		return tables, nil
	}

	iter, err := tableVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		t := relmodel.Table{IsBaseTable: true}
		t.Name = iter.Selector().Unquoted()
		tv := iter.Value()

		if sv := tv.LookupPath(cue.ParsePath("schema")); sv.Exists() {
			schema, err := sv.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			t.Schema = schema
		}

		if bv := tv.LookupPath(cue.ParsePath("base_table")); bv.Exists() {
			base, err := bv.Bool()
			if err != nil {
				return nil, formatCUEError(err)
			}
			t.IsBaseTable = base
		}

		colsVal := tv.LookupPath(cue.ParsePath("columns"))
		if !colsVal.Exists() {
			return nil, &CompileError{
				Field:   "columns",
				Message: fmt.Sprintf("table %s: columns are required", t.Name),
				Pos:     tv.Pos(),
			}
		}
		colIter, err := colsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for colIter.Next() {
			typ, err := extractTypeName(colIter.Value())
			if err != nil {
				return nil, err
			}
			t.Columns = append(t.Columns, relmodel.Column{
				Name: colIter.Selector().Unquoted(),
				Type: typ,
			})
		}
		if len(t.Columns) == 0 {
			return nil, &CompileError{
				Field:   "columns",
				Message: fmt.Sprintf("table %s: at least one column is required", t.Name),
				Pos:     colsVal.Pos(),
			}
		}

		tables = append(tables, t)
	}

	return tables, nil
}

func parseOperators(v cue.Value) ([]relmodel.Op, error) {
	var ops []relmodel.Op

	opVal := v.LookupPath(cue.ParsePath("operator"))
	if !opVal.Exists() {
		return ops, nil
	}

	iter, err := opVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		ov := iter.Value()
		var op relmodel.Op

		nameVal := ov.LookupPath(cue.ParsePath("name"))
		if !nameVal.Exists() {
			return nil, &CompileError{
				Field:   "operator",
				Message: "operator name is required",
				Pos:     ov.Pos(),
			}
		}
		if op.Name, err = nameVal.String(); err != nil {
			return nil, formatCUEError(err)
		}

		for _, f := range []struct {
			field string
			dst   *relmodel.Type
		}{
			{"left", &op.Left},
			{"right", &op.Right},
			{"result", &op.Result},
		} {
			fv := ov.LookupPath(cue.ParsePath(f.field))
			if !fv.Exists() {
				return nil, &CompileError{
					Field:   "operator",
					Message: fmt.Sprintf("operator %s: %s type is required", op.Name, f.field),
					Pos:     ov.Pos(),
				}
			}
			if *f.dst, err = extractTypeName(fv); err != nil {
				return nil, err
			}
		}

		ops = append(ops, op)
	}

	return ops, nil
}

// extractTypeName resolves a column or operand type. A concrete string is
// a type name; an incomplete value is mapped by kind.
func extractTypeName(v cue.Value) (relmodel.Type, error) {
	if s, err := v.String(); err == nil {
		if s == "" {
			return "", &CompileError{Field: "type", Message: "type name is empty", Pos: v.Pos()}
		}
		return relmodel.NormalizeType(s), nil
	}

	switch v.IncompleteKind() {
	case cue.IntKind:
		return relmodel.Integer, nil
	case cue.BoolKind:
		return relmodel.Bool, nil
	case cue.StringKind:
		return relmodel.Text, nil
	case cue.FloatKind, cue.NumberKind:
		return relmodel.Numeric, nil
	default:
		return "", &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
