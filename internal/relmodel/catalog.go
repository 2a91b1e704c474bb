package relmodel

import (
	"errors"
	"fmt"
	"sort"
)

// Catalog is the read-only description of relations and operators a run
// draws from.
type Catalog struct {
	Tables    []Table `json:"tables" yaml:"tables"`
	Operators []Op    `json:"operators" yaml:"operators"`
}

// OperatorsReturning returns the operators whose result type satisfies
// want, in catalog order.
func (c *Catalog) OperatorsReturning(want Type) []Op {
	var out []Op
	for _, op := range c.Operators {
		if op.Result.Matches(want) {
			out = append(out, op)
		}
	}
	return out
}

// Types returns every type that appears in a column or operator
// signature, sorted.
func (c *Catalog) Types() []Type {
	seen := make(map[Type]bool)
	for _, t := range c.Tables {
		for _, col := range t.Columns {
			seen[col.Type] = true
		}
	}
	for _, op := range c.Operators {
		seen[op.Left] = true
		seen[op.Right] = true
		seen[op.Result] = true
	}
	out := make([]Type, 0, len(seen))
	for t := range seen {
		if t != Any {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Table looks up a table by its identifier.
func (c *Catalog) Table(ident string) (Table, bool) {
	for _, t := range c.Tables {
		if t.Ident() == ident {
			return t, true
		}
	}
	return Table{}, false
}

// Validate checks structural consistency: named tables with at least one
// column, unique identifiers, typed columns and fully typed operators.
// An empty catalog is valid; generating from it fails later.
func (c *Catalog) Validate() error {
	var errs []error
	idents := make(map[string]bool)
	for i, t := range c.Tables {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("table[%d]: name is required", i))
			continue
		}
		if idents[t.Ident()] {
			errs = append(errs, fmt.Errorf("table %s: duplicate identifier", t.Ident()))
		}
		idents[t.Ident()] = true
		if len(t.Columns) == 0 {
			errs = append(errs, fmt.Errorf("table %s: at least one column is required", t.Ident()))
		}
		cols := make(map[string]bool)
		for _, col := range t.Columns {
			if col.Name == "" || col.Type == Any {
				errs = append(errs, fmt.Errorf("table %s: column needs a name and a type", t.Ident()))
				continue
			}
			if cols[col.Name] {
				errs = append(errs, fmt.Errorf("table %s: duplicate column %s", t.Ident(), col.Name))
			}
			cols[col.Name] = true
		}
	}
	for i, op := range c.Operators {
		if op.Name == "" || op.Left == Any || op.Right == Any || op.Result == Any {
			errs = append(errs, fmt.Errorf("operator[%d]: name and all three types are required", i))
		}
	}
	return errors.Join(errs...)
}

// WithDefaultOperators returns c unchanged when it declares operators,
// otherwise a copy carrying DefaultOperators for its column types.
func (c *Catalog) WithDefaultOperators() *Catalog {
	if len(c.Operators) > 0 {
		return c
	}
	out := &Catalog{Tables: c.Tables}
	out.Operators = DefaultOperators(c.Types())
	return out
}

// DefaultOperators returns the comparison operators every target engine
// understands: the six orderings for numeric types and equality for
// everything else. Each returns bool.
func DefaultOperators(types []Type) []Op {
	var ops []Op
	for _, t := range types {
		names := []string{"=", "<>"}
		if t.IsNumeric() {
			names = []string{"=", "<>", "<", ">", "<=", ">="}
		}
		for _, n := range names {
			ops = append(ops, Op{Name: n, Left: t, Right: t, Result: Bool})
		}
	}
	return ops
}
