package target

import (
	"context"
	"fmt"

	"github.com/mbrukman/sqlsmith/internal/relmodel"
)

// Introspect reads the live catalog: every user table and view with its
// columns in declaration order. Postgres targets also contribute their
// boolean binary operators; other engines get none, and callers fall back
// to relmodel.DefaultOperators.
func (t *Target) Introspect(ctx context.Context) (*relmodel.Catalog, error) {
	var (
		cat *relmodel.Catalog
		err error
	)
	switch t.driver {
	case DriverSQLite:
		cat, err = t.introspectSQLite(ctx)
	case DriverPostgres, DriverPgx:
		cat, err = t.introspectInformationSchema(ctx, `
			SELECT c.table_schema, c.table_name, t.table_type = 'BASE TABLE', c.column_name, c.data_type
			FROM information_schema.columns c
			JOIN information_schema.tables t
			  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
			WHERE c.table_schema NOT IN ('pg_catalog', 'information_schema')
			ORDER BY c.table_schema, c.table_name, c.ordinal_position
		`)
		if err == nil {
			err = t.introspectPostgresOperators(ctx, cat)
		}
	case DriverMySQL:
		cat, err = t.introspectInformationSchema(ctx, `
			SELECT c.table_schema, c.table_name, t.table_type = 'BASE TABLE', c.column_name, c.data_type
			FROM information_schema.columns c
			JOIN information_schema.tables t
			  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
			WHERE c.table_schema = DATABASE()
			ORDER BY c.table_name, c.ordinal_position
		`)
	default:
		return nil, fmt.Errorf("introspect: unsupported driver %q", t.driver)
	}
	if err != nil {
		return nil, fmt.Errorf("introspect %s: %w", t.driver, err)
	}
	return cat, nil
}

func (t *Target) introspectSQLite(ctx context.Context) (*relmodel.Catalog, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT name, type = 'table'
		FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	var tables []relmodel.Table
	for rows.Next() {
		tbl := relmodel.Table{}
		if err := rows.Scan(&tbl.Name, &tbl.IsBaseTable); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, tbl)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	rows.Close()

	// The pool is capped at one connection for sqlite, so columns are read
	// only after the table cursor is closed.
	for i := range tables {
		cols, err := t.sqliteColumns(ctx, tables[i].Name)
		if err != nil {
			return nil, err
		}
		tables[i].Columns = cols
	}
	return &relmodel.Catalog{Tables: tables}, nil
}

func (t *Target) sqliteColumns(ctx context.Context, table string) ([]relmodel.Column, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT name, type FROM pragma_table_info(?) ORDER BY cid
	`, table)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []relmodel.Column
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		ct := relmodel.NormalizeType(typ)
		if ct == relmodel.Any {
			// Undeclared columns have BLOB affinity.
			ct = "blob"
		}
		cols = append(cols, relmodel.Column{Name: name, Type: ct})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return cols, nil
}

// introspectInformationSchema groups (schema, table, base, column, type)
// rows, which must arrive ordered by table, into catalog tables.
func (t *Target) introspectInformationSchema(ctx context.Context, query string) (*relmodel.Catalog, error) {
	rows, err := t.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer rows.Close()

	cat := &relmodel.Catalog{}
	for rows.Next() {
		var schema, table, column, typ string
		var base bool
		if err := rows.Scan(&schema, &table, &base, &column, &typ); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		n := len(cat.Tables)
		if n == 0 || cat.Tables[n-1].Schema != schema || cat.Tables[n-1].Name != table {
			tbl := relmodel.Table{Schema: schema, IsBaseTable: base}
			tbl.Name = table
			cat.Tables = append(cat.Tables, tbl)
			n++
		}
		cat.Tables[n-1].Columns = append(cat.Tables[n-1].Columns, relmodel.Column{
			Name: column,
			Type: relmodel.NormalizeType(typ),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return cat, nil
}

// introspectPostgresOperators adds the binary boolean operators whose
// operand types both occur in cat.
func (t *Target) introspectPostgresOperators(ctx context.Context, cat *relmodel.Catalog) error {
	known := map[relmodel.Type]bool{}
	for _, typ := range cat.Types() {
		known[typ] = true
	}

	rows, err := t.db.QueryContext(ctx, `
		SELECT oprname,
		       format_type(oprleft, NULL),
		       format_type(oprright, NULL),
		       format_type(oprresult, NULL)
		FROM pg_catalog.pg_operator
		WHERE oprkind = 'b' AND oprresult = 'boolean'::regtype
		ORDER BY oid
	`)
	if err != nil {
		return fmt.Errorf("list operators: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, left, right, result string
		if err := rows.Scan(&name, &left, &right, &result); err != nil {
			return fmt.Errorf("scan operator: %w", err)
		}
		op := relmodel.Op{
			Name:   name,
			Left:   relmodel.NormalizeType(left),
			Right:  relmodel.NormalizeType(right),
			Result: relmodel.NormalizeType(result),
		}
		if known[op.Left] && known[op.Right] {
			cat.Operators = append(cat.Operators, op)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate operators: %w", err)
	}
	return nil
}
