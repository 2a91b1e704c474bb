// Package target is the engine under test.
//
// A Target wraps a database/sql connection for one of the supported
// drivers, executes generated statements under a per-statement timeout,
// and turns every engine error into an ir.Outcome with a portable error
// class plus the engine's native code:
//
//	sqlite3   mattn/go-sqlite3, extended result code
//	postgres  lib/pq, SQLSTATE
//	pgx       jackc/pgx stdlib, SQLSTATE
//	mysql     go-sql-driver/mysql, server error number
//
// Introspect reads a live catalog (tables, columns, and for postgres the
// boolean operators) so generation can run against an existing schema.
package target
