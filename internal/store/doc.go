// Package store provides SQLite-backed durable storage for generation runs.
//
// The store is an append-only log with:
//   - Runs: seed, catalog hash and grammar config of one generation run
//   - Statements: every generated statement with its execution outcome
//
// A run row carries everything needed to regenerate its statements, so a
// failing statement can be reproduced from the log alone.
//
// # Deterministic reads
//
// All statement queries use ORDER BY seq ASC, id COLLATE BINARY ASC so
// identical logs read back identically.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Statement IDs are computed by ir.StatementID (canonical JSON, SHA-256
// with domain separation).
package store
