package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mbrukman/sqlsmith/internal/relmodel"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows a future algorithm migration.
const (
	DomainStatement = "sqlsmith/statement/v1"
	DomainCatalog   = "sqlsmith/catalog/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StatementID computes the content-addressed ID of a generated statement.
// Two runs that render the same text at the same position still get
// distinct IDs because the run ID is part of the hashed object.
func StatementID(runID string, seq int64, sql string) (string, error) {
	obj := Object{
		"run_id": String(runID),
		"seq":    Int(seq),
		"sql":    String(sql),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("StatementID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainStatement, canonical), nil
}

// CatalogHash fingerprints a catalog. Table, column and operator order are
// part of the hash because generation draws from them by index.
func CatalogHash(cat *relmodel.Catalog) (string, error) {
	tables := make(Array, 0, len(cat.Tables))
	for _, t := range cat.Tables {
		cols := make(Array, 0, len(t.Columns))
		for _, c := range t.Columns {
			cols = append(cols, Object{"name": String(c.Name), "type": String(c.Type)})
		}
		tables = append(tables, Object{
			"name":       String(t.Name),
			"schema":     String(t.Schema),
			"base_table": Bool(t.IsBaseTable),
			"columns":    cols,
		})
	}

	ops := make(Array, 0, len(cat.Operators))
	for _, o := range cat.Operators {
		ops = append(ops, Object{
			"name":   String(o.Name),
			"left":   String(o.Left),
			"right":  String(o.Right),
			"result": String(o.Result),
		})
	}

	canonical, err := MarshalCanonical(Object{"tables": tables, "operators": ops})
	if err != nil {
		return "", fmt.Errorf("CatalogHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCatalog, canonical), nil
}

// MustStatementID is like StatementID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustStatementID(runID string, seq int64, sql string) string {
	id, err := StatementID(runID, seq, sql)
	if err != nil {
		panic(err)
	}
	return id
}
