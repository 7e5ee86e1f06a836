// Package dbstore holds the small pieces of database/sql plumbing shared
// by every component's DuckDB-backed store: opening a handle against
// STORE_URL and applying an embedded schema.
package dbstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"
)

// Open opens a DuckDB database at path, which may be a file path or
// ":memory:" for ephemeral stores used in tests and single-node demos.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("dbstore: open %q: %w", path, err)
	}
	return db, nil
}

// Ensure applies a schema DDL script, idempotently (every statement uses
// CREATE TABLE/INDEX IF NOT EXISTS).
func Ensure(ctx context.Context, db *sql.DB, ddl string) error {
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("dbstore: schema: %w", err)
	}
	return nil
}
