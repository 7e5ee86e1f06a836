package changelog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/weaveform/weave/internal/dbstore"
	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS changelog_entries (
	record_id   TEXT PRIMARY KEY,
	file_id     TEXT NOT NULL,
	offset      BIGINT NOT NULL,
	change_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS changelog_entries_file_offset ON changelog_entries (file_id, offset);

CREATE TABLE IF NOT EXISTS changelog_cursors (
	file_id      TEXT PRIMARY KEY,
	latest_offset BIGINT NOT NULL
);
`

// DuckStore is the durable mirror of the change log: it is authoritative
// for offset assignment and lets every other component replay a file's
// history without a live broker, the way the tests in original_source's
// test_submit fixtures replay a file from a saved snapshot.
type DuckStore struct {
	db *sql.DB
}

func NewDuckStore(db *sql.DB) *DuckStore {
	return &DuckStore{db: db}
}

func (s *DuckStore) Ensure(ctx context.Context) error {
	return dbstore.Ensure(ctx, s.db, schemaDDL)
}

func (s *DuckStore) NextOffsets(ctx context.Context, file ids.FileId, n int) (ids.Offset, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("changelog: begin tx: %w", err)
	}
	defer tx.Rollback()

	var current int64
	err = tx.QueryRowContext(ctx,
		`SELECT latest_offset FROM changelog_cursors WHERE file_id = $1`, file.String(),
	).Scan(&current)
	switch {
	case err == sql.ErrNoRows:
		current = 0
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO changelog_cursors (file_id, latest_offset) VALUES ($1, $2)`,
			file.String(), int64(n)); err != nil {
			return 0, fmt.Errorf("changelog: insert cursor: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("changelog: read cursor: %w", err)
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE changelog_cursors SET latest_offset = $1 WHERE file_id = $2`,
			current+int64(n), file.String()); err != nil {
			return 0, fmt.Errorf("changelog: update cursor: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("changelog: commit cursor: %w", err)
	}
	return ids.Offset(current + 1), nil
}

func (s *DuckStore) Append(ctx context.Context, file ids.FileId, entries []wire.OffsetedChange) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("changelog: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		payload, err := json.Marshal(e.Change)
		if err != nil {
			return fmt.Errorf("changelog: marshal change: %w", err)
		}
		recordID := ulid.Make().String()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO changelog_entries (record_id, file_id, offset, change_json) VALUES ($1, $2, $3, $4)`,
			recordID, file.String(), int64(e.Offset), string(payload),
		); err != nil {
			return fmt.Errorf("changelog: insert entry: %w", err)
		}
	}
	return tx.Commit()
}

func (s *DuckStore) Since(ctx context.Context, file ids.FileId, after ids.Offset, limit int) ([]wire.OffsetedChange, error) {
	query := `SELECT offset, change_json FROM changelog_entries WHERE file_id = $1 AND offset > $2 ORDER BY offset ASC`
	args := []any{file.String(), int64(after)}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("changelog: query since: %w", err)
	}
	defer rows.Close()

	var out []wire.OffsetedChange
	for rows.Next() {
		var offset int64
		var payload string
		if err := rows.Scan(&offset, &payload); err != nil {
			return nil, fmt.Errorf("changelog: scan entry: %w", err)
		}
		var change wire.ChangeMsg
		if err := json.Unmarshal([]byte(payload), &change); err != nil {
			return nil, fmt.Errorf("changelog: unmarshal change: %w", err)
		}
		out = append(out, wire.OffsetedChange{Offset: ids.Offset(offset), Change: change})
	}
	return out, rows.Err()
}

func (s *DuckStore) LatestOffset(ctx context.Context, file ids.FileId) (ids.Offset, error) {
	var latest int64
	err := s.db.QueryRowContext(ctx,
		`SELECT latest_offset FROM changelog_cursors WHERE file_id = $1`, file.String(),
	).Scan(&latest)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("changelog: latest offset: %w", err)
	}
	return ids.Offset(latest), nil
}
