package objectcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/weaveform/weave/internal/dbstore"
	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS objectcache_history (
	file_id     TEXT NOT NULL,
	obj_id      TEXT NOT NULL,
	offset      BIGINT NOT NULL,
	change_json TEXT NOT NULL,
	PRIMARY KEY (file_id, obj_id, offset)
);
CREATE INDEX IF NOT EXISTS objectcache_history_lookup ON objectcache_history (file_id, obj_id, offset DESC);

CREATE TABLE IF NOT EXISTS objectcache_alive (
	file_id TEXT NOT NULL,
	obj_id  TEXT NOT NULL,
	PRIMARY KEY (file_id, obj_id)
);

CREATE TABLE IF NOT EXISTS objectcache_cursors (
	file_id       TEXT PRIMARY KEY,
	latest_offset BIGINT NOT NULL
);
`

// DuckStore is the durable, point-in-time-queryable mirror of C2's
// object history, indexed for a newest-at-or-before scan per (file,obj).
type DuckStore struct {
	db *sql.DB
}

func NewDuckStore(db *sql.DB) *DuckStore {
	return &DuckStore{db: db}
}

func (s *DuckStore) Ensure(ctx context.Context) error {
	return dbstore.Ensure(ctx, s.db, schemaDDL)
}

func (s *DuckStore) Append(ctx context.Context, file ids.FileId, obj ids.ObjId, offset ids.Offset, change wire.ChangeMsg) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("objectcache: marshal change: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO objectcache_history (file_id, obj_id, offset, change_json) VALUES ($1, $2, $3, $4)`,
		file.String(), obj.String(), int64(offset), string(payload))
	return err
}

func (s *DuckStore) AtOrBefore(ctx context.Context, file ids.FileId, obj ids.ObjId, q ids.Offset) (*wire.ChangeMsg, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT change_json FROM objectcache_history
		 WHERE file_id = $1 AND obj_id = $2 AND offset <= $3
		 ORDER BY offset DESC LIMIT 1`,
		file.String(), obj.String(), int64(q),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var change wire.ChangeMsg
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		return nil, fmt.Errorf("objectcache: unmarshal change: %w", err)
	}
	return &change, nil
}

func (s *DuckStore) SetAlive(ctx context.Context, file ids.FileId, obj ids.ObjId, alive bool) error {
	if alive {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO objectcache_alive (file_id, obj_id) VALUES ($1, $2)
			 ON CONFLICT (file_id, obj_id) DO NOTHING`,
			file.String(), obj.String())
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM objectcache_alive WHERE file_id = $1 AND obj_id = $2`,
		file.String(), obj.String())
	return err
}

func (s *DuckStore) AliveIDs(ctx context.Context, file ids.FileId) ([]ids.ObjId, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT obj_id FROM objectcache_alive WHERE file_id = $1`, file.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ids.ObjId
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := ids.ParseObjId(raw)
		if err != nil {
			return nil, fmt.Errorf("objectcache: parse alive id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *DuckStore) Advance(ctx context.Context, file ids.FileId, offset ids.Offset) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO objectcache_cursors (file_id, latest_offset) VALUES ($1, $2)
		 ON CONFLICT (file_id) DO UPDATE SET latest_offset = GREATEST(objectcache_cursors.latest_offset, EXCLUDED.latest_offset)`,
		file.String(), int64(offset))
	return err
}

func (s *DuckStore) LatestOffset(ctx context.Context, file ids.FileId) (ids.Offset, error) {
	var latest int64
	err := s.db.QueryRowContext(ctx,
		`SELECT latest_offset FROM objectcache_cursors WHERE file_id = $1`, file.String(),
	).Scan(&latest)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return ids.Offset(latest), err
}
