package depcache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/weaveform/weave/internal/ids"
)

// RedisStore is the durable subscriber-snapshot and dependency-list
// store, grounded in original_source's dependencies/src/cache.rs: a
// per-RefId Redis list of (offset, set) snapshots pushed with RPUSH and
// scanned backward with LRANGE for the newest entry at or before a
// query offset, and a per-object key holding only the latest
// dependency list (used purely for diffing, never queried historically).
type RedisStore struct {
	rdb *redis.Client
	// MaxSnapshotLen optionally bounds the per-RefId snapshot list
	// length, trimming the oldest entry with LPOP on overflow. Zero, the
	// default NewRedisStore sets, means unbounded.
	MaxSnapshotLen int64
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func subsKey(file ids.FileId, ref ids.RefId) string {
	return fmt.Sprintf("%s:%s:subs", file, ref)
}

func depsKey(file ids.FileId, obj ids.ObjId) string {
	return fmt.Sprintf("%s:%s:deps", file, obj)
}

type snapshotEntry struct {
	Offset ids.Offset      `json:"offset"`
	Subs   []ids.Reference `json:"subs"`
}

func (s *RedisStore) PushSnapshot(ctx context.Context, file ids.FileId, other ids.RefId, offset ids.Offset, subs []ids.Reference) error {
	payload, err := json.Marshal(snapshotEntry{Offset: offset, Subs: subs})
	if err != nil {
		return fmt.Errorf("depcache: marshal snapshot: %w", err)
	}

	key := subsKey(file, other)
	size, err := s.rdb.RPush(ctx, key, payload).Result()
	if err != nil {
		return fmt.Errorf("depcache: rpush snapshot: %w", err)
	}
	if s.MaxSnapshotLen > 0 && size > s.MaxSnapshotLen {
		if err := s.rdb.LPop(ctx, key).Err(); err != nil {
			return fmt.Errorf("depcache: trim snapshot list: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) SnapshotAtOrBefore(ctx context.Context, file ids.FileId, other ids.RefId, q ids.Offset) ([]ids.Reference, error) {
	key := subsKey(file, other)
	length, err := s.rdb.LLen(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("depcache: llen: %w", err)
	}
	if length == 0 {
		return nil, nil
	}

	for i := int64(0); i < length; i++ {
		// Scan from the tail (newest) backward, one element at a time,
		// exactly as cache.rs's get_ref_id_subs does via LRANGE(-1-i,
		// -1-i) against RPUSH-appended entries.
		idx := -1 - i
		raw, err := s.rdb.LRange(ctx, key, idx, idx).Result()
		if err != nil {
			return nil, fmt.Errorf("depcache: lrange: %w", err)
		}
		if len(raw) == 0 {
			break
		}
		var entry snapshotEntry
		if err := json.Unmarshal([]byte(raw[0]), &entry); err != nil {
			return nil, fmt.Errorf("depcache: unmarshal snapshot: %w", err)
		}
		if entry.Offset <= q {
			return entry.Subs, nil
		}
	}
	return nil, nil
}

func (s *RedisStore) SetObjDeps(ctx context.Context, file ids.FileId, obj ids.ObjId, deps []*ids.Reference) error {
	payload, err := json.Marshal(deps)
	if err != nil {
		return fmt.Errorf("depcache: marshal obj deps: %w", err)
	}
	return s.rdb.Set(ctx, depsKey(file, obj), payload, 0).Err()
}

func (s *RedisStore) GetObjDeps(ctx context.Context, file ids.FileId, obj ids.ObjId) ([]*ids.Reference, error) {
	raw, err := s.rdb.Get(ctx, depsKey(file, obj)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("depcache: get obj deps: %w", err)
	}
	var deps []*ids.Reference
	if err := json.Unmarshal(raw, &deps); err != nil {
		return nil, fmt.Errorf("depcache: unmarshal obj deps: %w", err)
	}
	return deps, nil
}
