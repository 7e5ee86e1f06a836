package undostore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/weaveform/weave/internal/ids"
)

// RedisStore keeps each stack as a Redis list of event-id strings (RPUSH
// to push, LINDEX -1 to peek, LREM to garbage-collect a specific event)
// and each event's entries as a Redis list of JSON-encoded UndoEntry
// values, the same RPUSH-based shape as original_source's
// undo/src/cache.rs undo_stack/redo_stack helpers.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func stackKey(stack StackKind, file ids.FileId, user ids.UserId) string {
	name := "undo"
	if stack == RedoStack {
		name = "redo"
	}
	return fmt.Sprintf("%s:%s:%s", file, user, name)
}

func eventKey(event ids.EventId) string {
	return fmt.Sprintf("event:%s", event)
}

func (s *RedisStore) PushEvent(ctx context.Context, stack StackKind, file ids.FileId, user ids.UserId, event ids.EventId) error {
	return s.rdb.RPush(ctx, stackKey(stack, file, user), event.String()).Err()
}

func (s *RedisStore) PeekTopEvent(ctx context.Context, stack StackKind, file ids.FileId, user ids.UserId) (ids.EventId, bool, error) {
	raw, err := s.rdb.LIndex(ctx, stackKey(stack, file, user), -1).Result()
	if err == redis.Nil {
		return ids.EventId{}, false, nil
	}
	if err != nil {
		return ids.EventId{}, false, err
	}
	event, err := ids.ParseEventId(raw)
	if err != nil {
		return ids.EventId{}, false, fmt.Errorf("undostore: parse event id: %w", err)
	}
	return event, true, nil
}

func (s *RedisStore) RemoveEventFromStack(ctx context.Context, stack StackKind, file ids.FileId, user ids.UserId, event ids.EventId) error {
	return s.rdb.LRem(ctx, stackKey(stack, file, user), 1, event.String()).Err()
}

func (s *RedisStore) AppendEntry(ctx context.Context, event ids.EventId, entry UndoEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("undostore: marshal entry: %w", err)
	}
	return s.rdb.RPush(ctx, eventKey(event), payload).Err()
}

func (s *RedisStore) RemoveEntry(ctx context.Context, event ids.EventId, obj ids.ObjId) (bool, error) {
	entries, err := s.Entries(ctx, event)
	if err != nil {
		return false, err
	}

	found := false
	remaining := make([]UndoEntry, 0, len(entries))
	for _, e := range entries {
		if !found && e.ObjID == obj {
			found = true
			continue
		}
		remaining = append(remaining, e)
	}
	if !found {
		return false, nil
	}

	key := eventKey(event)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return false, fmt.Errorf("undostore: clear event before rewrite: %w", err)
	}
	for _, e := range remaining {
		if err := s.AppendEntry(ctx, event, e); err != nil {
			return false, fmt.Errorf("undostore: rewrite event: %w", err)
		}
	}
	return true, nil
}

func (s *RedisStore) Entries(ctx context.Context, event ids.EventId) ([]UndoEntry, error) {
	raw, err := s.rdb.LRange(ctx, eventKey(event), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]UndoEntry, 0, len(raw))
	for _, r := range raw {
		var e UndoEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, fmt.Errorf("undostore: unmarshal entry: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}
