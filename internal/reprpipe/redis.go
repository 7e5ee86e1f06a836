package reprpipe

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/weaveform/weave/internal/ids"
)

// RedisOffsetStore is the durable dedup record for a representations
// process restarting mid-stream, mirroring depcache.RedisStore's use of
// a plain keyed Redis value rather than a list (no history needed here,
// only the single newest offset per object).
type RedisOffsetStore struct {
	rdb *redis.Client
}

func NewRedisOffsetStore(rdb *redis.Client) *RedisOffsetStore {
	return &RedisOffsetStore{rdb: rdb}
}

func offsetKey(file ids.FileId, obj ids.ObjId) string {
	return fmt.Sprintf("repr:%s:%s", file, obj)
}

func (s *RedisOffsetStore) LastPublished(ctx context.Context, file ids.FileId, obj ids.ObjId) (ids.Offset, bool, error) {
	raw, err := s.rdb.Get(ctx, offsetKey(file, obj)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reprpipe: get last published: %w", err)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("reprpipe: parse last published: %w", err)
	}
	return ids.Offset(n), true, nil
}

func (s *RedisOffsetStore) SetLastPublished(ctx context.Context, file ids.FileId, obj ids.ObjId, offset ids.Offset) error {
	return s.rdb.Set(ctx, offsetKey(file, obj), int64(offset), 0).Err()
}
