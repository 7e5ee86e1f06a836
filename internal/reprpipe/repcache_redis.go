package reprpipe

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// RedisRepCache backs RepCache with one Redis key per (file, obj)
// holding the latest UpdateChangeMsg as JSON.
type RedisRepCache struct {
	rdb *redis.Client
}

func NewRedisRepCache(rdb *redis.Client) *RedisRepCache {
	return &RedisRepCache{rdb: rdb}
}

func repKey(file ids.FileId, obj ids.ObjId) string {
	return fmt.Sprintf("rep:%s:%s", file, obj)
}

func (c *RedisRepCache) Put(ctx context.Context, file ids.FileId, update wire.UpdateChangeMsg) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("reprpipe: marshal representation: %w", err)
	}
	return c.rdb.Set(ctx, repKey(file, update.ObjID), payload, 0).Err()
}

func (c *RedisRepCache) Get(ctx context.Context, file ids.FileId, objs []ids.ObjId) ([]wire.UpdateChangeMsg, error) {
	out := make([]wire.UpdateChangeMsg, 0, len(objs))
	for _, obj := range objs {
		raw, err := c.rdb.Get(ctx, repKey(file, obj)).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reprpipe: get representation: %w", err)
		}
		var update wire.UpdateChangeMsg
		if err := json.Unmarshal(raw, &update); err != nil {
			return nil, fmt.Errorf("reprpipe: unmarshal representation: %w", err)
		}
		out = append(out, update)
	}
	return out, nil
}
