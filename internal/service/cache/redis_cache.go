package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisEntryCache shares gateway entries between processes.
// Keys carry a retention window well beyond the freshness TTL so stale fallback keeps working.
type RedisEntryCache struct {
	cli       *redis.Client
	prefix    string
	retention time.Duration
}

func NewRedisEntryCache(cli *redis.Client, prefix string, retention time.Duration) *RedisEntryCache {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &RedisEntryCache{cli: cli, prefix: prefix, retention: retention}
}

type redisEntry struct {
	TS   int64           `json:"ts"`
	Data json.RawMessage `json:"data"`
}

func (r *RedisEntryCache) Get(ctx context.Context, key string) (Entry, bool, error) {
	b, err := r.cli.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	var re redisEntry
	if err := json.Unmarshal(b, &re); err != nil {
		return Entry{}, false, err
	}
	return Entry{Timestamp: time.UnixMilli(re.TS), Data: []byte(re.Data)}, true, nil
}

func (r *RedisEntryCache) Put(ctx context.Context, key string, e Entry) error {
	data := e.Data
	if !json.Valid(data) {
		return errors.New("entry data is not valid json")
	}
	b, err := json.Marshal(redisEntry{TS: e.Timestamp.UnixMilli(), Data: data})
	if err != nil {
		return err
	}
	return r.cli.Set(ctx, r.key(key), b, r.retention).Err()
}

func (r *RedisEntryCache) key(k string) string {
	return r.prefix + ":gw:" + k
}
