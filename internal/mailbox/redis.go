package mailbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "galconsole:mailbox:"

// RedisStore keeps slots as redis keys that expire after the ttl.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func (s *RedisStore) Put(ctx context.Context, kind Kind, payload map[string]any) (Entry, error) {
	e := newEntry(payload, s.now())
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s entry: %w", kind, err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+string(kind), b, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("redis set %s: %w", kind, err)
	}
	return e, nil
}

func (s *RedisStore) Recent(ctx context.Context) (Recent, error) {
	keys := make([]string, len(Kinds))
	for i, k := range Kinds {
		keys[i] = redisKeyPrefix + string(k)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	r := emptyRecent()
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(str), &e); err != nil {
			return nil, fmt.Errorf("decode %s entry: %w", Kinds[i], err)
		}
		r[Kinds[i]] = e
	}
	return r, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
