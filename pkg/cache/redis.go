package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrInvalidEntry indicates a stored record could not be decoded
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// DefaultOperationTTL bounds how long a shared operation scope lives in Redis.
const DefaultOperationTTL = time.Hour

// RedisStore lets several workers of the same operation share one cache
// scope. Every write refreshes a TTL bounded by the operation lifetime, so
// entries never outlive the operation that created them.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(redisClient *redis.Client, ttl time.Duration) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultOperationTTL
	}
	return &RedisStore{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, key Key) ([]Record, bool, error) {
	exists, err := s.redis.Exists(ctx, key.PresenceKey()).Result()
	if err != nil {
		CacheErrors.WithLabelValues("load").Inc()
		return nil, false, fmt.Errorf("redis exists: %w", err)
	}
	if exists == 0 {
		return nil, false, nil
	}

	raw, err := s.redis.LRange(ctx, key.String(), 0, -1).Result()
	if err != nil {
		CacheErrors.WithLabelValues("load").Inc()
		return nil, false, fmt.Errorf("redis lrange: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		var record Record
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			CacheErrors.WithLabelValues("load").Inc()
			return nil, false, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
		}
		records = append(records, record)
	}

	return records, true, nil
}

// Append implements Store. The presence marker and the records are written
// in one transaction.
func (s *RedisStore) Append(ctx context.Context, key Key, records []Record) error {
	values := make([]any, 0, len(records))
	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			CacheErrors.WithLabelValues("append").Inc()
			return fmt.Errorf("marshal record: %w", err)
		}
		values = append(values, data)
	}

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key.PresenceKey(), "1", s.ttl)
		if len(values) > 0 {
			pipe.RPush(ctx, key.String(), values...)
			pipe.Expire(ctx, key.String(), s.ttl)
		}
		return nil
	})
	if err != nil {
		CacheErrors.WithLabelValues("append").Inc()
		return fmt.Errorf("redis append: %w", err)
	}

	return nil
}

// Clear removes every kind's entry for an operation. The orchestration
// layer calls it when the operation ends.
func (s *RedisStore) Clear(ctx context.Context, operationID string) error {
	keys := make([]string, 0, len(Kinds)*2)
	for _, kind := range Kinds {
		key := Key{OperationID: operationID, Kind: kind}
		keys = append(keys, key.String(), key.PresenceKey())
	}

	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}
