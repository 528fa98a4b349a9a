package iocache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/huangsam/transit/internal/contract"
	"github.com/huangsam/transit/schema"
)

// redisTimeout bounds every round trip so that a dead server degrades to a cache miss.
const redisTimeout = 5 * time.Second

// RedisCacheStore keeps cache entries as Redis hashes under a namespace prefix.
// A sorted set indexed by timestamp tracks the keys for status reporting.
type RedisCacheStore struct {
	client    *redis.Client
	namespace string
}

var _ contract.CacheStore = &RedisCacheStore{} // Compile-time check

// NewRedisCacheStore connects to the Redis server at url (redis://host:port/db).
func NewRedisCacheStore(namespace, url string) (*RedisCacheStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	opts.DialTimeout = redisTimeout
	opts.MaxRetries = 1

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	return &RedisCacheStore{client: client, namespace: namespace}, nil
}

func (rs *RedisCacheStore) entryKey(key string) string {
	return rs.namespace + ":entry:" + key
}

func (rs *RedisCacheStore) indexKey() string {
	return rs.namespace + ":index"
}

// Get retrieves a value by key from the store. A missing key returns redis.Nil.
func (rs *RedisCacheStore) Get(key string) ([]byte, int, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	fields, err := rs.client.HGetAll(ctx, rs.entryKey(key)).Result()
	if err != nil {
		return nil, 0, 0, err
	}
	if len(fields) == 0 {
		return nil, 0, 0, redis.Nil
	}

	version, err := strconv.Atoi(fields["version"])
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt cache version for %s: %w", key, err)
	}
	ts, err := strconv.ParseInt(fields["ts"], 10, 64)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt cache timestamp for %s: %w", key, err)
	}
	return []byte(fields["value"]), version, ts, nil
}

// Set inserts or replaces a key/value pair in the store.
func (rs *RedisCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	pipe := rs.client.TxPipeline()
	pipe.HSet(ctx, rs.entryKey(key), "value", value, "version", version, "ts", timestamp)
	pipe.ZAdd(ctx, rs.indexKey(), &redis.Z{Score: float64(timestamp), Member: key})
	_, err := pipe.Exec(ctx)
	return err
}

// GetStatus returns status information about the cache store.
func (rs *RedisCacheStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.RedisBackend), Connected: true}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	total, err := rs.client.ZCard(ctx, rs.indexKey()).Result()
	if err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}
	status.TotalEntries = int(total)
	if total == 0 {
		return status, nil
	}

	oldest, err := rs.client.ZRangeWithScores(ctx, rs.indexKey(), 0, 0).Result()
	if err != nil {
		return status, fmt.Errorf("failed to get oldest entry: %w", err)
	}
	newest, err := rs.client.ZRangeWithScores(ctx, rs.indexKey(), -1, -1).Result()
	if err != nil {
		return status, fmt.Errorf("failed to get last entry: %w", err)
	}
	if len(oldest) == 0 || len(newest) == 0 {
		// Index emptied between ZCARD and ZRANGE
		return status, nil
	}
	status.OldestEntryTime = time.Unix(int64(oldest[0].Score), 0)
	status.LastEntryTime = time.Unix(int64(newest[0].Score), 0)

	members, err := rs.client.ZRange(ctx, rs.indexKey(), 0, -1).Result()
	if err != nil {
		return status, fmt.Errorf("failed to list entries: %w", err)
	}
	pipe := rs.client.Pipeline()
	lengths := make([]*redis.Cmd, len(members))
	for i, member := range members {
		lengths[i] = pipe.Do(ctx, "HSTRLEN", rs.entryKey(member), "value")
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return status, fmt.Errorf("failed to size entries: %w", err)
	}
	for _, l := range lengths {
		n, err := l.Int64()
		if err != nil {
			return status, fmt.Errorf("failed to size entries: %w", err)
		}
		status.TableSizeBytes += n
	}
	return status, nil
}

// Clear removes every entry under the namespace.
func (rs *RedisCacheStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	pattern := rs.namespace + ":*"
	var cursor uint64
	for {
		keys, next, err := rs.client.Scan(ctx, cursor, pattern, 500).Result()
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := rs.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close closes the client connection pool.
func (rs *RedisCacheStore) Close() error {
	return rs.client.Close()
}
