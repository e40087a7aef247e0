package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/julianstephens/habitlit/internal/constants"
)

// Redis is a Cache backed by a Redis server. Keys embed a per-user version
// number; Invalidate bumps the version so stale entries are never read again
// and simply expire.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to the server at url (redis://[user:pass@]host:port/db).
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisFromClient(client), nil
}

func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{client: client, prefix: constants.StatsCachePrefix}
}

func (r *Redis) versionKey(userID string) string {
	return fmt.Sprintf("%s:%s:version", r.prefix, userID)
}

func (r *Redis) version(ctx context.Context, userID string) (int64, error) {
	v, err := r.client.Get(ctx, r.versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (r *Redis) entryKey(ctx context.Context, userID, key string) (string, error) {
	v, err := r.version(ctx, userID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s:%d:%s", r.prefix, userID, v, key), nil
}

func (r *Redis) Get(ctx context.Context, userID, key string, dest any) (bool, error) {
	k, err := r.entryKey(ctx, userID, key)
	if err != nil {
		return false, err
	}
	val, err := r.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, userID, key string, value any, ttl time.Duration) error {
	k, err := r.entryKey(ctx, userID, key)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, k, data, ttl).Err()
}

func (r *Redis) Invalidate(ctx context.Context, userID string) error {
	return r.client.Incr(ctx, r.versionKey(userID)).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
