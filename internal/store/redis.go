package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/teemow/voicecal/internal/preferences"
)

// RedisConfig holds the connection settings for the redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Redis stores each user's preferences as a JSON string value.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to Redis and verifies the connection with PING.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRedisWithClient(client, cfg.Prefix), nil
}

// NewRedisWithClient wraps an existing client. An empty prefix uses
// DefaultRedisPrefix.
func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(userID string) string {
	return r.prefix + "preferences:" + userID
}

// Load returns the user's preferences, or an empty map for unknown users.
func (r *Redis) Load(ctx context.Context, userID string) (preferences.Map, error) {
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if err == redis.Nil {
		return preferences.Map{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading preferences: %w", err)
	}

	prefs := preferences.Map{}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("decoding preferences: %w", err)
	}
	return prefs, nil
}

// Save replaces the user's preferences. Values do not expire.
func (r *Redis) Save(ctx context.Context, userID string, prefs preferences.Map) error {
	data, err := json.Marshal(prefs.Clone())
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	if err := r.client.Set(ctx, r.key(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	return nil
}

// Ping checks that Redis is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
