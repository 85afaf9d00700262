package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "parley:session:"

// RedisConfig holds Redis connection parameters for the Redis-backed
// session store.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string `json:"addr" mapstructure:"addr"`
	// Password is the Redis password (optional).
	Password string `json:"password,omitempty" mapstructure:"password"`
	// DB is the Redis database number.
	DB int `json:"db,omitempty" mapstructure:"db"`
	// Prefix is the key prefix for session records (default "parley:session:").
	Prefix string `json:"prefix,omitempty" mapstructure:"prefix"`
}

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Store backed by Redis, one key per session id.
// Records have no expiry: a session persists until it is deleted.
func NewRedisStore(cfg RedisConfig) (Store, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisStoreFromClient(client, cfg.Prefix), nil
}

// NewRedisStoreFromClient creates a Redis-backed Store from an existing
// client. Useful for testing with miniredis.
func NewRedisStoreFromClient(client *redis.Client, prefix string) Store {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &redisStore{client: client, prefix: prefix}
}

func (s *redisStore) key(id string) string {
	return s.prefix + id
}

func (s *redisStore) Get(ctx context.Context, id string) (*Session, bool, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: %s: %v", ErrLoadFailed, id, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrLoadFailed, id, err)
	}

	return &sess, true, nil
}

func (s *redisStore) Save(ctx context.Context, sess *Session) error {
	if sess.ID == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, sess.ID, err)
	}

	// A single SET is atomic on the Redis side; readers see the old or
	// the new record, never a partial one.
	if err := s.client.Set(ctx, s.key(sess.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, sess.ID, err)
	}

	return nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	removed, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete failed: %s: %w", id, err)
	}
	if removed == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
