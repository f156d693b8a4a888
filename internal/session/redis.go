package session

import (
	"context"
	"fmt"
	"time"

	"github.com/dyluth/commviz/pkg/artifact"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps selections in Redis so several server replicas can share sessions.
// All keys are namespaced, see SessionKey.
type RedisStore struct {
	rdb       *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedisStore creates a store on the given connection options.
// A ttl of zero disables expiry.
func NewRedisStore(redisOpts *redis.Options, namespace string, ttl time.Duration) (*RedisStore, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}

	return &RedisStore{
		rdb:       redis.NewClient(redisOpts),
		namespace: namespace,
		ttl:       ttl,
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, page artifact.PageName, id string) (artifact.Selection, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	// HGetAll returns an empty map for missing keys
	hash, err := s.rdb.HGetAll(ctx, SessionKey(s.namespace, id, page)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session from Redis: %w", err)
	}
	return artifact.Selection(hash).Clone(), nil
}

// Put replaces the hash atomically and refreshes its TTL.
func (s *RedisStore) Put(ctx context.Context, page artifact.PageName, id string, sel artifact.Selection) error {
	if err := validateID(id); err != nil {
		return err
	}

	key := SessionKey(s.namespace, id, page)
	clone := sel.Clone()

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(clone) == 0 {
			return nil
		}

		fields := make(map[string]any, len(clone))
		for dim, value := range clone {
			fields[dim] = value
		}
		pipe.HSet(ctx, key, fields)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write session to Redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, page artifact.PageName, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	if err := s.rdb.Del(ctx, SessionKey(s.namespace, id, page)).Err(); err != nil {
		return fmt.Errorf("failed to delete session from Redis: %w", err)
	}
	return nil
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
