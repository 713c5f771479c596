package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Hash fields of a session record.
const (
	fieldCredential = "token"
	fieldRole       = "role"
)

// RedisStore keeps each session as a hash under nextfit:session:<id>.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore returns a RedisStore whose records expire ttl after the last save.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func redisKey(id string) string { return "nextfit:session:" + id }

// Load reads the session record for id.
func (s *RedisStore) Load(ctx context.Context, id string) (State, error) {
	vals, err := s.rdb.HGetAll(ctx, redisKey(id)).Result()
	if err != nil {
		return State{}, fmt.Errorf("session load: %w", err)
	}
	if len(vals) == 0 {
		return State{}, ErrNotFound
	}
	return State{Credential: vals[fieldCredential], Role: Role(vals[fieldRole])}, nil
}

// Save writes both fields and refreshes the expiry.
func (s *RedisStore) Save(ctx context.Context, id string, st State) error {
	key := redisKey(id)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldCredential, st.Credential, fieldRole, string(st.Role))
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

// Clear removes the record. Clearing a missing record is not an error.
func (s *RedisStore) Clear(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
