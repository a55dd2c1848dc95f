package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Abandoned flows are dropped after this long.
const redisSessionTTL = 24 * time.Hour

// RedisStore keeps conversation state in Redis so in-flight flows survive
// a process restart.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get decodes the stored state for (user, flow).
func (s *RedisStore) Get(ctx context.Context, userID int64, flow string, dest interface{}) (bool, error) {
	raw, err := s.client.Get(ctx, sessionKey(userID, flow)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores the state for (user, flow).
func (s *RedisStore) Set(ctx context.Context, userID int64, flow string, state interface{}) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(userID, flow), raw, redisSessionTTL).Err()
}

// Clear discards the state for (user, flow).
func (s *RedisStore) Clear(ctx context.Context, userID int64, flow string) error {
	return s.client.Del(ctx, sessionKey(userID, flow)).Err()
}
