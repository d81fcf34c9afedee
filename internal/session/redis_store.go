package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-gifting/internal/models"
)

const sessionKeyPrefix = "user_session:"

// RedisStore keeps sessions in Redis so they survive restarts and are shared
// across service instances.
type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client}
}

func (s *RedisStore) Put(ctx context.Context, sessionID string, sess models.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, sessionKeyPrefix+sessionID, data, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	data, err := s.Client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	err := s.Client.Del(ctx, sessionKeyPrefix+sessionID).Err()
	if err == redis.Nil {
		return nil
	}
	return err
}
