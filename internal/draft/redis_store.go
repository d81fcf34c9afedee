package draft

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-gifting/internal/models"
)

const draftKeyPrefix = "gift_draft:"

// DefaultTTL bounds how long an abandoned draft lingers before Redis evicts
// it on its own.
const DefaultTTL = 30 * time.Minute

// RedisStore keeps draft slots in Redis, keyed by session ID.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{Client: client, TTL: ttl}
}

func (s *RedisStore) Put(ctx context.Context, sessionID string, d models.GiftDraft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, draftKeyPrefix+sessionID, data, s.TTL).Err()
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*models.GiftDraft, error) {
	data, err := s.Client.Get(ctx, draftKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var d models.GiftDraft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	err := s.Client.Del(ctx, draftKeyPrefix+sessionID).Err()
	if err == redis.Nil {
		return nil
	}
	return err
}
