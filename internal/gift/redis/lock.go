package redis

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis guards gift confirmations: one SetNX lock per draft identity so a
// second confirm of the same draft (another click, another tab) cannot create
// a second gift while the first is in flight.
type Redis struct {
	Client *redis.Client
	Logger *log.Logger
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		Client: client,
		Logger: log.Default(),
	}
}

// getConfirmLockDuration returns the confirm lock duration from environment
// variables or the default value
func (r *Redis) getConfirmLockDuration() time.Duration {
	// Default lock TTL is 30 seconds
	defaultDuration := 30 * time.Second

	lockTTLStr := os.Getenv("CONFIRM_LOCK_TTL_SECONDS")
	if lockTTLStr == "" {
		return defaultDuration
	}

	lockTTLSec, err := strconv.Atoi(lockTTLStr)
	if err != nil {
		r.Logger.Println("REDIS: Invalid CONFIRM_LOCK_TTL_SECONDS value '" + lockTTLStr + "', using default 30 seconds")
		return defaultDuration
	}

	r.Logger.Println(fmt.Sprintf("REDIS: Using confirm lock duration of %d seconds from environment", lockTTLSec))
	return time.Duration(lockTTLSec) * time.Second
}

// LockConfirm takes the confirmation lock for a draft identity. Returns
// false when another confirmation already holds it.
func (r *Redis) LockConfirm(draftKey, sessionID string) (bool, error) {
	key := "confirm_lock:" + draftKey
	lockDuration := r.getConfirmLockDuration()
	ok, err := r.Client.SetNX(context.Background(), key, sessionID, lockDuration).Result()
	return ok, err
}

// UnlockConfirm releases the lock if this session still owns it.
func (r *Redis) UnlockConfirm(draftKey, sessionID string) error {
	ctx := context.Background()
	key := "confirm_lock:" + draftKey
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already released
	}
	if err != nil {
		return err
	}
	if val == sessionID {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
