package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-scheduler/internal/models"
)

const keyPrefix = "profile:"

// Redis keeps profiles by id so audit and display lookups skip the database.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Redis{Client: client, TTL: ttl}
}

// Get returns the cached profile; a miss and a Redis failure both report false.
func (r *Redis) Get(ctx context.Context, id string) (*models.Profile, bool) {
	raw, err := r.Client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		return nil, false
	}
	var profile models.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, false
	}
	return &profile, true
}

func (r *Redis) Set(ctx context.Context, profile models.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, keyPrefix+profile.ID, raw, r.TTL).Err()
}

func (r *Redis) Invalidate(ctx context.Context, id string) error {
	err := r.Client.Del(ctx, keyPrefix+id).Err()
	if err == redis.Nil {
		return nil
	}
	return err
}

// Ping checks the connection at startup.
func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.Client.Ping(ctx).Err()
}
