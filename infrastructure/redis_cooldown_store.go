package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"overbank/models"
	"overbank/service"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const cooldownKeyPrefix = "overbank:cooldown:"

// RedisCooldownStore keeps cooldowns in Redis keys that expire with the cooldown
type RedisCooldownStore struct {
	client *redis.Client
	now    func() time.Time
}

var _ service.CooldownStore = (*RedisCooldownStore)(nil)

// NewRedisCooldownStore creates a CooldownStore on top of a Redis client
func NewRedisCooldownStore(client *redis.Client) *RedisCooldownStore {
	return &RedisCooldownStore{
		client: client,
		now:    time.Now,
	}
}

// ConnectRedis parses a redis:// URL and verifies the server answers
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.WithField("addr", opts.Addr).Info("Connected to Redis")
	return client, nil
}

func redisCooldownKey(key models.CooldownKey) string {
	return cooldownKeyPrefix + key.String()
}

func (s *RedisCooldownStore) Get(ctx context.Context, key models.CooldownKey) (*models.CooldownEntry, error) {
	raw, err := s.client.Get(ctx, redisCooldownKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cooldown: %w", err)
	}

	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt cooldown value %q: %w", raw, err)
	}

	return &models.CooldownEntry{Key: key, ExpiresAt: time.UnixMilli(millis)}, nil
}

func (s *RedisCooldownStore) Set(ctx context.Context, key models.CooldownKey, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		if err := s.client.Del(ctx, redisCooldownKey(key)).Err(); err != nil {
			return fmt.Errorf("failed to clear cooldown: %w", err)
		}
		return nil
	}

	if err := s.client.Set(ctx, redisCooldownKey(key), expiresAt.UnixMilli(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cooldown: %w", err)
	}
	return nil
}
