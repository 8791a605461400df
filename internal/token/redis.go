package token

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "phishsim:token:"

// RedisStore is a Store backed by Redis, for deployments where several
// server instances must resolve each other's tokens. Same contract as
// MemoryStore; atomicity comes from Redis serializing commands.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed token store. ttl of zero means
// tokens never expire, matching MemoryStore behavior.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Issue implements Store.
func (s *RedisStore) Issue(ctx context.Context, campaignID, recipientID uuid.UUID) (string, error) {
	t := uuid.New().String()
	val := campaignID.String() + "|" + recipientID.String()
	if err := s.client.Set(ctx, redisKeyPrefix+t, val, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("storing token: %w", err)
	}
	return t, nil
}

// Resolve implements Store.
func (s *RedisStore) Resolve(ctx context.Context, token string) (Binding, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+token).Result()
	if err == redis.Nil {
		return Binding{}, ErrNotFound
	}
	if err != nil {
		return Binding{}, fmt.Errorf("resolving token: %w", err)
	}

	parts := strings.SplitN(val, "|", 2)
	if len(parts) != 2 {
		return Binding{}, fmt.Errorf("malformed token binding %q", val)
	}
	campaignID, err := uuid.Parse(parts[0])
	if err != nil {
		return Binding{}, fmt.Errorf("malformed campaign id in binding: %w", err)
	}
	recipientID, err := uuid.Parse(parts[1])
	if err != nil {
		return Binding{}, fmt.Errorf("malformed recipient id in binding: %w", err)
	}
	return Binding{CampaignID: campaignID, RecipientID: recipientID}, nil
}
