package token

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func setupRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, ttl), mr
}

func TestRedisStoreIssueResolve(t *testing.T) {
	store, _ := setupRedisStore(t, 0)
	ctx := context.Background()

	campaignID := uuid.New()
	recipientID := uuid.New()

	tok, err := store.Issue(ctx, campaignID, recipientID)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	b, err := store.Resolve(ctx, tok)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if b.CampaignID != campaignID || b.RecipientID != recipientID {
		t.Errorf("Resolve() = %v/%v, want %v/%v", b.CampaignID, b.RecipientID, campaignID, recipientID)
	}
}

func TestRedisStoreResolveUnknown(t *testing.T) {
	store, _ := setupRedisStore(t, 0)

	_, err := store.Resolve(context.Background(), uuid.New().String())
	if err != ErrNotFound {
		t.Errorf("Resolve() error = %v, want ErrNotFound", err)
	}
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	store, mr := setupRedisStore(t, time.Minute)
	ctx := context.Background()

	tok, err := store.Issue(ctx, uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if _, err := store.Resolve(ctx, tok); err != nil {
		t.Fatalf("Resolve() before expiry error: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Resolve(ctx, tok); err != ErrNotFound {
		t.Errorf("Resolve() after expiry error = %v, want ErrNotFound", err)
	}
}

func TestRedisStoreMalformedBinding(t *testing.T) {
	store, mr := setupRedisStore(t, 0)

	mr.Set(redisKeyPrefix+"bad", "garbage-without-separator")

	_, err := store.Resolve(context.Background(), "bad")
	if err == nil || err == ErrNotFound {
		t.Errorf("Resolve() error = %v, want malformed-binding error", err)
	}
}
