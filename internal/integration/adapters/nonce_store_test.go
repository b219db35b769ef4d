package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestNonceStore_Consume(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewNonceStore(client, 10*time.Minute)
	ctx := context.Background()

	t.Run("first consume succeeds", func(t *testing.T) {
		fresh, err := store.Consume(ctx, "nonce-1")
		if err != nil {
			t.Fatalf("Consume failed: %v", err)
		}
		if !fresh {
			t.Error("expected first consume to succeed")
		}
	})

	t.Run("replay is rejected", func(t *testing.T) {
		fresh, err := store.Consume(ctx, "nonce-1")
		if err != nil {
			t.Fatalf("Consume failed: %v", err)
		}
		if fresh {
			t.Error("expected replayed nonce to be rejected")
		}
	})

	t.Run("different nonces are independent", func(t *testing.T) {
		fresh, err := store.Consume(ctx, "nonce-2")
		if err != nil {
			t.Fatalf("Consume failed: %v", err)
		}
		if !fresh {
			t.Error("expected unrelated nonce to be fresh")
		}
	})

	t.Run("nonce frees up after the ttl", func(t *testing.T) {
		mr.FastForward(11 * time.Minute)
		fresh, err := store.Consume(ctx, "nonce-1")
		if err != nil {
			t.Fatalf("Consume failed: %v", err)
		}
		if !fresh {
			t.Error("expected nonce to be reusable after expiry")
		}
	})
}
