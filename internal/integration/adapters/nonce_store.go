package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/salon-ledger/backend/internal/application/adapter"
)

// nonceKeyPrefix namespaces sign-in nonces in redis.
const nonceKeyPrefix = "signin:nonce:"

// nonceStore enforces single use of sign-in nonces via redis SETNX.
type nonceStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewNonceStore creates a redis-backed nonce store. Consumed nonces stay
// blocked for ttl, which bounds the replay window.
func NewNonceStore(client *redis.Client, ttl time.Duration) adapter.NonceStore {
	return &nonceStore{
		client: client,
		ttl:    ttl,
	}
}

// Consume marks the nonce as used. The first caller wins; every later call
// within the ttl sees false.
func (s *nonceStore) Consume(ctx context.Context, nonce string) (bool, error) {
	fresh, err := s.client.SetNX(ctx, nonceKeyPrefix+nonce, "1", s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark nonce as used: %w", err)
	}
	return fresh, nil
}
