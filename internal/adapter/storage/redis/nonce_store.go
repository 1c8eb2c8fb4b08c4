package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const noncePrefix = "wallet:nonce:"

// NonceStore implements ports.NonceStore. Nonces are scoped per admin so two
// operators never collide on the same value.
type NonceStore struct {
	client *goredis.Client
}

func NewNonceStore(client *goredis.Client) *NonceStore {
	return &NonceStore{client: client}
}

// CheckAndSet claims nonce within scope for ttl. It reports false when the
// nonce was already claimed and has not expired.
func (s *NonceStore) CheckAndSet(ctx context.Context, scope string, nonce string, ttl time.Duration) (bool, error) {
	claimed, err := s.client.SetNX(ctx, nonceKey(scope, nonce), time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim nonce: %w", err)
	}
	return claimed, nil
}

func nonceKey(scope, nonce string) string {
	return noncePrefix + scope + ":" + nonce
}
