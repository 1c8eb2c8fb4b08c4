package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const requestKeyPrefix = "wallet:request:"

// RequestKeyStore implements ports.RequestKeyStore. Each entry maps a
// client request key to the id of the transaction it created.
type RequestKeyStore struct {
	client *goredis.Client
}

func NewRequestKeyStore(client *goredis.Client) *RequestKeyStore {
	return &RequestKeyStore{client: client}
}

// Lookup returns the transaction id stored under key. An entry that does not
// hold a valid id is treated as absent and removed.
func (s *RequestKeyStore) Lookup(ctx context.Context, key string) (uuid.UUID, bool, error) {
	raw, err := s.client.Get(ctx, requestKeyPrefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("lookup request key: %w", err)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		s.client.Del(ctx, requestKeyPrefix+key)
		return uuid.Nil, false, nil
	}
	return id, true, nil
}

// Remember stores txID under key with SET NX so the first request to claim a
// key keeps it for the whole ttl.
func (s *RequestKeyStore) Remember(ctx context.Context, key string, txID uuid.UUID, ttl time.Duration) error {
	if err := s.client.SetNX(ctx, requestKeyPrefix+key, txID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("remember request key: %w", err)
	}
	return nil
}
