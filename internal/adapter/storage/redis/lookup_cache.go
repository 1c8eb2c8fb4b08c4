package redis

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// LookupCache implements ports.LookupCache on a ViewCache of public account
// projections keyed by account number. Balances are never part of the
// projection, so the cache never needs invalidating on credit or debit.
type LookupCache struct {
	views *ViewCache[domain.PublicAccount]
}

// NewLookupCache creates a lookup cache with the given entry TTL.
func NewLookupCache(client *goredis.Client, ttl time.Duration, log zerolog.Logger) *LookupCache {
	return &LookupCache{views: NewViewCache[domain.PublicAccount](client, ttl, log)}
}

func lookupKey(accountNumber string) string {
	return "wallet:lookup:" + accountNumber
}

// Get returns the cached projection, or nil on a miss.
func (c *LookupCache) Get(ctx context.Context, accountNumber string) (*domain.PublicAccount, error) {
	v, ok := c.views.Get(ctx, lookupKey(accountNumber))
	if !ok {
		return nil, nil
	}
	return v, nil
}

// Set caches the projection for accountNumber.
func (c *LookupCache) Set(ctx context.Context, accountNumber string, account *domain.PublicAccount) error {
	c.views.Set(ctx, lookupKey(accountNumber), account)
	return nil
}
