package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"wallet-ledger/internal/core/ports"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "wallet:ratelimit:"

// RateLimitStore implements ports.RateLimiter as a sliding-window log: each
// key is a sorted set of request timestamps in microseconds.
type RateLimitStore struct {
	client *goredis.Client
	now    func() time.Time
}

func NewRateLimitStore(client *goredis.Client) *RateLimitStore {
	return &RateLimitStore{client: client, now: time.Now}
}

// Allow trims entries older than window, records this request and counts
// what is left in one MULTI. A request over the limit is removed again so
// rejected traffic does not extend the block.
func (s *RateLimitStore) Allow(ctx context.Context, key string, limit int64, window time.Duration) (*ports.RateDecision, error) {
	if window <= 0 {
		window = time.Second
	}
	now := s.now()
	setKey := rateLimitPrefix + key
	member := strconv.FormatInt(now.UnixMicro(), 10) + ":" + uuid.NewString()
	cutoff := "(" + strconv.FormatInt(now.Add(-window).UnixMicro(), 10)

	var (
		card   *goredis.IntCmd
		oldest *goredis.ZSliceCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, setKey, "-inf", cutoff)
		pipe.ZAdd(ctx, setKey, goredis.Z{Score: float64(now.UnixMicro()), Member: member})
		card = pipe.ZCard(ctx, setKey)
		oldest = pipe.ZRangeWithScores(ctx, setKey, 0, 0)
		pipe.PExpire(ctx, setKey, window)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", key, err)
	}

	count := card.Val()
	decision := &ports.RateDecision{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: max(limit-count, 0),
		ResetAt:   now.Add(window),
	}
	if first := oldest.Val(); len(first) > 0 {
		decision.ResetAt = time.UnixMicro(int64(first[0].Score)).Add(window)
	}

	if !decision.Allowed {
		if err := s.client.ZRem(ctx, setKey, member).Err(); err != nil {
			return nil, fmt.Errorf("rate limit %s: %w", key, err)
		}
	}
	return decision, nil
}
