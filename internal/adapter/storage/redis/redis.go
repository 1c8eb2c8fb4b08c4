package redis

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/config"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const pingTimeout = 2 * time.Second

// NewClient connects to Redis and fails fast when the server does not answer
// within the configured dial timeout.
func NewClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*goredis.Client, error) {
	opts := &goredis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	}
	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, dialBudget(cfg.DialTimeout))
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis at %s: %w", cfg.Addr(), err)
	}

	log.Info().
		Str("addr", cfg.Addr()).
		Int("db", cfg.DB).
		Str("stream", cfg.Stream).
		Msg("Redis ready")
	return client, nil
}

func dialBudget(d time.Duration) time.Duration {
	if d <= 0 {
		return pingTimeout
	}
	return d
}

// HealthCheck implements ports.HealthChecker. Besides answering PING the
// server must not hold a non-stream value under the event stream key, or
// every XADD would fail.
type HealthCheck struct {
	client *goredis.Client
	stream string
}

func NewHealthCheck(client *goredis.Client, stream string) *HealthCheck {
	return &HealthCheck{client: client, stream: stream}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := h.client.Ping(ctx).Err(); err != nil {
		return err
	}
	if h.stream == "" {
		return nil
	}
	kind, err := h.client.Type(ctx, h.stream).Result()
	if err != nil {
		return err
	}
	if kind != "none" && kind != "stream" {
		return fmt.Errorf("event stream key %q holds a %s", h.stream, kind)
	}
	return nil
}

func (h *HealthCheck) Name() string { return "redis" }
