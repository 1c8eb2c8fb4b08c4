package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// EventPublisher implements ports.EventPublisher by appending to a Redis stream.
type EventPublisher struct {
	client *goredis.Client
	stream string
	maxLen int64
}

// NewEventPublisher creates a publisher writing to stream. The stream is
// approximately capped at maxLen entries; 0 leaves it uncapped.
func NewEventPublisher(client *goredis.Client, stream string, maxLen int64) *EventPublisher {
	return &EventPublisher{client: client, stream: stream, maxLen: maxLen}
}

// Publish wraps data in an Event envelope and XADDs it to the stream.
func (p *EventPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	event := domain.Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	args := &goredis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"type":  eventType,
			"event": payload,
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}
