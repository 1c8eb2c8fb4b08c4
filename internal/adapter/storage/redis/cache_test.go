package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewLookupCache(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), time.Minute, zerolog.Nop())
	ctx := context.Background()

	miss, err := cache.Get(ctx, "4820173951")
	require.NoError(t, err)
	assert.Nil(t, miss)

	pub := &domain.PublicAccount{AccountID: uuid.New(), Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, cache.Set(ctx, "4820173951", pub))

	hit, err := cache.Get(ctx, "4820173951")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, *pub, *hit)

	raw, err := mr.Get("wallet:lookup:4820173951")
	require.NoError(t, err)
	assert.NotContains(t, raw, "balance")

	mr.FastForward(2 * time.Minute)
	expired, err := cache.Get(ctx, "4820173951")
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestViewCache_CorruptEntryIsMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	views := NewViewCache[domain.PublicAccount](goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), 0, zerolog.Nop())

	require.NoError(t, mr.Set("k", "{not json"))
	v, ok := views.Get(context.Background(), "k")
	assert.False(t, ok)
	assert.Nil(t, v)

	views.Delete(context.Background(), "k")
	assert.False(t, mr.Exists("k"))
}

func TestEventPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	pub := NewEventPublisher(client, "wallet:transactions", 1000)
	ctx := context.Background()

	txn := domain.Transaction{ID: uuid.New(), Amount: 2500, Status: domain.TransactionStatusSuccess}
	require.NoError(t, pub.Publish(ctx, domain.EventTransactionApproved, txn))

	msgs, err := client.XRange(ctx, "wallet:transactions", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.EventTransactionApproved, msgs[0].Values["type"])

	var env struct {
		Type string             `json:"type"`
		Data domain.Transaction `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["event"].(string)), &env))
	assert.Equal(t, domain.EventTransactionApproved, env.Type)
	assert.Equal(t, txn.ID, env.Data.ID)
}

func TestEventPublisher_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	pub := NewEventPublisher(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), "s", 0)
	mr.Close()

	assert.Error(t, pub.Publish(context.Background(), domain.EventTransactionCreated, map[string]string{}))
}
