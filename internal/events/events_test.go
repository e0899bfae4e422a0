package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EncodesPayload(t *testing.T) {
	shop := uuid.New()
	ev, err := New(TypeStockChanged, shop, "stock changed", map[string]int{"stock": 3})
	require.NoError(t, err)

	var payload map[string]int
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, 3, payload["stock"])
	assert.Equal(t, shop, ev.ShopID)
}

func TestLocalBus_DeliversPerShop(t *testing.T) {
	bus := NewLocalBus()
	shopA, shopB := uuid.New(), uuid.New()

	var got []string
	unsub, err := bus.Subscribe(Topic(shopA), func(ev Event) { got = append(got, ev.Type) })
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, Event{Type: "a", ShopID: shopA}))
	require.NoError(t, bus.Publish(ctx, Event{Type: "b", ShopID: shopB}))
	assert.Equal(t, []string{"a"}, got)

	unsub()
	unsub()
	require.NoError(t, bus.Publish(ctx, Event{Type: "c", ShopID: shopA}))
	assert.Equal(t, []string{"a"}, got)
}

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisBus_PublishSubscribe(t *testing.T) {
	bus := NewRedisBusWithClient(setupTestRedis(t))
	defer bus.Close()

	shop := uuid.New()
	received := make(chan Event, 1)
	unsub, err := bus.Subscribe(Topic(shop), func(ev Event) { received <- ev })
	require.NoError(t, err)

	ev, err := New(TypeTransaction, shop, "sale", map[string]string{"transaction_id": "TXN-1"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), ev))

	select {
	case got := <-received:
		assert.Equal(t, TypeTransaction, got.Type)
		assert.Equal(t, shop, got.ShopID)
		assert.JSONEq(t, `{"transaction_id":"TXN-1"}`, string(got.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	unsub()
	unsub()
}
