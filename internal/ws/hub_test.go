package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go-pos-ws/internal/events"
	"go-pos-ws/internal/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingBus records how many subscriptions are live.
type countingBus struct {
	*events.LocalBus
	live chan int
	n    int
}

func (b *countingBus) Subscribe(topic string, h events.Handler) (events.Unsubscribe, error) {
	unsub, err := b.LocalBus.Subscribe(topic, h)
	if err != nil {
		return nil, err
	}
	b.n++
	b.live <- b.n
	return func() {
		unsub()
		b.n--
		b.live <- b.n
	}, nil
}

func client(shopID uuid.UUID) *Client {
	return NewClient(nil, session.Context{ShopID: shopID, UserID: uuid.New()})
}

func receive(t *testing.T, c *Client) events.Event {
	t.Helper()
	select {
	case raw := <-c.send:
		var ev events.Event
		require.NoError(t, json.Unmarshal(raw, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("no message")
	}
	return events.Event{}
}

func TestHub_RoutesPerShopAndUser(t *testing.T) {
	bus := &countingBus{LocalBus: events.NewLocalBus(), live: make(chan int, 16)}
	hub := NewHub(bus)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	shopA, shopB := uuid.New(), uuid.New()
	a1, a2, b1 := client(shopA), client(shopA), client(shopB)
	hub.Register <- a1
	hub.Register <- a2
	hub.Register <- b1
	require.Eventually(t, func() bool { return hub.Online(shopA) == 2 && hub.Online(shopB) == 1 }, time.Second, 5*time.Millisecond)

	ev, err := events.New(events.TypeStockChanged, shopA, "sold", map[string]string{"name": "Soap"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, ev))
	assert.Equal(t, events.TypeStockChanged, receive(t, a1).Type)
	assert.Equal(t, events.TypeStockChanged, receive(t, a2).Type)
	assert.Empty(t, b1.send)

	direct, err := events.New(events.TypeNotification, shopA, "for a2", nil)
	require.NoError(t, err)
	direct.UserID = &a2.userID
	require.NoError(t, bus.Publish(ctx, direct))
	assert.Equal(t, "for a2", receive(t, a2).Message)
	assert.Empty(t, a1.send)
}

func TestHub_UnsubscribesWhenShopEmpties(t *testing.T) {
	bus := &countingBus{LocalBus: events.NewLocalBus(), live: make(chan int, 16)}
	hub := NewHub(bus)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	shop := uuid.New()
	c1, c2 := client(shop), client(shop)
	hub.Register <- c1
	assert.Equal(t, 1, <-bus.live)
	hub.Register <- c2
	hub.Unregister <- c1
	hub.Unregister <- c2
	assert.Equal(t, 0, <-bus.live)
	assert.Equal(t, 0, hub.Online(shop))

	_, open := <-c1.send
	assert.False(t, open)

	// Unregistering twice is harmless.
	hub.Unregister <- c2
	assert.Equal(t, 0, hub.Online(shop))
}

// eagerBus hands over a pending event before Subscribe returns, the way a
// pub/sub reader can when messages are already in flight.
type eagerBus struct {
	*events.LocalBus
	pending events.Event
	fail    error
}

func (b *eagerBus) Subscribe(topic string, h events.Handler) (events.Unsubscribe, error) {
	if b.fail != nil {
		return nil, b.fail
	}
	h(b.pending)
	return b.LocalBus.Subscribe(topic, h)
}

func TestHub_FirstClientGetsEventsArrivingDuringSubscribe(t *testing.T) {
	shop := uuid.New()
	ev, err := events.New(events.TypeTransaction, shop, "sale", nil)
	require.NoError(t, err)
	hub := NewHub(&eagerBus{LocalBus: events.NewLocalBus(), pending: ev})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c := client(shop)
	hub.Register <- c
	assert.Equal(t, "sale", receive(t, c).Message)
}

func TestHub_SubscribeFailureDropsRoom(t *testing.T) {
	hub := NewHub(&eagerBus{LocalBus: events.NewLocalBus(), fail: assert.AnError})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	shop := uuid.New()
	c := client(shop)
	hub.Register <- c
	_, open := <-c.send
	assert.False(t, open)
	assert.Equal(t, 0, hub.Online(shop))
}
