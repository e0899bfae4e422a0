// Package events is the change feed: services publish what changed in a
// shop, and subscribers (the WebSocket hub) refetch or forward it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TypeProductCreated = "product.created"
	TypeProductUpdated = "product.updated"
	TypeStockChanged   = "product.stock_changed"
	TypeTransaction    = "transaction.created"
	TypeNotification   = "notification.created"
	TypeUserStatus     = "user.status"
	TypeUserChanged    = "user.changed"
	TypeShopUpdated    = "shop.updated"
)

// Event is one change in a shop. Payload is any JSON-encodable value.
type Event struct {
	Type     string          `json:"type"`
	ShopID   uuid.UUID       `json:"shop_id"`
	UserID   *uuid.UUID      `json:"user_id,omitempty"` // set for events meant for one user
	Message  string          `json:"message,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Occurred time.Time       `json:"occurred_at"`
}

// New encodes payload into an event for shop.
func New(eventType string, shopID uuid.UUID, message string, payload interface{}) (Event, error) {
	ev := Event{Type: eventType, ShopID: shopID, Message: message, Occurred: time.Now().UTC()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("encode %s payload: %w", eventType, err)
		}
		ev.Payload = raw
	}
	return ev, nil
}

// Topic is the channel all events of a shop travel on.
func Topic(shopID uuid.UUID) string {
	return "pos:shop:" + shopID.String()
}

// Handler receives events. It must not block for long.
type Handler func(Event)

// Unsubscribe removes a subscription. Calling it more than once is safe.
type Unsubscribe func()

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Subscriber interface {
	Subscribe(topic string, h Handler) (Unsubscribe, error)
}

type Bus interface {
	Publisher
	Subscriber
	Close() error
}
