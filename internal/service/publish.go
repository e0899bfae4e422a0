package service

import (
	"context"
	"log"

	"go-pos-ws/internal/events"

	"github.com/google/uuid"
)

// publish pushes a change to the shop feed. Delivery failures are logged and
// never fail the operation that caused them; the data is already stored.
func publish(ctx context.Context, bus events.Publisher, eventType string, shopID uuid.UUID, message string, payload interface{}) {
	if bus == nil {
		return
	}
	ev, err := events.New(eventType, shopID, message, payload)
	if err != nil {
		log.Printf("events: %v", err)
		return
	}
	if err := bus.Publish(ctx, ev); err != nil {
		log.Printf("events: publish %s for shop %s: %v", eventType, shopID, err)
	}
}

type actorInfo struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}
