package shared

import (
	"context"
	"log/slog"
	"time"

	"cart-engine/internal/domain/cart"

	"github.com/google/uuid"
)

type EventType string

const (
	EventCartCreated   EventType = "cart.created"
	EventCartUpdated   EventType = "cart.updated"
	EventItemAdded     EventType = "cart.item.added"
	EventItemUpdated   EventType = "cart.item.updated"
	EventItemRemoved   EventType = "cart.item.removed"
	EventCouponApplied EventType = "cart.coupon.applied"
	EventCouponRemoved EventType = "cart.coupon.removed"
	EventCartRepriced  EventType = "cart.repriced"
	EventCartMerged    EventType = "cart.merged"
	EventCartConverted EventType = "cart.converted"
	EventCartExpired   EventType = "cart.expired"
)

// Event is delivered at least once. Consumers deduplicate on (CartID, Version).
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Type       EventType         `json:"type"`
	CartID     uuid.UUID         `json:"cartId"`
	Version    int64             `json:"version"`
	OccurredAt time.Time         `json:"occurredAt"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Cart       cart.Snapshot     `json:"cart"`
}

func NewEvent(t EventType, c *cart.Cart, now time.Time, attrs map[string]string) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		CartID:     c.ID(),
		Version:    c.Version(),
		OccurredAt: now,
		Attributes: attrs,
		Cart:       c.ToSnapshot(),
	}
}

// PublishAll never fails the caller; delivery errors are logged.
func PublishAll(ctx context.Context, pub EventPublisher, logger *slog.Logger, events ...Event) {
	for _, e := range events {
		if err := pub.Publish(ctx, e); err != nil {
			logger.WarnContext(ctx, "event publish failed",
				slog.String("event_type", string(e.Type)),
				slog.String("cart_id", e.CartID.String()),
				slog.Int64("version", e.Version),
				slog.String("error", err.Error()))
		}
	}
}
