package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventType_OrderPlaced    EventType = "order_placed"
	EventType_OrderShipped   EventType = "order_shipped"
	EventType_OrderCancelled EventType = "order_cancelled"
)

// OrderEvent is one append-only audit record. Rows are created, never
// updated or deleted.
type OrderEvent struct {
	ID         int64           `db:"id"`
	PublicID   string          `db:"public_id"`
	OrderID    int64           `db:"order_id"`
	EventType  EventType       `db:"event_type"`
	Payload    json.RawMessage `db:"payload"`
	OccurredAt time.Time       `db:"occurred_at"`
}

// Event payloads form a closed set of variants per event type. They are
// persisted as opaque JSONB but producers and consumers agree on shape.

type PlacedPayload struct {
	Message string `json:"message"`
}

type ShippedPayload struct {
	TrackingNumber   string `json:"tracking_number,omitempty"`
	ShippingProvider string `json:"shipping_provider,omitempty"`
	Message          string `json:"message,omitempty"`
}

type CancelledPayload struct {
	Reason           string `json:"reason,omitempty"`
	Message          string `json:"message,omitempty"`
	StockReplenished bool   `json:"stock_replenished"`
}

func NewOrderEvent(orderID int64, eventType EventType, payload any) (*OrderEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &OrderEvent{
		PublicID:   uuid.NewString(),
		OrderID:    orderID,
		EventType:  eventType,
		Payload:    raw,
		OccurredAt: time.Now(),
	}, nil
}
