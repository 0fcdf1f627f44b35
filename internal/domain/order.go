package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	Status_Placed    Status = "placed"
	Status_Shipped   Status = "shipped"
	Status_Cancelled Status = "cancelled"

	// Produced by fulfilment flows outside this core. Tolerated as
	// predecessor states for cancellation.
	Status_Delivered Status = "delivered"
	Status_Completed Status = "completed"
)

// CanShip guards the placed -> shipped transition. Only an order that is
// exactly placed may ship.
func (s Status) CanShip() error {
	switch s {
	case Status_Placed:
		return nil
	case Status_Cancelled:
		return NewCannotShipCancelledError()
	default:
		return NewAlreadyShippedError(s)
	}
}

// CanCancel guards the transition to cancelled. A shipped order needs a
// non-empty reason.
func (s Status) CanCancel(reason string) error {
	if s == Status_Cancelled {
		return NewAlreadyCancelledError()
	}
	if s == Status_Shipped && reason == "" {
		return NewShippedCancelNeedsReasonError()
	}
	return nil
}

// ReplenishOnCancel reports whether cancelling from this status returns
// stock to the products. Completed fulfilment means the inventory already
// left the system.
func (s Status) ReplenishOnCancel() bool {
	switch s {
	case Status_Delivered, Status_Completed:
		return false
	default:
		return true
	}
}

type Order struct {
	ID              int64     `db:"id"`
	OrderNumber     string    `db:"order_number"`
	PublicID        string    `db:"public_id"`
	ContactName     string    `db:"contact_name"`
	ContactEmail    string    `db:"contact_email"`
	DeliveryAddress string    `db:"delivery_address"`
	Status          Status    `db:"status"`
	UserID          *int64    `db:"user_id"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type OrderLine struct {
	ID           int64           `db:"id"`
	PublicID     string          `db:"public_id"`
	OrderID      int64           `db:"order_id"`
	ProductID    int64           `db:"product_id"`
	Quantity     int             `db:"quantity"`
	PricePerUnit decimal.Decimal `db:"price_per_unit"`
	CreatedAt    time.Time       `db:"created_at"`

	// Loaded via join for rendering; not a column of order_lines.
	ProductPublicID string `db:"product_public_id"`
}

// HydratedOrder is produced only by query functions that guarantee owner,
// lines and events are loaded. Callers never see silently empty relations.
type HydratedOrder struct {
	Order
	Owner  *User
	Lines  []*OrderLine
	Events []*OrderEvent
}

// NewOrderLine is one requested line of an order about to be created.
type NewOrderLine struct {
	ProductPublicID string
	Quantity        int
	PricePerUnit    decimal.Decimal
}

// NewOrder is the validated creation input consumed by the order service.
type NewOrder struct {
	ContactName     string
	ContactEmail    string
	DeliveryAddress string
	Lines           []NewOrderLine
}

// Normalize rejects empty orders and non-positive quantities, then merges
// repeat lines for the same product by summing quantities (the first seen
// price wins). The result is sorted by product public ID so callers lock
// products in a deterministic order.
func (n *NewOrder) Normalize() ([]NewOrderLine, error) {
	if len(n.Lines) == 0 {
		return nil, NewEmptyOrderError()
	}

	merged := map[string]*NewOrderLine{}
	for _, l := range n.Lines {
		if l.Quantity <= 0 {
			return nil, NewInvalidQuantityError(l.ProductPublicID, l.Quantity)
		}
		if existing, ok := merged[l.ProductPublicID]; ok {
			existing.Quantity += l.Quantity
			continue
		}
		cp := l
		merged[l.ProductPublicID] = &cp
	}

	lines := make([]NewOrderLine, 0, len(merged))
	for _, l := range merged {
		lines = append(lines, *l)
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductPublicID < lines[j].ProductPublicID
	})
	return lines, nil
}

// BuildOrder stamps a fresh placed order owned by the actor.
func (n *NewOrder) BuildOrder(orderNumber string, actor Actor) *Order {
	userID := actor.ID
	return &Order{
		OrderNumber:     orderNumber,
		PublicID:        uuid.NewString(),
		ContactName:     n.ContactName,
		ContactEmail:    n.ContactEmail,
		DeliveryAddress: n.DeliveryAddress,
		Status:          Status_Placed,
		UserID:          &userID,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}
