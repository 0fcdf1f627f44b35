package httpapi

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/k-code-yt/retail-orders/internal/domain"
)

type OwnerView struct {
	PublicID string `json:"public_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type OrderLineView struct {
	PublicID        string          `json:"public_id"`
	ProductPublicID string          `json:"product_public_id"`
	Quantity        int             `json:"quantity"`
	PricePerUnit    decimal.Decimal `json:"price_per_unit"`
}

type OrderEventView struct {
	PublicID   string          `json:"public_id"`
	EventType  string          `json:"event_type"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type OrderView struct {
	PublicID        string           `json:"public_id"`
	OrderNumber     string           `json:"order_number"`
	Status          string           `json:"status"`
	ContactName     string           `json:"contact_name"`
	ContactEmail    string           `json:"contact_email"`
	DeliveryAddress string           `json:"delivery_address"`
	Owner           *OwnerView       `json:"owner,omitempty"`
	Lines           []OrderLineView  `json:"lines"`
	Events          []OrderEventView `json:"events"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func toOrderView(h *domain.HydratedOrder) OrderView {
	v := OrderView{
		PublicID:        h.PublicID,
		OrderNumber:     h.OrderNumber,
		Status:          string(h.Status),
		ContactName:     h.ContactName,
		ContactEmail:    h.ContactEmail,
		DeliveryAddress: h.DeliveryAddress,
		Lines:           make([]OrderLineView, 0, len(h.Lines)),
		Events:          make([]OrderEventView, 0, len(h.Events)),
		CreatedAt:       h.CreatedAt,
		UpdatedAt:       h.UpdatedAt,
	}
	if h.Owner != nil {
		v.Owner = &OwnerView{
			PublicID: h.Owner.PublicID,
			Email:    h.Owner.Email,
			Role:     string(h.Owner.Role),
		}
	}
	for _, l := range h.Lines {
		v.Lines = append(v.Lines, OrderLineView{
			PublicID:        l.PublicID,
			ProductPublicID: l.ProductPublicID,
			Quantity:        l.Quantity,
			PricePerUnit:    l.PricePerUnit,
		})
	}
	for _, e := range h.Events {
		v.Events = append(v.Events, OrderEventView{
			PublicID:   e.PublicID,
			EventType:  string(e.EventType),
			Payload:    e.Payload,
			OccurredAt: e.OccurredAt,
		})
	}
	return v
}

type ProductView struct {
	PublicID     string          `json:"public_id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func toProductView(p *domain.Product) ProductView {
	return ProductView{
		PublicID:     p.PublicID,
		Name:         p.Name,
		Quantity:     p.Quantity,
		CurrentPrice: p.CurrentPrice,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type CategoryView struct {
	PublicID    string  `json:"public_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func toCategoryView(c *domain.Category) CategoryView {
	return CategoryView{
		PublicID:    c.PublicID,
		Name:        c.Name,
		Description: c.Description,
	}
}
