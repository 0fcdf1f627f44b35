package order

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/k-code-yt/retail-orders/internal/domain"
	eventrepo "github.com/k-code-yt/retail-orders/internal/repo/event"
	invrepo "github.com/k-code-yt/retail-orders/internal/repo/inventory"
	orderrepo "github.com/k-code-yt/retail-orders/internal/repo/order"
	reposhared "github.com/k-code-yt/retail-orders/internal/repo/repo-shared"
	seqrepo "github.com/k-code-yt/retail-orders/internal/repo/sequence"
)

type ShipDetails struct {
	TrackingNumber   string
	ShippingProvider string
}

type CancelDetails struct {
	Reason string
}

// OrderService orchestrates order creation and lifecycle transitions. Each
// use case runs as one transaction: on any failure the whole thing rolls
// back, so no partial stock decrement and no orphan order is ever visible.
type OrderService struct {
	db        *sqlx.DB
	orderRepo *orderrepo.OrderRepo
	invRepo   *invrepo.InventoryRepo
	eventRepo *eventrepo.EventRepo
	seqRepo   *seqrepo.SequenceRepo
	nowFunc   func() time.Time
}

func NewOrderService(db *sqlx.DB, or *orderrepo.OrderRepo, ir *invrepo.InventoryRepo, er *eventrepo.EventRepo, sr *seqrepo.SequenceRepo) *OrderService {
	return &OrderService{
		db:        db,
		orderRepo: or,
		invRepo:   ir,
		eventRepo: er,
		seqRepo:   sr,
		nowFunc:   time.Now,
	}
}

// CreateOrder reserves stock for every requested line and places the order.
// Input validation happens before the transaction opens; the products are
// locked one by one in normalized (sorted) order.
func (s *OrderService) CreateOrder(ctx context.Context, in *domain.NewOrder, actor domain.Actor) (*domain.HydratedOrder, error) {
	lines, err := in.Normalize()
	if err != nil {
		return nil, err
	}

	id, err := reposhared.TxClosure(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) (int64, error) {
		number, err := s.seqRepo.NextOrderNumber(ctx, tx, s.nowFunc().Year())
		if err != nil {
			return 0, err
		}

		o := in.BuildOrder(number, actor)
		orderID, err := s.orderRepo.Insert(ctx, tx, o)
		if err != nil {
			return 0, err
		}

		for _, l := range lines {
			p, err := s.invRepo.LockAndGet(ctx, tx, l.ProductPublicID)
			if err != nil {
				return 0, err
			}
			if !p.Orderable() {
				return 0, domain.NewProductNotFoundError(l.ProductPublicID)
			}
			if p.Quantity < l.Quantity {
				return 0, domain.NewInsufficientStockError(p.Name, l.Quantity, p.Quantity)
			}
			if err := s.invRepo.Decrement(ctx, tx, p.ID, l.Quantity); err != nil {
				return 0, err
			}
			if _, err := s.orderRepo.InsertLine(ctx, tx, &domain.OrderLine{
				OrderID:      orderID,
				ProductID:    p.ID,
				Quantity:     l.Quantity,
				PricePerUnit: l.PricePerUnit,
			}); err != nil {
				return 0, err
			}
		}

		if err := s.appendEvent(ctx, tx, orderID, domain.EventType_OrderPlaced, domain.PlacedPayload{
			Message: "Order created successfully.",
		}); err != nil {
			return 0, err
		}

		logrus.WithFields(logrus.Fields{
			"order#":  number,
			"orderID": orderID,
			"actorID": actor.ID,
			"lines":   len(lines),
		}).Info("order placed")
		return orderID, nil
	})
	if err != nil {
		return nil, err
	}

	return s.orderRepo.GetHydratedByID(ctx, id)
}

// ShipOrder transitions placed -> shipped. The order row is locked first so
// a concurrent double-ship serializes and the loser gets AlreadyShipped.
func (s *OrderService) ShipOrder(ctx context.Context, orderPublicID string, details *ShipDetails) (*domain.HydratedOrder, error) {
	id, err := reposhared.TxClosure(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) (int64, error) {
		o, err := s.orderRepo.LockByPublicID(ctx, tx, orderPublicID)
		if err != nil {
			return 0, err
		}
		if err := o.Status.CanShip(); err != nil {
			return 0, err
		}
		if err := s.orderRepo.UpdateStatus(ctx, tx, o.ID, domain.Status_Shipped); err != nil {
			return 0, err
		}

		payload := domain.ShippedPayload{}
		if details != nil {
			payload.TrackingNumber = details.TrackingNumber
			payload.ShippingProvider = details.ShippingProvider
		}
		if payload.TrackingNumber == "" && payload.ShippingProvider == "" {
			payload.Message = "Order marked as shipped."
		}
		if err := s.appendEvent(ctx, tx, o.ID, domain.EventType_OrderShipped, payload); err != nil {
			return 0, err
		}

		logrus.WithFields(logrus.Fields{
			"order#":  o.OrderNumber,
			"orderID": o.ID,
		}).Info("order shipped")
		return o.ID, nil
	})
	if err != nil {
		return nil, err
	}

	return s.orderRepo.GetHydratedByID(ctx, id)
}

// CancelOrder transitions to cancelled and replenishes stock for every line
// unless the pre-cancellation status represents completed fulfilment. The
// replenishment decision goes into the event payload so the audit trail is
// self-describing.
func (s *OrderService) CancelOrder(ctx context.Context, orderPublicID string, details *CancelDetails) (*domain.HydratedOrder, error) {
	reason := ""
	if details != nil {
		reason = details.Reason
	}

	id, err := reposhared.TxClosure(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) (int64, error) {
		o, err := s.orderRepo.LockByPublicID(ctx, tx, orderPublicID)
		if err != nil {
			return 0, err
		}
		if err := o.Status.CanCancel(reason); err != nil {
			return 0, err
		}
		replenish := o.Status.ReplenishOnCancel()

		if err := s.orderRepo.UpdateStatus(ctx, tx, o.ID, domain.Status_Cancelled); err != nil {
			return 0, err
		}

		if replenish {
			lines, err := s.orderRepo.GetLines(ctx, tx, o.ID)
			if err != nil {
				return 0, err
			}
			// GetLines returns lines ordered by product public ID, the same
			// order creation locks in.
			for _, l := range lines {
				if _, err := s.invRepo.LockAndGetByID(ctx, tx, l.ProductID); err != nil {
					return 0, err
				}
				if err := s.invRepo.Increment(ctx, tx, l.ProductID, l.Quantity); err != nil {
					return 0, err
				}
			}
		}

		payload := domain.CancelledPayload{
			Reason:           reason,
			StockReplenished: replenish,
		}
		if reason == "" {
			payload.Message = "Order cancelled."
		}
		if err := s.appendEvent(ctx, tx, o.ID, domain.EventType_OrderCancelled, payload); err != nil {
			return 0, err
		}

		logrus.WithFields(logrus.Fields{
			"order#":      o.OrderNumber,
			"orderID":     o.ID,
			"replenished": replenish,
		}).Info("order cancelled")
		return o.ID, nil
	})
	if err != nil {
		return nil, err
	}

	return s.orderRepo.GetHydratedByID(ctx, id)
}

// GetOrder loads one order. Admins see any order; other actors only their
// own — the distinction from a plain not-found stays visible to callers.
func (s *OrderService) GetOrder(ctx context.Context, orderPublicID string, actor domain.Actor) (*domain.HydratedOrder, error) {
	h, err := s.orderRepo.GetHydratedByPublicID(ctx, orderPublicID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		if h.UserID == nil || *h.UserID != actor.ID {
			return nil, domain.NewNotAuthorizedError()
		}
	}
	return h, nil
}

func (s *OrderService) ListOrders(ctx context.Context, actor domain.Actor, page, size int, statuses []string) ([]*domain.HydratedOrder, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	filtered := make([]string, 0, len(statuses))
	for _, st := range statuses {
		if trimmed := strings.TrimSpace(st); trimmed != "" {
			filtered = append(filtered, trimmed)
		}
	}
	return s.orderRepo.List(ctx, actor, page, size, filtered)
}

func (s *OrderService) appendEvent(ctx context.Context, tx *sqlx.Tx, orderID int64, t domain.EventType, payload any) error {
	e, err := domain.NewOrderEvent(orderID, t, payload)
	if err != nil {
		return domain.NewPersistenceError(err)
	}
	_, err = s.eventRepo.Append(ctx, tx, e)
	return err
}
