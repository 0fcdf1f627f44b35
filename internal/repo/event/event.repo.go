package event

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/k-code-yt/retail-orders/internal/domain"
)

// EventRepo appends to the per-order audit trail. There is deliberately no
// update or delete path.
type EventRepo struct {
	repo      *sqlx.DB
	tableName string
}

func NewEventRepo(db *sqlx.DB) *EventRepo {
	return &EventRepo{
		repo:      db,
		tableName: "order_events",
	}
}

// Append writes the event inside the caller's transaction. The service
// appends as the last write before commit so the event and the status
// transition that produced it are atomic together.
func (r *EventRepo) Append(ctx context.Context, tx *sqlx.Tx, e *domain.OrderEvent) (int64, error) {
	q := fmt.Sprintf(`INSERT INTO %s (public_id, order_id, event_type, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`, r.tableName)
	var id int64
	err := tx.GetContext(ctx, &id, q, e.PublicID, e.OrderID, e.EventType, e.Payload, e.OccurredAt)
	if err != nil {
		return 0, domain.NewPersistenceError(err)
	}
	e.ID = id
	return id, nil
}

func (r *EventRepo) ListByOrder(ctx context.Context, orderID int64) ([]*domain.OrderEvent, error) {
	events := []*domain.OrderEvent{}
	q := fmt.Sprintf("SELECT * FROM %s WHERE order_id = $1 ORDER BY occurred_at, id", r.tableName)
	if err := r.repo.SelectContext(ctx, &events, q, orderID); err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	return events, nil
}

// ListAfter feeds the outbox relay. Events are read past a cursor instead of
// being flagged, which keeps the table append-only.
func (r *EventRepo) ListAfter(ctx context.Context, tx *sqlx.Tx, afterID int64, limit int) ([]*domain.OrderEvent, error) {
	events := []*domain.OrderEvent{}
	q := fmt.Sprintf("SELECT * FROM %s WHERE id > $1 ORDER BY id LIMIT $2", r.tableName)
	if err := tx.SelectContext(ctx, &events, q, afterID, limit); err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	return events, nil
}
