package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/k-code-yt/retail-orders/internal/domain"
)

type OrderRepo struct {
	repo      *sqlx.DB
	tableName string
}

func NewOrderRepo(db *sqlx.DB) *OrderRepo {
	return &OrderRepo{
		repo:      db,
		tableName: "orders",
	}
}

func (r *OrderRepo) Insert(ctx context.Context, tx *sqlx.Tx, o *domain.Order) (int64, error) {
	q := fmt.Sprintf(`INSERT INTO %s (order_number, public_id, contact_name, contact_email, delivery_address, status, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`, r.tableName)
	var id int64
	err := tx.GetContext(ctx, &id, q,
		o.OrderNumber, o.PublicID, o.ContactName, o.ContactEmail, o.DeliveryAddress, o.Status, o.UserID, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return 0, domain.NewPersistenceError(err)
	}
	o.ID = id
	return id, nil
}

func (r *OrderRepo) InsertLine(ctx context.Context, tx *sqlx.Tx, l *domain.OrderLine) (int64, error) {
	if l.PublicID == "" {
		l.PublicID = uuid.NewString()
	}
	q := `INSERT INTO order_lines (public_id, order_id, product_id, quantity, price_per_unit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	var id int64
	err := tx.GetContext(ctx, &id, q, l.PublicID, l.OrderID, l.ProductID, l.Quantity, l.PricePerUnit, time.Now())
	if err != nil {
		return 0, domain.NewPersistenceError(err)
	}
	l.ID = id
	return id, nil
}

// LockByPublicID acquires an exclusive row lock on the order. Ship and
// cancel both lock the order row first, the same discipline as products, so
// two concurrent transitions on one order serialize instead of racing.
func (r *OrderRepo) LockByPublicID(ctx context.Context, tx *sqlx.Tx, publicID string) (*domain.Order, error) {
	o := &domain.Order{}
	q := fmt.Sprintf("SELECT * FROM %s WHERE public_id = $1 FOR UPDATE", r.tableName)
	err := tx.GetContext(ctx, o, q, publicID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewOrderNotFoundError(publicID)
		}
		return nil, domain.NewPersistenceError(err)
	}
	return o, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, tx *sqlx.Tx, id int64, status domain.Status) error {
	q := fmt.Sprintf("UPDATE %s SET status = $1, updated_at = $2 WHERE id = $3", r.tableName)
	res, err := tx.ExecContext(ctx, q, status, time.Now(), id)
	if err != nil {
		return domain.NewPersistenceError(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return domain.NewPersistenceError(err)
	}
	if rows != 1 {
		return domain.NewPersistenceError(fmt.Errorf("status update of order %d affected %d rows", id, rows))
	}
	return nil
}

const lineColumns = `ol.id, ol.public_id, ol.order_id, ol.product_id, ol.quantity, ol.price_per_unit, ol.created_at, p.public_id AS product_public_id`

// GetLines loads the lines of one order inside the caller's transaction,
// joined with the product public IDs needed for replenishment and rendering.
func (r *OrderRepo) GetLines(ctx context.Context, tx *sqlx.Tx, orderID int64) ([]*domain.OrderLine, error) {
	lines := []*domain.OrderLine{}
	q := fmt.Sprintf(`SELECT %s FROM order_lines ol JOIN products p ON p.id = ol.product_id
		WHERE ol.order_id = $1 ORDER BY p.public_id`, lineColumns)
	if err := tx.SelectContext(ctx, &lines, q, orderID); err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	return lines, nil
}

// GetHydratedByID loads the order plus owner, lines and events in one go.
// This is the only way an order leaves the repo for rendering, so callers
// can rely on every relation being present.
func (r *OrderRepo) GetHydratedByID(ctx context.Context, id int64) (*domain.HydratedOrder, error) {
	o := &domain.Order{}
	q := fmt.Sprintf("SELECT * FROM %s WHERE id = $1", r.tableName)
	err := r.repo.GetContext(ctx, o, q, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewOrderNotFoundError(fmt.Sprintf("id=%d", id))
		}
		return nil, domain.NewPersistenceError(err)
	}
	return r.hydrate(ctx, o)
}

func (r *OrderRepo) GetHydratedByPublicID(ctx context.Context, publicID string) (*domain.HydratedOrder, error) {
	o := &domain.Order{}
	q := fmt.Sprintf("SELECT * FROM %s WHERE public_id = $1", r.tableName)
	err := r.repo.GetContext(ctx, o, q, publicID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewOrderNotFoundError(publicID)
		}
		return nil, domain.NewPersistenceError(err)
	}
	return r.hydrate(ctx, o)
}

func (r *OrderRepo) hydrate(ctx context.Context, o *domain.Order) (*domain.HydratedOrder, error) {
	h := &domain.HydratedOrder{Order: *o}

	if o.UserID != nil {
		owner := &domain.User{}
		err := r.repo.GetContext(ctx, owner, "SELECT * FROM users WHERE id = $1", *o.UserID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewPersistenceError(err)
		}
		if err == nil {
			h.Owner = owner
		}
	}

	lines := []*domain.OrderLine{}
	lq := fmt.Sprintf(`SELECT %s FROM order_lines ol JOIN products p ON p.id = ol.product_id
		WHERE ol.order_id = $1 ORDER BY p.public_id`, lineColumns)
	if err := r.repo.SelectContext(ctx, &lines, lq, o.ID); err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	h.Lines = lines

	events := []*domain.OrderEvent{}
	eq := "SELECT * FROM order_events WHERE order_id = $1 ORDER BY occurred_at, id"
	if err := r.repo.SelectContext(ctx, &events, eq, o.ID); err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	h.Events = events

	return h, nil
}

// List returns a page of hydrated orders, newest first. Non-admin actors
// only ever see their own orders.
func (r *OrderRepo) List(ctx context.Context, actor domain.Actor, page, size int, statuses []string) ([]*domain.HydratedOrder, error) {
	offset := (page - 1) * size

	q := fmt.Sprintf("SELECT * FROM %s", r.tableName)
	where := []string{}
	args := []any{}
	if !actor.IsAdmin() {
		args = append(args, actor.ID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if len(statuses) > 0 {
		args = append(args, pq.Array(statuses))
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	for i, w := range where {
		if i == 0 {
			q += " WHERE " + w
		} else {
			q += " AND " + w
		}
	}
	args = append(args, offset)
	q += fmt.Sprintf(" ORDER BY created_at DESC OFFSET $%d", len(args))
	args = append(args, size)
	q += fmt.Sprintf(" LIMIT $%d", len(args))

	orders := []*domain.Order{}
	if err := r.repo.SelectContext(ctx, &orders, q, args...); err != nil {
		return nil, domain.NewPersistenceError(err)
	}

	hydrated := make([]*domain.HydratedOrder, 0, len(orders))
	for _, o := range orders {
		h, err := r.hydrate(ctx, o)
		if err != nil {
			return nil, err
		}
		hydrated = append(hydrated, h)
	}
	return hydrated, nil
}
