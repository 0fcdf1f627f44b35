package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/k-code-yt/retail-orders/internal/domain"
)

// InventoryRepo is the sole mutator of product quantity. Quantity writes go
// through LockAndGet first so concurrent decrements on the same product are
// serialized by the row lock.
type InventoryRepo struct {
	repo      *sqlx.DB
	tableName string
}

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo {
	return &InventoryRepo{
		repo:      db,
		tableName: "products",
	}
}

// LockAndGet acquires an exclusive row lock on the product for the duration
// of the enclosing transaction.
func (r *InventoryRepo) LockAndGet(ctx context.Context, tx *sqlx.Tx, publicID string) (*domain.Product, error) {
	p := &domain.Product{}
	q := fmt.Sprintf("SELECT * FROM %s WHERE public_id = $1 FOR UPDATE", r.tableName)
	err := tx.GetContext(ctx, p, q, publicID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewProductNotFoundError(publicID)
		}
		return nil, domain.NewPersistenceError(err)
	}
	return p, nil
}

// LockAndGetByID is the internal-ID variant used during replenishment, where
// the order lines reference products by primary key.
func (r *InventoryRepo) LockAndGetByID(ctx context.Context, tx *sqlx.Tx, id int64) (*domain.Product, error) {
	p := &domain.Product{}
	q := fmt.Sprintf("SELECT * FROM %s WHERE id = $1 FOR UPDATE", r.tableName)
	err := tx.GetContext(ctx, p, q, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewProductNotFoundError(fmt.Sprintf("id=%d", id))
		}
		return nil, domain.NewPersistenceError(err)
	}
	return p, nil
}

// Decrement must be called only after LockAndGet. The quantity guard in the
// WHERE clause backs up the caller's own sufficiency check.
func (r *InventoryRepo) Decrement(ctx context.Context, tx *sqlx.Tx, productID int64, amount int) error {
	q := fmt.Sprintf("UPDATE %s SET quantity = quantity - $1, updated_at = $2 WHERE id = $3 AND quantity >= $1", r.tableName)
	res, err := tx.ExecContext(ctx, q, amount, time.Now(), productID)
	if err != nil {
		return domain.NewPersistenceError(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return domain.NewPersistenceError(err)
	}
	if rows != 1 {
		return domain.NewPersistenceError(fmt.Errorf("decrement of product %d by %d affected %d rows", productID, amount, rows))
	}
	return nil
}

// Increment replenishes stock unconditionally.
func (r *InventoryRepo) Increment(ctx context.Context, tx *sqlx.Tx, productID int64, amount int) error {
	q := fmt.Sprintf("UPDATE %s SET quantity = quantity + $1, updated_at = $2 WHERE id = $3", r.tableName)
	res, err := tx.ExecContext(ctx, q, amount, time.Now(), productID)
	if err != nil {
		return domain.NewPersistenceError(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return domain.NewPersistenceError(err)
	}
	if rows != 1 {
		return domain.NewPersistenceError(fmt.Errorf("increment of product %d by %d affected %d rows", productID, amount, rows))
	}
	return nil
}

func (r *InventoryRepo) Insert(ctx context.Context, tx *sqlx.Tx, p *domain.Product) (int64, error) {
	if p.PublicID == "" {
		p.PublicID = uuid.NewString()
	}
	q := fmt.Sprintf(`INSERT INTO %s (public_id, name, quantity, current_price, status, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`, r.tableName)
	var id int64
	err := tx.GetContext(ctx, &id, q, p.PublicID, p.Name, p.Quantity, p.CurrentPrice, p.Status, p.CategoryID, time.Now(), time.Now())
	if err != nil {
		return 0, domain.NewPersistenceError(err)
	}
	p.ID = id
	return id, nil
}

// GetByPublicID returns the product regardless of status so historical order
// lines can still be rendered after retirement.
func (r *InventoryRepo) GetByPublicID(ctx context.Context, publicID string) (*domain.Product, error) {
	p := &domain.Product{}
	q := fmt.Sprintf("SELECT * FROM %s WHERE public_id = $1", r.tableName)
	err := r.repo.GetContext(ctx, p, q, publicID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewProductNotFoundError(publicID)
		}
		return nil, domain.NewPersistenceError(err)
	}
	return p, nil
}

func (r *InventoryRepo) ListActive(ctx context.Context, page, size int, categoryID *int64) ([]*domain.Product, error) {
	offset := (page - 1) * size
	products := []*domain.Product{}
	var err error
	if categoryID != nil {
		q := fmt.Sprintf("SELECT * FROM %s WHERE status = $1 AND category_id = $2 ORDER BY name OFFSET $3 LIMIT $4", r.tableName)
		err = r.repo.SelectContext(ctx, &products, q, domain.ProductStatus_Active, *categoryID, offset, size)
	} else {
		q := fmt.Sprintf("SELECT * FROM %s WHERE status = $1 ORDER BY name OFFSET $2 LIMIT $3", r.tableName)
		err = r.repo.SelectContext(ctx, &products, q, domain.ProductStatus_Active, offset, size)
	}
	if err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	return products, nil
}

func (r *InventoryRepo) Update(ctx context.Context, tx *sqlx.Tx, p *domain.Product) error {
	q := fmt.Sprintf(`UPDATE %s SET name = $1, current_price = $2, category_id = $3, updated_at = $4 WHERE id = $5`, r.tableName)
	_, err := tx.ExecContext(ctx, q, p.Name, p.CurrentPrice, p.CategoryID, time.Now(), p.ID)
	if err != nil {
		return domain.NewPersistenceError(err)
	}
	return nil
}

// Retire soft-deletes a product. Existing order lines keep referencing it.
func (r *InventoryRepo) Retire(ctx context.Context, tx *sqlx.Tx, id int64) error {
	q := fmt.Sprintf("UPDATE %s SET status = $1, updated_at = $2 WHERE id = $3", r.tableName)
	res, err := tx.ExecContext(ctx, q, domain.ProductStatus_Retired, time.Now(), id)
	if err != nil {
		return domain.NewPersistenceError(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return domain.NewPersistenceError(err)
	}
	if rows == 0 {
		return domain.NewProductNotFoundError(fmt.Sprintf("id=%d", id))
	}
	return nil
}
