package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	dbpostgres "github.com/k-code-yt/retail-orders/internal/db/postgres"
	"github.com/k-code-yt/retail-orders/internal/domain"
)

type CategoryRepo struct {
	repo      *sqlx.DB
	tableName string
}

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo {
	return &CategoryRepo{
		repo:      db,
		tableName: "categories",
	}
}

func (r *CategoryRepo) Insert(ctx context.Context, tx *sqlx.Tx, c *domain.Category) (int64, error) {
	if c.PublicID == "" {
		c.PublicID = uuid.NewString()
	}
	q := fmt.Sprintf(`INSERT INTO %s (public_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`, r.tableName)
	var id int64
	err := tx.GetContext(ctx, &id, q, c.PublicID, c.Name, c.Description, time.Now(), time.Now())
	if err != nil {
		if dbpostgres.IsDuplicateKeyErr(err) {
			return 0, domain.NewDuplicateCategoryError(c.Name)
		}
		return 0, domain.NewPersistenceError(err)
	}
	c.ID = id
	return id, nil
}

func (r *CategoryRepo) GetByPublicID(ctx context.Context, publicID string) (*domain.Category, error) {
	c := &domain.Category{}
	q := fmt.Sprintf("SELECT * FROM %s WHERE public_id = $1", r.tableName)
	err := r.repo.GetContext(ctx, c, q, publicID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewCategoryNotFoundError(publicID)
		}
		return nil, domain.NewPersistenceError(err)
	}
	return c, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	categories := []*domain.Category{}
	q := fmt.Sprintf("SELECT * FROM %s ORDER BY name", r.tableName)
	if err := r.repo.SelectContext(ctx, &categories, q); err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	return categories, nil
}

func (r *CategoryRepo) Update(ctx context.Context, tx *sqlx.Tx, c *domain.Category) error {
	q := fmt.Sprintf("UPDATE %s SET name = $1, description = $2, updated_at = $3 WHERE id = $4", r.tableName)
	_, err := tx.ExecContext(ctx, q, c.Name, c.Description, time.Now(), c.ID)
	if err != nil {
		if dbpostgres.IsDuplicateKeyErr(err) {
			return domain.NewDuplicateCategoryError(c.Name)
		}
		return domain.NewPersistenceError(err)
	}
	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, tx *sqlx.Tx, id int64) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.tableName)
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return domain.NewPersistenceError(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return domain.NewPersistenceError(err)
	}
	if rows == 0 {
		return domain.NewCategoryNotFoundError(fmt.Sprintf("id=%d", id))
	}
	return nil
}
