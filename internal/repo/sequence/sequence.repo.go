package sequence

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/k-code-yt/retail-orders/internal/domain"
)

// SequenceRepo hands out order numbers of the form <year><4-digit-seq>,
// e.g. 20250001. The per-year counter row makes the increment atomic, so
// two concurrent creations can never compute the same number (the old
// "scan highest existing + 1" approach could).
type SequenceRepo struct {
	repo      *sqlx.DB
	tableName string
}

func NewSequenceRepo(db *sqlx.DB) *SequenceRepo {
	return &SequenceRepo{
		repo:      db,
		tableName: "order_sequences",
	}
}

// NextOrderNumber increments the counter for the year inside the caller's
// transaction. The single upsert statement both creates the row on first
// use and serializes concurrent increments on the row lock it takes.
func (r *SequenceRepo) NextOrderNumber(ctx context.Context, tx *sqlx.Tx, year int) (string, error) {
	q := fmt.Sprintf(`INSERT INTO %s (year, last_seq) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_seq = %s.last_seq + 1
		RETURNING last_seq`, r.tableName, r.tableName)
	var seq int
	if err := tx.GetContext(ctx, &seq, q, year); err != nil {
		return "", domain.NewPersistenceError(err)
	}
	return fmt.Sprintf("%d%04d", year, seq), nil
}
