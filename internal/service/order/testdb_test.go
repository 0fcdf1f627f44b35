package order

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/k-code-yt/retail-orders/internal/config"
	"github.com/k-code-yt/retail-orders/internal/domain"
	eventrepo "github.com/k-code-yt/retail-orders/internal/repo/event"
	invrepo "github.com/k-code-yt/retail-orders/internal/repo/inventory"
	orderrepo "github.com/k-code-yt/retail-orders/internal/repo/order"
	reposhared "github.com/k-code-yt/retail-orders/internal/repo/repo-shared"
	seqrepo "github.com/k-code-yt/retail-orders/internal/repo/sequence"
)

// The service tests run against a real Postgres because the behavior under
// test (row locks, transaction rollback) is the database's. They skip when
// no instance is reachable via the POSTGRES_* env vars.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Connect("postgres", config.NewPostgresConfig().ConnString())
	if err != nil {
		t.Skipf("postgres not available, skipping: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "000001_init.up.sql"))
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return db
}

func newTestService(t *testing.T, db *sqlx.DB) *OrderService {
	t.Helper()
	return NewOrderService(
		db,
		orderrepo.NewOrderRepo(db),
		invrepo.NewInventoryRepo(db),
		eventrepo.NewEventRepo(db),
		seqrepo.NewSequenceRepo(db),
	)
}

func createTestUser(t *testing.T, db *sqlx.DB, role domain.Role) domain.Actor {
	t.Helper()
	var id int64
	err := db.Get(&id,
		`INSERT INTO users (public_id, email, role) VALUES ($1, $2, $3) RETURNING id`,
		uuid.NewString(), fmt.Sprintf("%s@example.com", uuid.NewString()), role)
	require.NoError(t, err)
	return domain.Actor{ID: id, Role: role}
}

func createTestProduct(t *testing.T, db *sqlx.DB, quantity int, price float64) *domain.Product {
	t.Helper()
	repo := invrepo.NewInventoryRepo(db)
	p := &domain.Product{
		Name:         "test product " + uuid.NewString()[:8],
		Quantity:     quantity,
		CurrentPrice: decimal.NewFromFloat(price),
		Status:       domain.ProductStatus_Active,
	}
	_, err := reposhared.TxClosure(context.Background(), db, func(ctx context.Context, tx *sqlx.Tx) (int64, error) {
		return repo.Insert(ctx, tx, p)
	})
	require.NoError(t, err)
	return p
}

func productQuantity(t *testing.T, db *sqlx.DB, productID int64) int {
	t.Helper()
	var qty int
	require.NoError(t, db.Get(&qty, "SELECT quantity FROM products WHERE id = $1", productID))
	return qty
}

func singleLineOrder(p *domain.Product, qty int, price float64) *domain.NewOrder {
	return &domain.NewOrder{
		ContactName:     "Test Buyer",
		ContactEmail:    "buyer@example.com",
		DeliveryAddress: "1 Test Street",
		Lines: []domain.NewOrderLine{
			{ProductPublicID: p.PublicID, Quantity: qty, PricePerUnit: decimal.NewFromFloat(price)},
		},
	}
}
