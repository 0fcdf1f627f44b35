package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatus_Active  ProductStatus = "active"
	ProductStatus_Retired ProductStatus = "retired"
)

// Product is a sellable inventory item. Quantity is mutated only by the
// inventory repo under a row lock. A retired product cannot be ordered but
// stays readable for historical order lines.
type Product struct {
	ID           int64           `db:"id"`
	PublicID     string          `db:"public_id"`
	Name         string          `db:"name"`
	Quantity     int             `db:"quantity"`
	CurrentPrice decimal.Decimal `db:"current_price"`
	Status       ProductStatus   `db:"status"`
	CategoryID   *int64          `db:"category_id"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func (p *Product) Orderable() bool {
	return p.Status == ProductStatus_Active
}

type Category struct {
	ID          int64     `db:"id"`
	PublicID    string    `db:"public_id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
