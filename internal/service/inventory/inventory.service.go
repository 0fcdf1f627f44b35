package inventory

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/k-code-yt/retail-orders/internal/domain"
	invrepo "github.com/k-code-yt/retail-orders/internal/repo/inventory"
	reposhared "github.com/k-code-yt/retail-orders/internal/repo/repo-shared"
)

type NewProduct struct {
	Name             string
	Quantity         int
	CurrentPrice     decimal.Decimal
	CategoryPublicID string
}

type ProductUpdate struct {
	Name             *string
	CurrentPrice     *decimal.Decimal
	CategoryPublicID *string
}

type NewCategory struct {
	Name        string
	Description *string
}

// InventoryService covers the catalog side: product and category CRUD plus
// soft retirement. Quantity mutations during the order lifecycle do NOT go
// through here — those belong to the order service's transactions.
type InventoryService struct {
	db      *sqlx.DB
	invRepo *invrepo.InventoryRepo
	catRepo *invrepo.CategoryRepo
}

func NewInventoryService(db *sqlx.DB, ir *invrepo.InventoryRepo, cr *invrepo.CategoryRepo) *InventoryService {
	return &InventoryService{
		db:      db,
		invRepo: ir,
		catRepo: cr,
	}
}

func (s *InventoryService) CreateProduct(ctx context.Context, in *NewProduct) (*domain.Product, error) {
	var categoryID *int64
	if in.CategoryPublicID != "" {
		cat, err := s.catRepo.GetByPublicID(ctx, in.CategoryPublicID)
		if err != nil {
			return nil, err
		}
		categoryID = &cat.ID
	}

	p := &domain.Product{
		Name:         in.Name,
		Quantity:     in.Quantity,
		CurrentPrice: in.CurrentPrice,
		Status:       domain.ProductStatus_Active,
		CategoryID:   categoryID,
	}
	_, err := reposhared.TxClosure(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) (int64, error) {
		return s.invRepo.Insert(ctx, tx, p)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"productID": p.ID, "name": p.Name}).Info("product created")
	return p, nil
}

func (s *InventoryService) GetProduct(ctx context.Context, publicID string) (*domain.Product, error) {
	p, err := s.invRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if !p.Orderable() {
		return nil, domain.NewProductNotFoundError(publicID)
	}
	return p, nil
}

func (s *InventoryService) ListProducts(ctx context.Context, page, size int, categoryPublicID string) ([]*domain.Product, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	var categoryID *int64
	if categoryPublicID != "" {
		cat, err := s.catRepo.GetByPublicID(ctx, categoryPublicID)
		if err != nil {
			return nil, err
		}
		categoryID = &cat.ID
	}
	return s.invRepo.ListActive(ctx, page, size, categoryID)
}

func (s *InventoryService) UpdateProduct(ctx context.Context, publicID string, in *ProductUpdate) (*domain.Product, error) {
	p, err := s.GetProduct(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.CurrentPrice != nil {
		p.CurrentPrice = *in.CurrentPrice
	}
	if in.CategoryPublicID != nil {
		if *in.CategoryPublicID == "" {
			p.CategoryID = nil
		} else {
			cat, err := s.catRepo.GetByPublicID(ctx, *in.CategoryPublicID)
			if err != nil {
				return nil, err
			}
			p.CategoryID = &cat.ID
		}
	}
	_, err = reposhared.TxClosure(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) (int64, error) {
		return 0, s.invRepo.Update(ctx, tx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RetireProduct marks the product as retired. It disappears from listings
// and can no longer be ordered, but historical order lines keep rendering.
func (s *InventoryService) RetireProduct(ctx context.Context, publicID string) error {
	p, err := s.GetProduct(ctx, publicID)
	if err != nil {
		return err
	}
	_, err = reposhared.TxClosure(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) (int64, error) {
		return 0, s.invRepo.Retire(ctx, tx, p.ID)
	})
	return err
}

func (s *InventoryService) CreateCategory(ctx context.Context, in *NewCategory) (*domain.Category, error) {
	c := &domain.Category{
		Name:        in.Name,
		Description: in.Description,
	}
	_, err := reposhared.TxClosure(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) (int64, error) {
		return s.catRepo.Insert(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *InventoryService) GetCategory(ctx context.Context, publicID string) (*domain.Category, error) {
	return s.catRepo.GetByPublicID(ctx, publicID)
}

func (s *InventoryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.catRepo.List(ctx)
}

func (s *InventoryService) UpdateCategory(ctx context.Context, publicID string, in *NewCategory) (*domain.Category, error) {
	c, err := s.catRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		c.Name = in.Name
	}
	if in.Description != nil {
		c.Description = in.Description
	}
	_, err = reposhared.TxClosure(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) (int64, error) {
		return 0, s.catRepo.Update(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *InventoryService) DeleteCategory(ctx context.Context, publicID string) error {
	c, err := s.catRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	_, err = reposhared.TxClosure(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) (int64, error) {
		return 0, s.catRepo.Delete(ctx, tx, c.ID)
	})
	return err
}
