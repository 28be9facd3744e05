package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrivera-dev/stockroom-backend/pkg/db/models"
)

// Repository provides persistence for orders.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the order row.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// Save persists the full order row.
func (r *Repository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// Delete removes the order row.
func (r *Repository) Delete(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Delete(order).Error
}

// FindByID loads an owner-scoped order with its product and the product's
// category preloaded.
func (r *Repository) FindByID(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Category").
		First(&order, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns the owner's orders newest first, optionally filtered by
// the product's category.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) ([]models.Order, error) {
	q := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Category").
		Where("orders.user_id = ?", userID)
	if categoryID != nil {
		q = q.Joins("JOIN products ON products.id = orders.product_id").
			Where("products.category_id = ?", *categoryID)
	}

	var rows []models.Order
	err := q.Order("orders.created_at DESC, orders.id DESC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
