package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrivera-dev/stockroom-backend/pkg/db/models"
)

// Repository provides persistence for products.
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

// Create inserts the product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Save persists the full product row.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete removes the product row. Log entries referencing it go with it.
func (r *Repository) Delete(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Delete(product).Error
}

// FindByID loads an owner-scoped product with its category.
func (r *Repository) FindByID(ctx context.Context, id, userID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		First(&product, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns the owner's products ordered by name, optionally filtered
// to a single category.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) ([]models.Product, error) {
	q := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", userID)
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}

	var rows []models.Product
	if err := q.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SKUExists reports whether another of the owner's products already uses
// the SKU. excludeID skips the product being updated.
func (r *Repository) SKUExists(ctx context.Context, userID uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("user_id = ? AND sku = ?", userID, sku)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CategoryExists reports whether the owner has a category with this id.
func (r *Repository) CategoryExists(ctx context.Context, categoryID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ? AND user_id = ?", categoryID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteLogs removes the product's log rows. Only used when the product
// itself is being deleted; the history dies with the product.
func (r *Repository) DeleteLogs(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.InventoryLog{}).Error
}

// DeleteOrders removes the product's orders. Stock is not restored since
// the product no longer exists. Explicit here so SQLite behaves like the
// Postgres FK cascade.
func (r *Repository) DeleteOrders(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.Order{}).Error
}
