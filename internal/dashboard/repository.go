package dashboard

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrivera-dev/stockroom-backend/pkg/db/models"
	"github.com/mrivera-dev/stockroom-backend/pkg/enums"
)

// lowStockThreshold is the quantity below which a product is flagged on
// the dashboard.
const lowStockThreshold = 10

// topProductLimit caps the best-sellers list.
const topProductLimit = 5

// Repository runs the read-only aggregation queries behind the dashboard.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// TotalStock sums the owner's on-hand quantities.
func (r *Repository) TotalStock(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return total, err
}

// ProductCount counts the owner's products.
func (r *Repository) ProductCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// LowStock lists products under the threshold, lowest stock first.
func (r *Repository) LowStock(ctx context.Context, userID uuid.UUID) ([]LowStockItem, error) {
	var items []LowStockItem
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("user_id = ? AND quantity < ?", userID, lowStockThreshold).
		Select("name, quantity AS stock").
		Order("quantity ASC, name ASC").
		Scan(&items).Error
	return items, err
}

// TopProducts lists the owner's most-ordered products, ties broken by name.
func (r *Repository) TopProducts(ctx context.Context, userID uuid.UUID) ([]TopProduct, error) {
	var items []TopProduct
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Joins("JOIN products ON products.id = orders.product_id").
		Where("orders.user_id = ?", userID).
		Select("products.name AS name, COUNT(orders.id) AS order_count").
		Group("products.id, products.name").
		Order("order_count DESC, name ASC").
		Limit(topProductLimit).
		Scan(&items).Error
	return items, err
}

// PendingOrders counts the owner's orders still pending.
func (r *Repository) PendingOrders(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ? AND status = ?", userID, enums.OrderStatusPending).
		Count(&count).Error
	return count, err
}

// InventorySummary lists the owner's products by name with their
// quantities for the summary table.
func (r *Repository) InventorySummary(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&products).Error
	return products, err
}

// StockMovements returns the owner's log entries oldest first for the
// chart replay.
func (r *Repository) StockMovements(ctx context.Context, userID uuid.UUID) ([]models.InventoryLog, error) {
	var logs []models.InventoryLog
	err := r.db.WithContext(ctx).
		Model(&models.InventoryLog{}).
		Joins("JOIN products ON products.id = inventory_logs.product_id").
		Where("products.user_id = ?", userID).
		Order("inventory_logs.created_at ASC, inventory_logs.id ASC").
		Find(&logs).Error
	return logs, err
}
