package products

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrivera-dev/stockroom-backend/internal/ledger"
	"github.com/mrivera-dev/stockroom-backend/pkg/db"
	"github.com/mrivera-dev/stockroom-backend/pkg/db/models"
	"github.com/mrivera-dev/stockroom-backend/pkg/enums"
	pkgerrors "github.com/mrivera-dev/stockroom-backend/pkg/errors"
)

func setupProductTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  user_id TEXT NOT NULL,
  UNIQUE (name, user_id)
);`,
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  sku TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  price NUMERIC NOT NULL DEFAULT 0,
  description TEXT NOT NULL DEFAULT '',
  user_id TEXT NOT NULL,
  category_id TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (sku, user_id)
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'Pending',
  user_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS inventory_logs (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  change_type TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}

	svc := NewService(NewRepository(conn), ledger.NewRepository(conn), db.NewWithConn(conn))
	return svc, conn
}

func mustCreateProductUser(t *testing.T, conn *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Username:     fmt.Sprintf("user_%s", uuid.NewString()),
		Email:        "products@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func mustCreateProductCategory(t *testing.T, conn *gorm.DB, userID uuid.UUID, name string) *models.Category {
	t.Helper()
	category := &models.Category{ID: uuid.New(), Name: name, UserID: userID}
	require.NoError(t, conn.Create(category).Error)
	return category
}

func productLogs(t *testing.T, conn *gorm.DB, productID uuid.UUID) []models.InventoryLog {
	t.Helper()
	var logs []models.InventoryLog
	require.NoError(t, conn.
		Where("product_id = ?", productID).
		Order("created_at ASC, id ASC").
		Find(&logs).Error)
	return logs
}

func TestCreateProductLogsInitialStock(t *testing.T) {
	svc, conn := setupProductTestService(t)
	user := mustCreateProductUser(t, conn)

	dto, err := svc.Create(context.Background(), user.ID, CreateInput{
		Name:     "Desk Lamp",
		SKU:      "LAMP-001",
		Quantity: 12,
		Price:    decimal.NewFromFloat(34.50),
	})
	require.NoError(t, err)
	assert.Equal(t, 12, dto.Quantity)

	logs := productLogs(t, conn, dto.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, enums.ChangeTypeAdded, logs[0].ChangeType)
	assert.Equal(t, 12, logs[0].Quantity)
}

func TestCreateProductZeroStockNoLog(t *testing.T) {
	svc, conn := setupProductTestService(t)
	user := mustCreateProductUser(t, conn)

	dto, err := svc.Create(context.Background(), user.ID, CreateInput{
		Name:  "Empty Shelf",
		SKU:   "SHELF-001",
		Price: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Zero(t, dto.Quantity)
	assert.Empty(t, productLogs(t, conn, dto.ID))
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	svc, conn := setupProductTestService(t)
	user := mustCreateProductUser(t, conn)

	_, err := svc.Create(context.Background(), user.ID, CreateInput{
		Name: "First", SKU: "DUP-001", Price: decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), user.ID, CreateInput{
		Name: "Second", SKU: "DUP-001", Price: decimal.NewFromInt(1),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Contains(t, typed.Fields(), "sku")

	// other owners can reuse the sku
	other := mustCreateProductUser(t, conn)
	_, err = svc.Create(context.Background(), other.ID, CreateInput{
		Name: "Third", SKU: "DUP-001", Price: decimal.NewFromInt(1),
	})
	require.NoError(t, err)
}

func TestCreateProductNegativePrice(t *testing.T) {
	svc, conn := setupProductTestService(t)
	user := mustCreateProductUser(t, conn)

	_, err := svc.Create(context.Background(), user.ID, CreateInput{
		Name: "Bad", SKU: "BAD-001", Price: decimal.NewFromInt(-5),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Contains(t, typed.Fields(), "price")
}

func TestCreateProductUnknownCategory(t *testing.T) {
	svc, conn := setupProductTestService(t)
	user := mustCreateProductUser(t, conn)
	missing := uuid.New()

	_, err := svc.Create(context.Background(), user.ID, CreateInput{
		Name: "Orphan", SKU: "ORP-001", Price: decimal.NewFromInt(1), CategoryID: &missing,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Contains(t, typed.Fields(), "category_id")
}

func TestUpdateProductQuantityDelta(t *testing.T) {
	svc, conn := setupProductTestService(t)
	user := mustCreateProductUser(t, conn)

	created, err := svc.Create(context.Background(), user.ID, CreateInput{
		Name: "Mug", SKU: "MUG-001", Quantity: 10, Price: decimal.NewFromInt(8),
	})
	require.NoError(t, err)

	// raise stock: one Added movement for the difference
	updated, err := svc.Update(context.Background(), user.ID, created.ID, UpdateInput{
		Name: "Mug", SKU: "MUG-001", Quantity: 15, Price: decimal.NewFromInt(8),
	})
	require.NoError(t, err)
	assert.Equal(t, 15, updated.Quantity)

	// lower stock: one Removed movement
	updated, err = svc.Update(context.Background(), user.ID, created.ID, UpdateInput{
		Name: "Mug", SKU: "MUG-001", Quantity: 9, Price: decimal.NewFromInt(8),
	})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Quantity)

	logs := productLogs(t, conn, created.ID)
	require.Len(t, logs, 3)
	assert.Equal(t, enums.ChangeTypeAdded, logs[0].ChangeType)
	assert.Equal(t, 10, logs[0].Quantity)
	assert.Equal(t, enums.ChangeTypeAdded, logs[1].ChangeType)
	assert.Equal(t, 5, logs[1].Quantity)
	assert.Equal(t, enums.ChangeTypeRemoved, logs[2].ChangeType)
	assert.Equal(t, 6, logs[2].Quantity)
}

func TestUpdateProductSameQuantityNoLog(t *testing.T) {
	svc, conn := setupProductTestService(t)
	user := mustCreateProductUser(t, conn)

	created, err := svc.Create(context.Background(), user.ID, CreateInput{
		Name: "Stapler", SKU: "STP-001", Quantity: 4, Price: decimal.NewFromInt(3),
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), user.ID, created.ID, UpdateInput{
		Name: "Stapler Pro", SKU: "STP-001", Quantity: 4, Price: decimal.NewFromInt(4),
	})
	require.NoError(t, err)

	// only the creation movement is logged
	assert.Len(t, productLogs(t, conn, created.ID), 1)
}

func TestUpdateProductSKUExcludesSelf(t *testing.T) {
	svc, conn := setupProductTestService(t)
	user := mustCreateProductUser(t, conn)

	created, err := svc.Create(context.Background(), user.ID, CreateInput{
		Name: "Chair", SKU: "CHR-001", Price: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	// keeping its own sku is not a conflict
	_, err = svc.Update(context.Background(), user.ID, created.ID, UpdateInput{
		Name: "Chair Deluxe", SKU: "CHR-001", Price: decimal.NewFromInt(60),
	})
	require.NoError(t, err)

	other, err := svc.Create(context.Background(), user.ID, CreateInput{
		Name: "Stool", SKU: "STL-001", Price: decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), user.ID, other.ID, UpdateInput{
		Name: "Stool", SKU: "CHR-001", Price: decimal.NewFromInt(20),
	})
	require.Error(t, err)
	assert.Contains(t, pkgerrors.As(err).Fields(), "sku")
}

func TestUpdateProductNotOwned(t *testing.T) {
	svc, conn := setupProductTestService(t)
	owner := mustCreateProductUser(t, conn)
	stranger := mustCreateProductUser(t, conn)

	created, err := svc.Create(context.Background(), owner.ID, CreateInput{
		Name: "Safe", SKU: "SAFE-001", Price: decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), stranger.ID, created.ID, UpdateInput{
		Name: "Safe", SKU: "SAFE-001", Price: decimal.NewFromInt(1),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestDeleteProductRemovesHistory(t *testing.T) {
	svc, conn := setupProductTestService(t)
	user := mustCreateProductUser(t, conn)

	created, err := svc.Create(context.Background(), user.ID, CreateInput{
		Name: "Cable", SKU: "CBL-001", Quantity: 30, Price: decimal.NewFromInt(2),
	})
	require.NoError(t, err)

	order := &models.Order{
		ID:        uuid.New(),
		ProductID: created.ID,
		Quantity:  2,
		Status:    enums.OrderStatusPending,
		UserID:    user.ID,
	}
	require.NoError(t, conn.Create(order).Error)

	require.NoError(t, svc.Delete(context.Background(), user.ID, created.ID))

	var count int64
	require.NoError(t, conn.Model(&models.Product{}).Where("id = ?", created.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, conn.Model(&models.InventoryLog{}).Where("product_id = ?", created.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, conn.Model(&models.Order{}).Where("product_id = ?", created.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListProductsFilterByCategory(t *testing.T) {
	svc, conn := setupProductTestService(t)
	user := mustCreateProductUser(t, conn)
	category := mustCreateProductCategory(t, conn, user.ID, fmt.Sprintf("Cat %s", uuid.NewString()))

	_, err := svc.Create(context.Background(), user.ID, CreateInput{
		Name: "Inside", SKU: "IN-001", Price: decimal.NewFromInt(1), CategoryID: &category.ID,
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), user.ID, CreateInput{
		Name: "Outside", SKU: "OUT-001", Price: decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	all, err := svc.List(context.Background(), user.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.List(context.Background(), user.ID, &category.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Inside", filtered[0].Name)
	assert.Equal(t, category.Name, filtered[0].CategoryName)
}
