package ledger

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

	"github.com/mrivera-dev/stockroom-backend/pkg/db/models"
	"github.com/mrivera-dev/stockroom-backend/pkg/enums"
	pkgerrors "github.com/mrivera-dev/stockroom-backend/pkg/errors"
	"github.com/mrivera-dev/stockroom-backend/pkg/pagination"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	products := `
CREATE TABLE IF NOT EXISTS products (
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
);`
	logs := `
CREATE TABLE IF NOT EXISTS inventory_logs (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  change_type TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(logs).Error)
	return db
}

func newTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Username:     fmt.Sprintf("user_%s", uuid.NewString()),
		Email:        "ledger@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newTestProduct(t *testing.T, db *gorm.DB, userID uuid.UUID, quantity int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:       uuid.New(),
		Name:     "Widget",
		SKU:      fmt.Sprintf("SKU-%s", uuid.NewString()),
		Quantity: quantity,
		Price:    decimal.NewFromFloat(9.99),
		UserID:   userID,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestApplyDeltaZeroIsNoOp(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	user := newTestUser(t, db)
	product := newTestProduct(t, db, user.ID, 5)

	log, err := repo.ApplyDelta(context.Background(), product, 0, ReasonExplicitEdit)
	require.NoError(t, err)
	assert.Nil(t, log)

	var count int64
	require.NoError(t, db.Model(&models.InventoryLog{}).Where("product_id = ?", product.ID).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, 5, product.Quantity)
}

func TestApplyDeltaPairsQuantityWithLog(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	user := newTestUser(t, db)
	product := newTestProduct(t, db, user.ID, 0)

	log, err := repo.ApplyDelta(context.Background(), product, 7, ReasonExplicitEdit)
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Equal(t, enums.ChangeTypeAdded, log.ChangeType)
	assert.Equal(t, 7, log.Quantity)
	assert.Equal(t, 7, product.Quantity)

	var stored models.Product
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 7, stored.Quantity)

	log, err = repo.ApplyDelta(context.Background(), product, -3, ReasonExplicitEdit)
	require.NoError(t, err)
	assert.Equal(t, enums.ChangeTypeRemoved, log.ChangeType)
	assert.Equal(t, 3, log.Quantity)
	assert.Equal(t, 4, product.Quantity)
}

func TestApplyDeltaOrderReasons(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	user := newTestUser(t, db)
	product := newTestProduct(t, db, user.ID, 10)

	sold, err := repo.ApplyDelta(context.Background(), product, -4, ReasonOrderSold)
	require.NoError(t, err)
	assert.Equal(t, enums.ChangeTypeSold, sold.ChangeType)
	assert.Equal(t, 4, sold.Quantity)
	assert.Equal(t, 6, product.Quantity)

	restored, err := repo.ApplyDelta(context.Background(), product, 4, ReasonOrderRestored)
	require.NoError(t, err)
	assert.Equal(t, enums.ChangeTypeAdded, restored.ChangeType)
	assert.Equal(t, 10, product.Quantity)
}

func TestApplyDeltaRejectsNegativeStock(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	user := newTestUser(t, db)
	product := newTestProduct(t, db, user.ID, 2)

	_, err := repo.ApplyDelta(context.Background(), product, -3, ReasonOrderSold)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())

	// no partial writes
	var stored models.Product
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 2, stored.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.InventoryLog{}).Where("product_id = ?", product.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLockProductScopedToOwner(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	owner := newTestUser(t, db)
	stranger := newTestUser(t, db)
	product := newTestProduct(t, db, owner.ID, 5)

	got, err := repo.LockProduct(context.Background(), product.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, got.ID)

	_, err = repo.LockProduct(context.Background(), product.ID, stranger.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListByOwnerPaginates(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo)
	user := newTestUser(t, db)
	product := newTestProduct(t, db, user.ID, 0)

	for i := 1; i <= 3; i++ {
		_, err := repo.ApplyDelta(context.Background(), product, i, ReasonExplicitEdit)
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), user.ID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	require.NotEmpty(t, page.NextCursor)

	next, err := svc.List(context.Background(), user.ID, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, next.Entries, 1)
	assert.Empty(t, next.NextCursor)

	// newest first, no overlap
	seen := map[uuid.UUID]bool{}
	for _, e := range append(page.Entries, next.Entries...) {
		assert.False(t, seen[e.ID])
		seen[e.ID] = true
		assert.Equal(t, product.ID, e.ProductID)
	}
}

func TestListByOwnerExcludesOtherUsers(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo)
	owner := newTestUser(t, db)
	stranger := newTestUser(t, db)
	product := newTestProduct(t, db, owner.ID, 0)

	_, err := repo.ApplyDelta(context.Background(), product, 5, ReasonExplicitEdit)
	require.NoError(t, err)

	page, err := svc.List(context.Background(), stranger.ID, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, page.Entries)
}
