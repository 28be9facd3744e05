package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrivera-dev/stockroom-backend/pkg/db/models"
	"github.com/mrivera-dev/stockroom-backend/pkg/enums"
	"github.com/mrivera-dev/stockroom-backend/pkg/errors"
)

// Reason classifies why a stock level is changing. The reason together
// with the delta sign determines the change type recorded on the log row.
type Reason string

const (
	// ReasonExplicitEdit covers stock set directly through the product API.
	ReasonExplicitEdit Reason = "explicit_edit"
	// ReasonOrderSold covers stock consumed by an order.
	ReasonOrderSold Reason = "order_sold"
	// ReasonOrderRestored covers stock returned by an order being
	// deleted or repointed.
	ReasonOrderRestored Reason = "order_restored"
)

// Repository is the only component allowed to mutate product quantities.
// Every write pairs the new quantity with an appended log row on the same
// transaction, so the log replays to the current stock level.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a ledger repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// LockProduct loads an owner-scoped product for update. On Postgres the
// row is locked with FOR UPDATE so concurrent order writers serialize;
// SQLite serializes writes on its own, so the clause is skipped there.
func (r *Repository) LockProduct(ctx context.Context, productID, userID uuid.UUID) (*models.Product, error) {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var product models.Product
	err := q.First(&product, "id = ? AND user_id = ?", productID, userID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ApplyDelta adjusts the product's quantity by delta and appends the
// matching log row. A zero delta is a no-op and writes nothing. A delta
// that would take the quantity negative is rejected before any write.
// The product struct is updated in place on success.
func (r *Repository) ApplyDelta(ctx context.Context, product *models.Product, delta int, reason Reason) (*models.InventoryLog, error) {
	if delta == 0 {
		return nil, nil
	}

	newQuantity := product.Quantity + delta
	if newQuantity < 0 {
		return nil, errors.New(
			errors.CodeInsufficientStock,
			fmt.Sprintf("insufficient stock for product %q: have %d, need %d", product.Name, product.Quantity, -delta),
		)
	}

	changeType, err := changeTypeFor(reason, delta)
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("quantity", newQuantity).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "update product quantity")
	}
	product.Quantity = newQuantity

	log := &models.InventoryLog{
		ProductID:  product.ID,
		ChangeType: changeType,
		Quantity:   abs(delta),
	}
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "append inventory log")
	}
	return log, nil
}

// changeTypeFor maps a reason and delta sign to the recorded change type.
// Order consumption is always Sold; everything else is Added or Removed
// by sign.
func changeTypeFor(reason Reason, delta int) (enums.ChangeType, error) {
	switch reason {
	case ReasonOrderSold:
		if delta >= 0 {
			return "", errors.New(errors.CodeInternal, "order consumption requires a negative delta")
		}
		return enums.ChangeTypeSold, nil
	case ReasonOrderRestored:
		if delta <= 0 {
			return "", errors.New(errors.CodeInternal, "order restoration requires a positive delta")
		}
		return enums.ChangeTypeAdded, nil
	case ReasonExplicitEdit:
		if delta > 0 {
			return enums.ChangeTypeAdded, nil
		}
		return enums.ChangeTypeRemoved, nil
	default:
		return "", errors.New(errors.CodeInternal, fmt.Sprintf("unknown ledger reason %q", reason))
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
