package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrivera-dev/stockroom-backend/internal/ledger"
	"github.com/mrivera-dev/stockroom-backend/pkg/db/models"
	"github.com/mrivera-dev/stockroom-backend/pkg/enums"
	pkgerrors "github.com/mrivera-dev/stockroom-backend/pkg/errors"
)

type repository interface {
	WithTx(tx *gorm.DB) *Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) ([]models.Order, error)
}

type stockLedger interface {
	WithTx(tx *gorm.DB) *ledger.Repository
	LockProduct(ctx context.Context, productID, userID uuid.UUID) (*models.Product, error)
	ApplyDelta(ctx context.Context, product *models.Product, delta int, reason ledger.Reason) (*models.InventoryLog, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the order lifecycle. Every stock-affecting operation
// runs in a single transaction so an order row and its stock movement
// commit or roll back together.
type Service struct {
	repo     repository
	ledger   stockLedger
	dbClient txRunner
}

// NewService builds the order service.
func NewService(repo repository, stock stockLedger, dbClient txRunner) *Service {
	return &Service{repo: repo, ledger: stock, dbClient: dbClient}
}

// CreateInput is the payload to place an order.
type CreateInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// UpdateInput is the payload to change an order. Nil fields keep their
// current value.
type UpdateInput struct {
	ProductID *uuid.UUID `json:"product_id"`
	Quantity  *int       `json:"quantity"`
	Status    *string    `json:"status"`
}

// Create places an order: the product's stock is decremented and a Sold
// movement logged in the same transaction that inserts the order row.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*DTO, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order quantity must be positive").
			WithField("quantity", "must be greater than 0")
	}

	var created *models.Order
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		led := s.ledger.WithTx(tx)

		product, err := led.LockProduct(ctx, input.ProductID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if _, err := led.ApplyDelta(ctx, product, -input.Quantity, ledger.ReasonOrderSold); err != nil {
			return err
		}

		order := &models.Order{
			ProductID: product.ID,
			Quantity:  input.Quantity,
			Status:    enums.OrderStatusPending,
			UserID:    userID,
		}
		if _, err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, created.ID)
}

// Update changes an order's product, quantity, or status. A product or
// quantity change restores the old stock, then consumes the new amount;
// if the new product cannot cover it the whole transaction rolls back and
// nothing moves. Status transitions only go forward.
func (s *Service) Update(ctx context.Context, userID, orderID uuid.UUID, input UpdateInput) (*DTO, error) {
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		led := s.ledger.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if input.Status != nil {
			status, err := enums.ParseOrderStatus(*input.Status)
			if err != nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
					WithField("status", fmt.Sprintf("must be one of %s, %s, %s",
						enums.OrderStatusPending, enums.OrderStatusShipped, enums.OrderStatusCompleted))
			}
			if !order.Status.CanTransitionTo(status) {
				return pkgerrors.New(pkgerrors.CodeInvalidState,
					fmt.Sprintf("cannot move order from %s back to %s", order.Status, status))
			}
			order.Status = status
		}

		newProductID := order.ProductID
		if input.ProductID != nil {
			newProductID = *input.ProductID
		}
		newQuantity := order.Quantity
		if input.Quantity != nil {
			if *input.Quantity <= 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "order quantity must be positive").
					WithField("quantity", "must be greater than 0")
			}
			newQuantity = *input.Quantity
		}

		// Stock only moves when the order's product or quantity changes.
		if newProductID != order.ProductID || newQuantity != order.Quantity {
			oldProduct, err := led.LockProduct(ctx, order.ProductID, userID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load current product")
			}
			if _, err := led.ApplyDelta(ctx, oldProduct, order.Quantity, ledger.ReasonOrderRestored); err != nil {
				return err
			}

			newProduct := oldProduct
			if newProductID != order.ProductID {
				newProduct, err = led.LockProduct(ctx, newProductID, userID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
					}
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
				}
			}
			if _, err := led.ApplyDelta(ctx, newProduct, -newQuantity, ledger.ReasonOrderSold); err != nil {
				return err
			}

			order.ProductID = newProductID
			order.Quantity = newQuantity
			order.Product = nil
		}

		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, orderID)
}

// Delete cancels a pending order and returns its stock. Shipped and
// completed orders stay on the books.
func (s *Service) Delete(ctx context.Context, userID, orderID uuid.UUID) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		led := s.ledger.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeInvalidState,
				fmt.Sprintf("cannot delete a %s order", order.Status))
		}

		product, err := led.LockProduct(ctx, order.ProductID, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if _, err := led.ApplyDelta(ctx, product, order.Quantity, ledger.ReasonOrderRestored); err != nil {
			return err
		}
		if err := repo.Delete(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return nil
	})
}

// Get loads a single owner-scoped order.
func (s *Service) Get(ctx context.Context, userID, orderID uuid.UUID) (*DTO, error) {
	order, err := s.repo.FindByID(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	dto := NewDTO(order)
	return &dto, nil
}

// List returns the caller's orders, optionally filtered by the product's
// category.
func (s *Service) List(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) ([]DTO, error) {
	rows, err := s.repo.List(ctx, userID, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	dtos := make([]DTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, NewDTO(&rows[i]))
	}
	return dtos, nil
}
