package products

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mrivera-dev/stockroom-backend/internal/ledger"
	"github.com/mrivera-dev/stockroom-backend/pkg/db"
	"github.com/mrivera-dev/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/mrivera-dev/stockroom-backend/pkg/errors"
)

type repository interface {
	WithTx(tx *gorm.DB) *Repository
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Save(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id, userID uuid.UUID) (*models.Product, error)
	List(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) ([]models.Product, error)
	SKUExists(ctx context.Context, userID uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error)
	CategoryExists(ctx context.Context, categoryID, userID uuid.UUID) (bool, error)
	DeleteLogs(ctx context.Context, productID uuid.UUID) error
	DeleteOrders(ctx context.Context, productID uuid.UUID) error
}

type stockLedger interface {
	WithTx(tx *gorm.DB) *ledger.Repository
	LockProduct(ctx context.Context, productID, userID uuid.UUID) (*models.Product, error)
	ApplyDelta(ctx context.Context, product *models.Product, delta int, reason ledger.Reason) (*models.InventoryLog, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service implements product workflows. All stock movement funnels
// through the ledger so the log stays consistent with quantities.
type Service struct {
	repo     repository
	ledger   stockLedger
	dbClient txRunner
}

// NewService builds the product service.
func NewService(repo repository, stock stockLedger, dbClient txRunner) *Service {
	return &Service{repo: repo, ledger: stock, dbClient: dbClient}
}

// CreateInput is the payload to create a product.
type CreateInput struct {
	Name        string          `json:"name" validate:"required,max=200"`
	SKU         string          `json:"sku" validate:"required,max=64"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description" validate:"max=2000"`
	CategoryID  *uuid.UUID      `json:"category_id"`
}

// UpdateInput is the payload to replace a product's fields.
type UpdateInput struct {
	Name        string          `json:"name" validate:"required,max=200"`
	SKU         string          `json:"sku" validate:"required,max=64"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description" validate:"max=2000"`
	CategoryID  *uuid.UUID      `json:"category_id"`
}

// Create adds a product for the caller. A non-zero initial quantity is
// recorded in the log as an Added movement inside the same transaction.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*DTO, error) {
	if err := validateFields(input.SKU, input.Price); err != nil {
		return nil, err
	}

	var created *models.Product
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		led := s.ledger.WithTx(tx)

		taken, err := repo.SKUExists(ctx, userID, strings.TrimSpace(input.SKU), nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sku")
		}
		if taken {
			return skuTakenError()
		}
		if err := checkCategory(ctx, repo, input.CategoryID, userID); err != nil {
			return err
		}

		product := &models.Product{
			Name:        strings.TrimSpace(input.Name),
			SKU:         strings.TrimSpace(input.SKU),
			Quantity:    0,
			Price:       input.Price,
			Description: input.Description,
			UserID:      userID,
			CategoryID:  input.CategoryID,
		}
		if _, err := repo.Create(ctx, product); err != nil {
			if db.IsUniqueViolation(err) {
				return skuTakenError()
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}
		if _, err := led.ApplyDelta(ctx, product, input.Quantity, ledger.ReasonExplicitEdit); err != nil {
			return err
		}
		created = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.toDTO(ctx, created, userID)
}

// Update replaces a product's fields. A quantity change flows through the
// ledger and appends an Added or Removed movement for the difference.
func (s *Service) Update(ctx context.Context, userID, productID uuid.UUID, input UpdateInput) (*DTO, error) {
	if err := validateFields(input.SKU, input.Price); err != nil {
		return nil, err
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		led := s.ledger.WithTx(tx)

		product, err := led.LockProduct(ctx, productID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		sku := strings.TrimSpace(input.SKU)
		taken, err := repo.SKUExists(ctx, userID, sku, &product.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sku")
		}
		if taken {
			return skuTakenError()
		}
		if err := checkCategory(ctx, repo, input.CategoryID, userID); err != nil {
			return err
		}

		product.Name = strings.TrimSpace(input.Name)
		product.SKU = sku
		product.Price = input.Price
		product.Description = input.Description
		product.CategoryID = input.CategoryID
		product.Category = nil
		if err := repo.Save(ctx, product); err != nil {
			if db.IsUniqueViolation(err) {
				return skuTakenError()
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}

		_, err = led.ApplyDelta(ctx, product, input.Quantity-product.Quantity, ledger.ReasonExplicitEdit)
		return err
	})
	if err != nil {
		return nil, err
	}

	product, err := s.repo.FindByID(ctx, productID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
	}
	dto := NewDTO(product)
	return &dto, nil
}

// Delete removes an owner-scoped product together with its log history.
func (s *Service) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := repo.FindByID(ctx, productID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if err := repo.DeleteLogs(ctx, product.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product logs")
		}
		if err := repo.DeleteOrders(ctx, product.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product orders")
		}
		if err := repo.Delete(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
		}
		return nil
	})
}

// Get loads a single owner-scoped product.
func (s *Service) Get(ctx context.Context, userID, productID uuid.UUID) (*DTO, error) {
	product, err := s.repo.FindByID(ctx, productID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	dto := NewDTO(product)
	return &dto, nil
}

// List returns the caller's products, optionally filtered by category.
func (s *Service) List(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) ([]DTO, error) {
	rows, err := s.repo.List(ctx, userID, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	dtos := make([]DTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, NewDTO(&rows[i]))
	}
	return dtos, nil
}

func (s *Service) toDTO(ctx context.Context, product *models.Product, userID uuid.UUID) (*DTO, error) {
	if product.CategoryID != nil && product.Category == nil {
		reloaded, err := s.repo.FindByID(ctx, product.ID, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
		}
		product = reloaded
	}
	dto := NewDTO(product)
	return &dto, nil
}

func validateFields(sku string, price decimal.Decimal) error {
	if strings.TrimSpace(sku) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sku is required").
			WithField("sku", "this field is required")
	}
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative").
			WithField("price", "must be greater than or equal to 0")
	}
	return nil
}

func skuTakenError() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "sku already in use").
		WithField("sku", "a product with this sku already exists")
}

func checkCategory(ctx context.Context, repo *Repository, categoryID *uuid.UUID, userID uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	ok, err := repo.CategoryExists(ctx, *categoryID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown category").
			WithField("category_id", "category does not exist")
	}
	return nil
}
