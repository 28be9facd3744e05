package categories

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrivera-dev/stockroom-backend/pkg/db"
	"github.com/mrivera-dev/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/mrivera-dev/stockroom-backend/pkg/errors"
)

type repository interface {
	WithTx(tx *gorm.DB) *Repository
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	Save(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id, userID uuid.UUID) (*models.Category, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Category, error)
	DetachProducts(ctx context.Context, categoryID, userID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service implements category workflows. Categories are private to their
// owner; another user's ids behave as if they do not exist.
type Service struct {
	repo     repository
	dbClient txRunner
}

// NewService builds the category service.
func NewService(repo repository, dbClient txRunner) *Service {
	return &Service{repo: repo, dbClient: dbClient}
}

// CreateInput is the payload to create a category.
type CreateInput struct {
	Name string `json:"name" validate:"required,max=120"`
}

// UpdateInput is the payload to rename a category.
type UpdateInput struct {
	Name string `json:"name" validate:"required,max=120"`
}

// Create adds a category for the caller. Names are unique per owner.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*DTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required").
			WithField("name", "this field is required")
	}

	category := &models.Category{Name: name, UserID: userID}
	created, err := s.repo.Create(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name already in use").
				WithField("name", "a category with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}

	dto := NewDTO(created)
	return &dto, nil
}

// Update renames an owner-scoped category.
func (s *Service) Update(ctx context.Context, userID, categoryID uuid.UUID, input UpdateInput) (*DTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required").
			WithField("name", "this field is required")
	}

	category, err := s.repo.FindByID(ctx, categoryID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	category.Name = name
	if err := s.repo.Save(ctx, category); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name already in use").
				WithField("name", "a category with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}

	dto := NewDTO(category)
	return &dto, nil
}

// Delete removes an owner-scoped category. Products that referenced it
// keep existing with no category.
func (s *Service) Delete(ctx context.Context, userID, categoryID uuid.UUID) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		category, err := repo.FindByID(ctx, categoryID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}
		if err := repo.DetachProducts(ctx, category.ID, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach products")
		}
		if err := repo.Delete(ctx, category); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
		}
		return nil
	})
}

// Get loads a single owner-scoped category.
func (s *Service) Get(ctx context.Context, userID, categoryID uuid.UUID) (*DTO, error) {
	category, err := s.repo.FindByID(ctx, categoryID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	dto := NewDTO(category)
	return &dto, nil
}

// List returns the caller's categories ordered by name.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]DTO, error) {
	rows, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}

	dtos := make([]DTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, NewDTO(&rows[i]))
	}
	return dtos, nil
}
