package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrivera-dev/stockroom-backend/pkg/db/models"
)

// DTO is the public representation of a product. CategoryName is
// denormalized for display; it is empty when the product has no category.
type DTO struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Description  string          `json:"description"`
	CategoryID   *uuid.UUID      `json:"category_id"`
	CategoryName string          `json:"category_name,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewDTO maps a product model to its public shape.
func NewDTO(product *models.Product) DTO {
	dto := DTO{
		ID:          product.ID,
		Name:        product.Name,
		SKU:         product.SKU,
		Quantity:    product.Quantity,
		Price:       product.Price,
		Description: product.Description,
		CategoryID:  product.CategoryID,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
	if product.Category != nil {
		dto.CategoryName = product.Category.Name
	}
	return dto
}
