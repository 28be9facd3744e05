package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/mrivera-dev/stockroom-backend/pkg/db/models"
	"github.com/mrivera-dev/stockroom-backend/pkg/enums"
)

// DTO is the public representation of an order. Product name and
// category ride along for display.
type DTO struct {
	ID                  uuid.UUID         `json:"id"`
	ProductID           uuid.UUID         `json:"product_id"`
	ProductName         string            `json:"product_name"`
	ProductCategoryName string            `json:"product_category_name,omitempty"`
	Quantity            int               `json:"quantity"`
	Status              enums.OrderStatus `json:"status"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// NewDTO maps an order model to its public shape.
func NewDTO(order *models.Order) DTO {
	dto := DTO{
		ID:        order.ID,
		ProductID: order.ProductID,
		Quantity:  order.Quantity,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	if order.Product != nil {
		dto.ProductName = order.Product.Name
		if order.Product.Category != nil {
			dto.ProductCategoryName = order.Product.Category.Name
		}
	}
	return dto
}
