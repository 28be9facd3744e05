package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/mrivera-dev/stockroom-backend/pkg/db/models"
	"github.com/mrivera-dev/stockroom-backend/pkg/enums"
)

// LogDTO is the public representation of a log entry. Product name and
// SKU ride along so the history reads without extra lookups.
type LogDTO struct {
	ID          uuid.UUID        `json:"id"`
	ProductID   uuid.UUID        `json:"product_id"`
	ProductName string           `json:"product_name"`
	ProductSKU  string           `json:"product_sku"`
	ChangeType  enums.ChangeType `json:"change_type"`
	Quantity    int              `json:"quantity"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewLogDTO maps a log row to its public shape.
func NewLogDTO(log *models.InventoryLog) LogDTO {
	dto := LogDTO{
		ID:         log.ID,
		ProductID:  log.ProductID,
		ChangeType: log.ChangeType,
		Quantity:   log.Quantity,
		CreatedAt:  log.CreatedAt,
	}
	if log.Product != nil {
		dto.ProductName = log.Product.Name
		dto.ProductSKU = log.Product.SKU
	}
	return dto
}
