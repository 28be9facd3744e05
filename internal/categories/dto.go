package categories

import (
	"github.com/google/uuid"

	"github.com/mrivera-dev/stockroom-backend/pkg/db/models"
)

// DTO is the public representation of a category.
type DTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// NewDTO maps a category model to its public shape.
func NewDTO(category *models.Category) DTO {
	return DTO{
		ID:   category.ID,
		Name: category.Name,
	}
}
