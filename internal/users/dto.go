package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/mrivera-dev/stockroom-backend/pkg/db/models"
)

// DTO is the public representation of a user. The password hash never
// leaves the persistence layer.
type DTO struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDTO maps a user model to its public shape.
func NewDTO(user *models.User) DTO {
	return DTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
