package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrivera-dev/stockroom-backend/pkg/enums"
)

// Order reserves stock from its product while it exists. The reserved units
// are reflected directly in Product.Quantity, not held separately.
type Order struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID         `gorm:"column:product_id;type:uuid;not null"`
	Product   *Product          `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Quantity  int               `gorm:"column:quantity;not null"`
	Status    enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'Pending'"`
	UserID    uuid.UUID         `gorm:"column:user_id;type:uuid;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
