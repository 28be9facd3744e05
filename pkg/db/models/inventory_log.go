package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrivera-dev/stockroom-backend/pkg/enums"
)

// InventoryLog records an immutable stock movement. Rows are append-only;
// nothing updates or deletes them in normal operation.
type InventoryLog struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID        `gorm:"column:product_id;type:uuid;not null"`
	Product    *Product         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	ChangeType enums.ChangeType `gorm:"column:change_type;type:inventory_change_type;not null"`
	Quantity   int              `gorm:"column:quantity;not null"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (l *InventoryLog) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
