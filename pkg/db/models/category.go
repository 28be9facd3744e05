package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups products per owner. (name, user_id) is unique.
type Category struct {
	ID     uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name   string    `gorm:"column:name;not null;uniqueIndex:uq_categories_name_user"`
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_categories_name_user"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
