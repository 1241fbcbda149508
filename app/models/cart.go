package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartStatus string

const (
	CartStatusActive CartStatus = "active"
)

// Cart holds no aggregate totals: they are recomputed from the items on
// every read. The composite unique index on (user_id, status) makes "at most
// one active cart per user" a store-enforced invariant, so a concurrent
// first-add loses the insert race cleanly instead of creating a second cart.
type Cart struct {
	ID        string     `gorm:"size:36;primaryKey"`
	UserID    string     `gorm:"size:36;not null;uniqueIndex:idx_carts_user_status"`
	User      *User      `gorm:"foreignKey:UserID"`
	Status    CartStatus `gorm:"size:20;not null;default:'active';uniqueIndex:idx_carts_user_status"`
	CartItems []CartItem `gorm:"foreignKey:CartID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
