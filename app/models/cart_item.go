package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItem is one line of a cart. UnitPrice is snapshotted when the line is
// written; TotalPrice is always UnitPrice × Quantity. The unique index on
// (cart_id, product_id) backs merge-on-add: a product can never occupy two
// lines of the same cart.
type CartItem struct {
	ID         string          `gorm:"size:36;primaryKey"`
	CartID     string          `gorm:"size:36;not null;uniqueIndex:idx_cart_items_cart_product"`
	Cart       *Cart           `gorm:"foreignKey:CartID"`
	ProductID  string          `gorm:"size:36;not null;uniqueIndex:idx_cart_items_cart_product"`
	Product    *Product        `gorm:"foreignKey:ProductID"`
	Quantity   int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(16,2);not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(16,2);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (ci *CartItem) BeforeCreate(tx *gorm.DB) error {
	if ci.ID == "" {
		ci.ID = uuid.New().String()
	}
	return nil
}
