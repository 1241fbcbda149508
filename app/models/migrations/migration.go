package migrations

import (
	"github.com/danuarta/go-marketplace/app/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Category{}, &models.Product{}, &models.ProductVariant{}, &models.Cart{}, &models.CartItem{})
}
