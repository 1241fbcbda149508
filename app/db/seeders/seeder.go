package seeders

import (
	"fmt"

	"github.com/danuarta/go-marketplace/app/db/fakers"
	"github.com/danuarta/go-marketplace/app/models"
	"gorm.io/gorm"
)

const (
	seedSellers          = 3
	seedRootCategories   = 4
	seedChildrenPerRoot  = 2
	seedProductsPerChild = 5
)

// DBSeed populates a development database with sellers, a two-level category
// tree and products spread across the leaf categories.
func DBSeed(db *gorm.DB) error {
	var sellers []*models.User
	for i := 0; i < seedSellers; i++ {
		seller := fakers.UserFaker(models.RoleSeller)
		if err := db.Create(seller).Error; err != nil {
			return fmt.Errorf("failed to seed seller: %w", err)
		}
		sellers = append(sellers, seller)
	}

	for i := 0; i < seedRootCategories; i++ {
		root, err := fakers.CategoryFaker(nil)
		if err != nil {
			return fmt.Errorf("failed to build root category: %w", err)
		}
		if err := db.Create(root).Error; err != nil {
			return fmt.Errorf("failed to seed root category: %w", err)
		}

		for j := 0; j < seedChildrenPerRoot; j++ {
			child, err := fakers.CategoryFaker(root)
			if err != nil {
				return fmt.Errorf("failed to build child category: %w", err)
			}
			if err := db.Create(child).Error; err != nil {
				return fmt.Errorf("failed to seed child category: %w", err)
			}

			for k := 0; k < seedProductsPerChild; k++ {
				seller := sellers[k%len(sellers)]
				product, err := fakers.ProductFaker(seller, child)
				if err != nil {
					return fmt.Errorf("failed to build product: %w", err)
				}
				if err := db.Create(product).Error; err != nil {
					return fmt.Errorf("failed to seed product: %w", err)
				}
			}
		}
	}
	return nil
}
