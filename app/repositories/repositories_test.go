package repositories

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/danuarta/go-marketplace/app/models"
	"github.com/danuarta/go-marketplace/app/models/migrations"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testDB opens a throwaway sqlite database. A single connection keeps
// concurrent test writers queued instead of hitting SQLITE_BUSY.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := migrations.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func mustCreateProduct(t *testing.T, repo ProductRepositoryImpl, input models.NewProductInput) *models.Product {
	t.Helper()

	product, err := models.NewProduct(input)
	if err != nil {
		t.Fatalf("failed to build product: %v", err)
	}
	if err := repo.Create(context.Background(), product); err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return product
}

func activeProductInput(slug string) models.NewProductInput {
	return models.NewProductInput{
		SellerID:      "seller-1",
		Name:          "Product " + slug,
		Slug:          slug,
		Price:         decimal.NewFromInt(100000),
		StockQuantity: 10,
		Status:        models.ProductStatusActive,
	}
}

func mustCreateCategory(t *testing.T, repo CategoryRepositoryImpl, input models.NewCategoryInput) *models.Category {
	t.Helper()

	category, err := repo.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	return category
}
