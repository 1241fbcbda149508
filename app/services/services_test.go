package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/danuarta/go-marketplace/app/models"
	"github.com/danuarta/go-marketplace/app/models/migrations"
	"github.com/danuarta/go-marketplace/app/repositories"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	db           *gorm.DB
	productRepo  repositories.ProductRepositoryImpl
	categoryRepo repositories.CategoryRepositoryImpl
	catalog      *CatalogService
	cart         *CartService
}

func newTestEnv(t *testing.T) *testEnv {
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

	log := zap.NewNop()
	productRepo := repositories.NewProductRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	cartRepo := repositories.NewCartRepository(db)
	cartItemRepo := repositories.NewCartItemRepository(db)

	return &testEnv{
		db:           db,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		catalog:      NewCatalogService(productRepo, categoryRepo, log),
		cart:         NewCartService(cartRepo, cartItemRepo, productRepo, log),
	}
}

func (e *testEnv) mustCreateProduct(t *testing.T, req CreateProductRequest) *ProductResponse {
	t.Helper()

	product, err := e.catalog.CreateProduct(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	return product
}

func activeProductRequest(slug string) CreateProductRequest {
	return CreateProductRequest{
		SellerID:      "seller-1",
		Name:          "Product " + slug,
		Slug:          slug,
		Price:         decimal.NewFromInt(50000),
		StockQuantity: 10,
		Status:        models.ProductStatusActive,
	}
}
