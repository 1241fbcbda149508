package repositories

import (
	"context"
	"testing"

	"github.com/danuarta/go-marketplace/app/domain"
	"github.com/danuarta/go-marketplace/app/models"
	"github.com/shopspring/decimal"
)

func TestGetOrCreateCartIsIdempotent(t *testing.T) {
	repo := NewCartRepository(testDB(t))
	ctx := context.Background()

	first, err := repo.GetOrCreateCartByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetOrCreateCartByUserID: %v", err)
	}
	second, err := repo.GetOrCreateCartByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetOrCreateCartByUserID again: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("got two carts for one user: %s vs %s", first.ID, second.ID)
	}

	if _, err := repo.GetOrCreateCartByUserID(ctx, ""); !domain.IsValidation(err) {
		t.Errorf("empty user id must fail validation, got %v", err)
	}
}

func TestCartItemMergeIndex(t *testing.T) {
	db := testDB(t)
	cartRepo := NewCartRepository(db)
	itemRepo := NewCartItemRepository(db)
	productRepo := NewProductRepository(db)
	ctx := context.Background()

	cart, err := cartRepo.GetOrCreateCartByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetOrCreateCartByUserID: %v", err)
	}
	product := mustCreateProduct(t, productRepo, activeProductInput("cart-item"))

	item := &models.CartItem{
		CartID:     cart.ID,
		ProductID:  product.ID,
		Quantity:   1,
		UnitPrice:  product.Price,
		TotalPrice: product.Price,
	}
	if err := itemRepo.Add(ctx, item); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// A second row for the same (cart, product) violates the merge index.
	dup := &models.CartItem{
		CartID:     cart.ID,
		ProductID:  product.ID,
		Quantity:   2,
		UnitPrice:  product.Price,
		TotalPrice: product.Price.Mul(decimal.NewFromInt(2)),
	}
	if err := itemRepo.Add(ctx, dup); !domain.IsConflict(err) {
		t.Errorf("expected conflict on duplicate cart line, got %v", err)
	}
}

func TestCartItemLifecycle(t *testing.T) {
	db := testDB(t)
	cartRepo := NewCartRepository(db)
	itemRepo := NewCartItemRepository(db)
	productRepo := NewProductRepository(db)
	ctx := context.Background()

	cart, err := cartRepo.GetOrCreateCartByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetOrCreateCartByUserID: %v", err)
	}
	product := mustCreateProduct(t, productRepo, activeProductInput("lifecycle-item"))

	item := &models.CartItem{
		CartID:     cart.ID,
		ProductID:  product.ID,
		Quantity:   2,
		UnitPrice:  product.Price,
		TotalPrice: product.Price.Mul(decimal.NewFromInt(2)),
	}
	if err := itemRepo.Add(ctx, item); err != nil {
		t.Fatalf("Add: %v", err)
	}

	count, err := cartRepo.GetCartItemCount(ctx, cart.ID)
	if err != nil {
		t.Fatalf("GetCartItemCount: %v", err)
	}
	if count != 1 {
		t.Errorf("item count = %d, want 1", count)
	}

	items, err := itemRepo.GetByCartID(ctx, cart.ID)
	if err != nil {
		t.Fatalf("GetByCartID: %v", err)
	}
	if len(items) != 1 || items[0].Product == nil || items[0].Product.Slug != "lifecycle-item" {
		t.Errorf("items not preloaded with product: %+v", items)
	}

	if err := itemRepo.Delete(ctx, cart.ID, product.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := itemRepo.Delete(ctx, cart.ID, product.ID); !domain.IsNotFound(err) {
		t.Errorf("deleting a missing line should be not found, got %v", err)
	}
}
