package repositories

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/danuarta/go-marketplace/app/domain"
	"github.com/danuarta/go-marketplace/app/models"
	"github.com/shopspring/decimal"
)

func TestProductCreateDuplicateSlug(t *testing.T) {
	repo := NewProductRepository(testDB(t))

	mustCreateProduct(t, repo, activeProductInput("gaming-mouse"))

	dup, err := models.NewProduct(activeProductInput("gaming-mouse"))
	if err != nil {
		t.Fatalf("NewProduct: %v", err)
	}
	if err := repo.Create(context.Background(), dup); !domain.IsConflict(err) {
		t.Errorf("expected conflict on duplicate slug, got %v", err)
	}
}

func TestProductGetByIDNotFound(t *testing.T) {
	repo := NewProductRepository(testDB(t))

	if _, err := repo.GetByID(context.Background(), "missing"); !domain.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestProductGetBySlugAndSKU(t *testing.T) {
	repo := NewProductRepository(testDB(t))
	ctx := context.Background()

	input := activeProductInput("usb-hub")
	sku := "HUB-001"
	input.SKU = &sku
	created := mustCreateProduct(t, repo, input)

	bySlug, err := repo.GetBySlug(ctx, "usb-hub")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if bySlug.ID != created.ID {
		t.Errorf("GetBySlug returned %s, want %s", bySlug.ID, created.ID)
	}

	bySKU, err := repo.GetBySKU(ctx, "HUB-001")
	if err != nil {
		t.Fatalf("GetBySKU: %v", err)
	}
	if bySKU.ID != created.ID {
		t.Errorf("GetBySKU returned %s, want %s", bySKU.ID, created.ID)
	}
}

func TestProductUpdatePartial(t *testing.T) {
	repo := NewProductRepository(testDB(t))
	ctx := context.Background()

	created := mustCreateProduct(t, repo, activeProductInput("ssd-drive"))

	newName := "Fast SSD"
	newPrice := decimal.NewFromInt(250000)
	updated, err := repo.Update(ctx, created.ID, models.ProductChanges{
		Name:  &newName,
		Price: &newPrice,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != newName || !updated.Price.Equal(newPrice) {
		t.Errorf("update not applied: %q %s", updated.Name, updated.Price)
	}

	reloaded, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.Name != newName {
		t.Errorf("persisted name = %q, want %q", reloaded.Name, newName)
	}
	// Untouched fields survive.
	if reloaded.Slug != "ssd-drive" || reloaded.StockQuantity != 10 {
		t.Errorf("untouched fields changed: slug=%q stock=%d", reloaded.Slug, reloaded.StockQuantity)
	}
}

func TestProductUpdateEmptyChanges(t *testing.T) {
	repo := NewProductRepository(testDB(t))

	created := mustCreateProduct(t, repo, activeProductInput("hdmi-cable"))
	if _, err := repo.Update(context.Background(), created.ID, models.ProductChanges{}); !domain.IsValidation(err) {
		t.Errorf("expected validation error on empty changes, got %v", err)
	}
}

func TestProductSoftDeleteExcludesFromReads(t *testing.T) {
	repo := NewProductRepository(testDB(t))
	ctx := context.Background()

	created := mustCreateProduct(t, repo, activeProductInput("webcam"))

	if err := repo.SoftDelete(ctx, created.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	if _, err := repo.GetByID(ctx, created.ID); !domain.IsNotFound(err) {
		t.Errorf("soft-deleted product should be invisible, got %v", err)
	}

	page, err := repo.GetAll(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if page.Pagination.Total != 0 {
		t.Errorf("soft-deleted product still counted: total = %d", page.Pagination.Total)
	}

	// Hard delete still reaches the row.
	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Errorf("Delete after soft delete: %v", err)
	}
}

func TestProductPaginationContract(t *testing.T) {
	repo := NewProductRepository(testDB(t))
	ctx := context.Background()

	for i := 0; i < 45; i++ {
		mustCreateProduct(t, repo, activeProductInput(fmt.Sprintf("item-%02d", i)))
	}

	page, err := repo.GetAll(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	p := page.Pagination
	if p.Page != 1 || p.Limit != 20 {
		t.Errorf("defaults: page=%d limit=%d, want 1/20", p.Page, p.Limit)
	}
	if p.Total != 45 || p.TotalPages != 3 {
		t.Errorf("total=%d totalPages=%d, want 45/3", p.Total, p.TotalPages)
	}
	if !p.HasNextPage || p.HasPreviousPage {
		t.Errorf("page 1: hasNext=%v hasPrev=%v", p.HasNextPage, p.HasPreviousPage)
	}
	if len(page.Products) != 20 {
		t.Errorf("page 1 item count = %d, want 20", len(page.Products))
	}

	last, err := repo.GetAll(ctx, ListOptions{Page: 3})
	if err != nil {
		t.Fatalf("GetAll page 3: %v", err)
	}
	if len(last.Products) != 5 {
		t.Errorf("last page item count = %d, want 5", len(last.Products))
	}
	if last.Pagination.HasNextPage || !last.Pagination.HasPreviousPage {
		t.Errorf("page 3: hasNext=%v hasPrev=%v", last.Pagination.HasNextPage, last.Pagination.HasPreviousPage)
	}

	empty, err := repo.GetAll(ctx, ListOptions{Page: 9})
	if err != nil {
		t.Fatalf("GetAll page 9: %v", err)
	}
	if len(empty.Products) != 0 {
		t.Errorf("out-of-range page returned %d items", len(empty.Products))
	}
}

func TestProductSortWhitelist(t *testing.T) {
	repo := NewProductRepository(testDB(t))
	ctx := context.Background()

	cheap := activeProductInput("cheap")
	cheap.Price = decimal.NewFromInt(1000)
	expensive := activeProductInput("expensive")
	expensive.Price = decimal.NewFromInt(9000)
	mustCreateProduct(t, repo, expensive)
	mustCreateProduct(t, repo, cheap)

	page, err := repo.GetAll(ctx, ListOptions{SortBy: "price", SortOrder: "asc"})
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if page.Products[0].Slug != "cheap" {
		t.Errorf("ascending price sort: first = %s", page.Products[0].Slug)
	}

	// An unknown sort key must not leak into SQL; it falls back to created_at.
	if _, err := repo.GetAll(ctx, ListOptions{SortBy: "price; DROP TABLE products"}); err != nil {
		t.Errorf("hostile sort key should fall back, got %v", err)
	}
}

func TestProductFilters(t *testing.T) {
	repo := NewProductRepository(testDB(t))
	ctx := context.Background()

	a := activeProductInput("red-shirt")
	a.Name = "Red Shirt"
	a.Tags = models.StringList{"clothing", "sale"}
	mustCreateProduct(t, repo, a)

	b := activeProductInput("blue-mug")
	b.Name = "Blue Mug"
	b.SellerID = "seller-2"
	b.StockQuantity = 0
	mustCreateProduct(t, repo, b)

	draft := activeProductInput("draft-item")
	draft.Status = models.ProductStatusDraft
	mustCreateProduct(t, repo, draft)

	byStatus, err := repo.GetByFilters(ctx, ProductFilters{Status: models.ProductStatusActive}, ListOptions{})
	if err != nil {
		t.Fatalf("filter by status: %v", err)
	}
	if byStatus.Pagination.Total != 2 {
		t.Errorf("active products = %d, want 2", byStatus.Pagination.Total)
	}

	bySeller, err := repo.GetBySeller(ctx, "seller-2", ListOptions{})
	if err != nil {
		t.Fatalf("filter by seller: %v", err)
	}
	if bySeller.Pagination.Total != 1 || bySeller.Products[0].Slug != "blue-mug" {
		t.Errorf("seller filter wrong: %+v", bySeller.Products)
	}

	inStock := true
	stocked, err := repo.GetByFilters(ctx, ProductFilters{InStock: &inStock}, ListOptions{})
	if err != nil {
		t.Fatalf("filter in stock: %v", err)
	}
	for _, p := range stocked.Products {
		if p.Slug == "blue-mug" {
			t.Error("zero-stock tracked product returned by in-stock filter")
		}
	}

	search, err := repo.Search(ctx, "red", ListOptions{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if search.Pagination.Total != 1 || search.Products[0].Slug != "red-shirt" {
		t.Errorf("search results wrong: %+v", search.Products)
	}

	tagged, err := repo.GetByFilters(ctx, ProductFilters{Tags: []string{"sale"}}, ListOptions{})
	if err != nil {
		t.Fatalf("filter by tag: %v", err)
	}
	if tagged.Pagination.Total != 1 || tagged.Products[0].Slug != "red-shirt" {
		t.Errorf("tag filter wrong: %+v", tagged.Products)
	}
}

func TestReserveStock(t *testing.T) {
	repo := NewProductRepository(testDB(t))
	ctx := context.Background()

	input := activeProductInput("limited-item")
	input.StockQuantity = 5
	created := mustCreateProduct(t, repo, input)

	ok, err := repo.ReserveStock(ctx, created.ID, 3)
	if err != nil || !ok {
		t.Fatalf("ReserveStock(3) = %v, %v; want success", ok, err)
	}

	ok, err = repo.ReserveStock(ctx, created.ID, 3)
	if err != nil {
		t.Fatalf("ReserveStock: %v", err)
	}
	if ok {
		t.Error("reservation beyond remaining stock must fail")
	}

	reloaded, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.StockQuantity != 2 {
		t.Errorf("stock after failed over-reserve = %d, want 2", reloaded.StockQuantity)
	}

	if _, err := repo.ReserveStock(ctx, created.ID, 0); !domain.IsValidation(err) {
		t.Errorf("zero quantity should be a validation error, got %v", err)
	}
}

func TestReserveStockUntracked(t *testing.T) {
	repo := NewProductRepository(testDB(t))
	ctx := context.Background()

	track := false
	input := activeProductInput("untracked-item")
	input.StockQuantity = 0
	input.TrackInventory = &track
	created := mustCreateProduct(t, repo, input)

	ok, err := repo.ReserveStock(ctx, created.ID, 100)
	if err != nil || !ok {
		t.Fatalf("untracked reserve = %v, %v; want success", ok, err)
	}

	reloaded, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.StockQuantity != 0 {
		t.Errorf("untracked reserve touched stock: %d", reloaded.StockQuantity)
	}
}

// TestReserveStockConcurrent drives more reservations at a product than it
// has stock; exactly stockQuantity of them may win and stock must end at
// zero, never negative.
func TestReserveStockConcurrent(t *testing.T) {
	repo := NewProductRepository(testDB(t))
	ctx := context.Background()

	const stock = 5
	const attempts = 20

	input := activeProductInput("contended-item")
	input.StockQuantity = stock
	created := mustCreateProduct(t, repo, input)

	var wg sync.WaitGroup
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.ReserveStock(ctx, created.ID, 1)
			if err != nil {
				t.Errorf("ReserveStock: %v", err)
				return
			}
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for ok := range results {
		if ok {
			wins++
		}
	}
	if wins != stock {
		t.Errorf("successful reservations = %d, want %d", wins, stock)
	}

	reloaded, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.StockQuantity != 0 {
		t.Errorf("final stock = %d, want 0", reloaded.StockQuantity)
	}
}

func TestReleaseStock(t *testing.T) {
	repo := NewProductRepository(testDB(t))
	ctx := context.Background()

	input := activeProductInput("returnable-item")
	input.StockQuantity = 2
	created := mustCreateProduct(t, repo, input)

	if err := repo.ReleaseStock(ctx, created.ID, 3); err != nil {
		t.Fatalf("ReleaseStock: %v", err)
	}

	reloaded, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.StockQuantity != 5 {
		t.Errorf("stock after release = %d, want 5", reloaded.StockQuantity)
	}

	if err := repo.ReleaseStock(ctx, "missing", 1); !domain.IsNotFound(err) {
		t.Errorf("release on missing product: %v", err)
	}
}

func TestIncrementViewCount(t *testing.T) {
	repo := NewProductRepository(testDB(t))
	ctx := context.Background()

	created := mustCreateProduct(t, repo, activeProductInput("viewed-item"))
	for i := 0; i < 3; i++ {
		if err := repo.IncrementViewCount(ctx, created.ID); err != nil {
			t.Fatalf("IncrementViewCount: %v", err)
		}
	}

	reloaded, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.ViewCount != 3 {
		t.Errorf("view count = %d, want 3", reloaded.ViewCount)
	}
}

func TestGetLowStockProducts(t *testing.T) {
	repo := NewProductRepository(testDB(t))
	ctx := context.Background()

	low := activeProductInput("low-item")
	low.StockQuantity = 3
	mustCreateProduct(t, repo, low)

	healthy := activeProductInput("healthy-item")
	healthy.StockQuantity = 50
	mustCreateProduct(t, repo, healthy)

	track := false
	untracked := activeProductInput("untracked-low")
	untracked.StockQuantity = 0
	untracked.TrackInventory = &track
	mustCreateProduct(t, repo, untracked)

	products, err := repo.GetLowStockProducts(ctx, "")
	if err != nil {
		t.Fatalf("GetLowStockProducts: %v", err)
	}
	if len(products) != 1 || products[0].Slug != "low-item" {
		t.Errorf("low stock results wrong: %+v", products)
	}
}

func TestSlugAndSKUExists(t *testing.T) {
	repo := NewProductRepository(testDB(t))
	ctx := context.Background()

	input := activeProductInput("probe-item")
	sku := "PROBE-1"
	input.SKU = &sku
	created := mustCreateProduct(t, repo, input)

	if taken, _ := repo.SlugExists(ctx, "probe-item", ""); !taken {
		t.Error("SlugExists should report the existing slug")
	}
	if taken, _ := repo.SlugExists(ctx, "probe-item", created.ID); taken {
		t.Error("SlugExists must ignore the excluded product")
	}
	if taken, _ := repo.SKUExists(ctx, "PROBE-1", ""); !taken {
		t.Error("SKUExists should report the existing sku")
	}
	if taken, _ := repo.SKUExists(ctx, "", ""); taken {
		t.Error("empty sku never counts as taken")
	}
}

func TestGetRelatedProducts(t *testing.T) {
	db := testDB(t)
	repo := NewProductRepository(db)
	catRepo := NewCategoryRepository(db)
	ctx := context.Background()

	category := mustCreateCategory(t, catRepo, models.NewCategoryInput{Name: "Audio", Slug: "audio"})
	other := mustCreateCategory(t, catRepo, models.NewCategoryInput{Name: "Video", Slug: "video"})

	source := activeProductInput("headphones")
	source.CategoryID = &category.ID
	source.Tags = models.StringList{"wireless"}
	created := mustCreateProduct(t, repo, source)

	sameCat := activeProductInput("earbuds")
	sameCat.CategoryID = &category.ID
	mustCreateProduct(t, repo, sameCat)

	taggedOnly := activeProductInput("wireless-cam")
	taggedOnly.CategoryID = &other.ID
	taggedOnly.Tags = models.StringList{"wireless"}
	mustCreateProduct(t, repo, taggedOnly)

	unrelated := activeProductInput("tripod")
	unrelated.CategoryID = &other.ID
	mustCreateProduct(t, repo, unrelated)

	related, err := repo.GetRelatedProducts(ctx, created.ID, 10)
	if err != nil {
		t.Fatalf("GetRelatedProducts: %v", err)
	}
	if len(related) != 2 {
		t.Fatalf("related count = %d, want 2", len(related))
	}
	// Category matches rank above tag-only matches.
	if related[0].Slug != "earbuds" {
		t.Errorf("first related = %s, want earbuds", related[0].Slug)
	}
	for _, p := range related {
		if p.ID == created.ID {
			t.Error("source product returned as its own relation")
		}
	}
}

func TestGetFeaturedProducts(t *testing.T) {
	repo := NewProductRepository(testDB(t))
	ctx := context.Background()

	rated := mustCreateProduct(t, repo, activeProductInput("crowd-favorite"))
	if err := repo.UpdateRating(ctx, rated.ID, decimal.RequireFromString("4.5"), 12); err != nil {
		t.Fatalf("UpdateRating: %v", err)
	}
	mustCreateProduct(t, repo, activeProductInput("unrated"))

	featured, err := repo.GetFeaturedProducts(ctx, 10)
	if err != nil {
		t.Fatalf("GetFeaturedProducts: %v", err)
	}
	if len(featured) != 1 || featured[0].Slug != "crowd-favorite" {
		t.Errorf("featured results wrong: %+v", featured)
	}
}
