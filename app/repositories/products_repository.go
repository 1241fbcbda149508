package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/danuarta/go-marketplace/app/domain"
	"github.com/danuarta/go-marketplace/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilters compose conjunctively; the zero value matches everything.
type ProductFilters struct {
	SellerID   string
	CategoryID string
	Status     models.ProductStatus
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	InStock    *bool
	Search     string
	Tags       []string
}

// ProductPage is one page of products plus the pagination envelope.
type ProductPage struct {
	Products   []models.Product
	Pagination Pagination
}

type ProductRepositoryImpl interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	Update(ctx context.Context, id string, changes models.ProductChanges) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
	GetAll(ctx context.Context, opts ListOptions) (*ProductPage, error)
	GetByFilters(ctx context.Context, filters ProductFilters, opts ListOptions) (*ProductPage, error)
	GetBySeller(ctx context.Context, sellerID string, opts ListOptions) (*ProductPage, error)
	GetByCategory(ctx context.Context, categoryID string, opts ListOptions) (*ProductPage, error)
	Search(ctx context.Context, keyword string, opts ListOptions) (*ProductPage, error)
	GetRelatedProducts(ctx context.Context, id string, limit int) ([]models.Product, error)
	GetFeaturedProducts(ctx context.Context, limit int) ([]models.Product, error)
	ReserveStock(ctx context.Context, id string, quantity int) (bool, error)
	ReleaseStock(ctx context.Context, id string, quantity int) error
	UpdateStock(ctx context.Context, id string, quantity int) error
	IncrementViewCount(ctx context.Context, id string) error
	UpdateRating(ctx context.Context, id string, rating decimal.Decimal, reviewCount int) error
	GetLowStockProducts(ctx context.Context, sellerID string) ([]models.Product, error)
	Exists(ctx context.Context, id string) (bool, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	SKUExists(ctx context.Context, sku, excludeID string) (bool, error)
	CountByFilters(ctx context.Context, filters ProductFilters) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepositoryImpl {
	return &productRepository{db}
}

// productSortColumns whitelists the sortable columns so user-supplied sort
// keys never reach the SQL text.
var productSortColumns = map[string]string{
	"name":           "name",
	"price":          "price",
	"created_at":     "created_at",
	"updated_at":     "updated_at",
	"stock_quantity": "stock_quantity",
	"average_rating": "average_rating",
	"view_count":     "view_count",
}

var minFeaturedRating = decimal.NewFromFloat(4.0)

func (p *productRepository) Create(ctx context.Context, product *models.Product) error {
	if err := p.db.WithContext(ctx).Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("product", "slug or sku already exists")
		}
		return err
	}
	return nil
}

func (p *productRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return p.getBy(ctx, "id = ?", id)
}

func (p *productRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return p.getBy(ctx, "slug = ?", slug)
}

func (p *productRepository) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	return p.getBy(ctx, "sku = ?", sku)
}

func (p *productRepository) getBy(ctx context.Context, query string, value string) (*models.Product, error) {
	var product models.Product
	err := p.db.WithContext(ctx).Where(query, value).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("product", value)
		}
		return nil, err
	}
	return &product, nil
}

// Update loads the current row, revalidates it with the changes applied and
// writes only the supplied columns.
func (p *productRepository) Update(ctx context.Context, id string, changes models.ProductChanges) (*models.Product, error) {
	if changes.IsEmpty() {
		return nil, domain.NewValidationError("product", "update", "no fields supplied")
	}

	existing, err := p.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := existing.Update(changes)
	if err != nil {
		return nil, err
	}

	columns := buildProductUpdates(changes)
	columns["updated_at"] = updated.UpdatedAt

	err = p.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(columns).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.NewConflictError("product", "slug or sku already exists")
		}
		return nil, err
	}
	return updated, nil
}

// buildProductUpdates maps the closed change set onto columns. Keeping the
// mapping explicit keeps field-to-column drift statically checkable.
func buildProductUpdates(changes models.ProductChanges) map[string]interface{} {
	columns := map[string]interface{}{}
	if changes.CategoryID != nil {
		columns["category_id"] = changes.CategoryID
	}
	if changes.Name != nil {
		columns["name"] = *changes.Name
	}
	if changes.Slug != nil {
		columns["slug"] = *changes.Slug
	}
	if changes.Description != nil {
		columns["description"] = *changes.Description
	}
	if changes.ShortDescription != nil {
		columns["short_description"] = *changes.ShortDescription
	}
	if changes.Price != nil {
		columns["price"] = *changes.Price
	}
	if changes.ComparePrice != nil {
		columns["compare_price"] = changes.ComparePrice
	}
	if changes.CostPrice != nil {
		columns["cost_price"] = changes.CostPrice
	}
	if changes.SKU != nil {
		columns["sku"] = changes.SKU
	}
	if changes.StockQuantity != nil {
		columns["stock_quantity"] = *changes.StockQuantity
	}
	if changes.LowStockThreshold != nil {
		columns["low_stock_threshold"] = *changes.LowStockThreshold
	}
	if changes.TrackInventory != nil {
		columns["track_inventory"] = *changes.TrackInventory
	}
	if changes.AllowBackorders != nil {
		columns["allow_backorders"] = *changes.AllowBackorders
	}
	if changes.Weight != nil {
		columns["weight"] = changes.Weight
	}
	if changes.Dimensions != nil {
		columns["dimensions"] = changes.Dimensions
	}
	if changes.Images != nil {
		columns["images"] = *changes.Images
	}
	if changes.Status != nil {
		columns["status"] = *changes.Status
	}
	if changes.Visibility != nil {
		columns["visibility"] = *changes.Visibility
	}
	if changes.Password != nil {
		columns["password"] = *changes.Password
	}
	if changes.Tags != nil {
		columns["tags"] = *changes.Tags
	}
	if changes.Attributes != nil {
		columns["attributes"] = *changes.Attributes
	}
	return columns
}

// Delete removes the row permanently, soft-deleted or not.
func (p *productRepository) Delete(ctx context.Context, id string) error {
	tx := p.db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&models.Product{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.NewNotFoundError("product", id)
	}
	return nil
}

// SoftDelete stamps deleted_at and forces the status to inactive in a single
// update; every read path excludes the row from then on.
func (p *productRepository) SoftDelete(ctx context.Context, id string) error {
	tx := p.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted_at": time.Now(),
		"status":     models.ProductStatusInactive,
	})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.NewNotFoundError("product", id)
	}
	return nil
}

func (p *productRepository) GetAll(ctx context.Context, opts ListOptions) (*ProductPage, error) {
	return p.GetByFilters(ctx, ProductFilters{}, opts)
}

func (p *productRepository) GetByFilters(ctx context.Context, filters ProductFilters, opts ListOptions) (*ProductPage, error) {
	opts = opts.normalized()

	var total int64
	if err := p.filtered(ctx, filters).Count(&total).Error; err != nil {
		return nil, err
	}

	var products []models.Product
	err := p.filtered(ctx, filters).
		Order(opts.orderClause(productSortColumns)).
		Limit(opts.Limit).
		Offset(opts.offset()).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	return &ProductPage{Products: products, Pagination: newPagination(opts, total)}, nil
}

func (p *productRepository) GetBySeller(ctx context.Context, sellerID string, opts ListOptions) (*ProductPage, error) {
	return p.GetByFilters(ctx, ProductFilters{SellerID: sellerID}, opts)
}

func (p *productRepository) GetByCategory(ctx context.Context, categoryID string, opts ListOptions) (*ProductPage, error) {
	return p.GetByFilters(ctx, ProductFilters{CategoryID: categoryID}, opts)
}

func (p *productRepository) Search(ctx context.Context, keyword string, opts ListOptions) (*ProductPage, error) {
	return p.GetByFilters(ctx, ProductFilters{Search: keyword}, opts)
}

func (p *productRepository) CountByFilters(ctx context.Context, filters ProductFilters) (int64, error) {
	var total int64
	err := p.filtered(ctx, filters).Count(&total).Error
	return total, err
}

func (p *productRepository) filtered(ctx context.Context, filters ProductFilters) *gorm.DB {
	tx := p.db.WithContext(ctx).Model(&models.Product{})
	if filters.SellerID != "" {
		tx = tx.Where("seller_id = ?", filters.SellerID)
	}
	if filters.CategoryID != "" {
		tx = tx.Where("category_id = ?", filters.CategoryID)
	}
	if filters.Status != "" {
		tx = tx.Where("status = ?", filters.Status)
	}
	if filters.MinPrice != nil {
		tx = tx.Where("price >= ?", filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		tx = tx.Where("price <= ?", filters.MaxPrice)
	}
	if filters.InStock != nil {
		if *filters.InStock {
			tx = tx.Where("(track_inventory = ? OR stock_quantity > 0)", false)
		} else {
			tx = tx.Where("track_inventory = ? AND stock_quantity <= 0", true)
		}
	}
	if filters.Search != "" {
		keyword := "%" + strings.ToLower(filters.Search) + "%"
		tx = tx.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", keyword, keyword)
	}
	for _, tag := range filters.Tags {
		// Tags live in a JSON column; a quoted LIKE match finds the exact
		// list element without needing vendor-specific JSON operators.
		tx = tx.Where("tags LIKE ?", `%"`+tag+`"%`)
	}
	return tx
}

// GetRelatedProducts ranks same-category matches above tag-only matches,
// then by rating and recency. The source product itself, inactive and
// soft-deleted rows are excluded.
func (p *productRepository) GetRelatedProducts(ctx context.Context, id string, limit int) ([]models.Product, error) {
	source, err := p.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if source.CategoryID == nil && len(source.Tags) == 0 {
		return []models.Product{}, nil
	}

	tx := p.db.WithContext(ctx).Model(&models.Product{}).
		Where("id != ?", source.ID).
		Where("status = ?", models.ProductStatusActive)

	var match *gorm.DB
	if source.CategoryID != nil {
		match = p.db.Where("category_id = ?", *source.CategoryID)
	}
	for _, tag := range source.Tags {
		tagCond := p.db.Where("tags LIKE ?", `%"`+tag+`"%`)
		if match == nil {
			match = tagCond
		} else {
			match = match.Or(tagCond)
		}
	}
	tx = tx.Where(match)

	if source.CategoryID != nil {
		tx = tx.Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                "CASE WHEN category_id = ? THEN 0 ELSE 1 END, average_rating DESC, created_at DESC",
			Vars:               []interface{}{*source.CategoryID},
			WithoutParentheses: true,
		}})
	} else {
		tx = tx.Order("average_rating DESC, created_at DESC")
	}

	var products []models.Product
	if err := tx.Limit(limit).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (p *productRepository) GetFeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := p.db.WithContext(ctx).Model(&models.Product{}).
		Where("status = ?", models.ProductStatusActive).
		Where("average_rating >= ?", minFeaturedRating).
		Order("average_rating DESC, review_count DESC, created_at DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// ReserveStock is the one engineered ordering guarantee in this core: a
// single conditional decrement guarded by the current stock level. The store
// serializes concurrent decrements per row, and a reservation that would
// drive stock negative affects zero rows, which reports as a clean failure.
// Products that do not track inventory reserve without touching stock.
func (p *productRepository) ReserveStock(ctx context.Context, id string, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, domain.NewValidationError("product", "quantity", "must be positive")
	}

	tx := p.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND track_inventory = ? AND stock_quantity >= ?", id, true, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if tx.Error != nil {
		return false, tx.Error
	}
	if tx.RowsAffected > 0 {
		return true, nil
	}

	var untracked int64
	err := p.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND track_inventory = ?", id, false).
		Count(&untracked).Error
	if err != nil {
		return false, err
	}
	return untracked > 0, nil
}

// ReleaseStock is the unconditional inverse increment, used to compensate a
// failed downstream step.
func (p *productRepository) ReleaseStock(ctx context.Context, id string, quantity int) error {
	if quantity <= 0 {
		return domain.NewValidationError("product", "quantity", "must be positive")
	}

	tx := p.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND track_inventory = ?", id, true).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return p.mustExist(ctx, id)
	}
	return nil
}

// UpdateStock is an absolute administrative set, not a reservation.
func (p *productRepository) UpdateStock(ctx context.Context, id string, quantity int) error {
	if quantity < 0 {
		return domain.NewValidationError("product", "stockQuantity", "must not be negative")
	}

	tx := p.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock_quantity", quantity)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return p.mustExist(ctx, id)
	}
	return nil
}

func (p *productRepository) IncrementViewCount(ctx context.Context, id string) error {
	tx := p.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.NewNotFoundError("product", id)
	}
	return nil
}

func (p *productRepository) UpdateRating(ctx context.Context, id string, rating decimal.Decimal, reviewCount int) error {
	if rating.IsNegative() || rating.GreaterThan(decimal.NewFromInt(5)) {
		return domain.NewValidationError("product", "averageRating", "must be between 0 and 5")
	}
	if reviewCount < 0 {
		return domain.NewValidationError("product", "reviewCount", "must not be negative")
	}

	tx := p.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"average_rating": rating,
			"review_count":   reviewCount,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return p.mustExist(ctx, id)
	}
	return nil
}

func (p *productRepository) GetLowStockProducts(ctx context.Context, sellerID string) ([]models.Product, error) {
	tx := p.db.WithContext(ctx).Model(&models.Product{}).
		Where("track_inventory = ?", true).
		Where("stock_quantity <= low_stock_threshold")
	if sellerID != "" {
		tx = tx.Where("seller_id = ?", sellerID)
	}

	var products []models.Product
	err := tx.Order("stock_quantity ASC").Find(&products).Error
	return products, err
}

func (p *productRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (p *productRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return p.uniqueProbe(ctx, "slug = ?", slug, excludeID)
}

func (p *productRepository) SKUExists(ctx context.Context, sku, excludeID string) (bool, error) {
	if sku == "" {
		return false, nil
	}
	return p.uniqueProbe(ctx, "sku = ?", sku, excludeID)
}

func (p *productRepository) uniqueProbe(ctx context.Context, query, value, excludeID string) (bool, error) {
	tx := p.db.WithContext(ctx).Model(&models.Product{}).Where(query, value)
	if excludeID != "" {
		tx = tx.Where("id != ?", excludeID)
	}
	var count int64
	err := tx.Count(&count).Error
	return count > 0, err
}

// mustExist turns a zero-rows-affected update into NotFound only when the
// row is actually missing; a no-op write against an existing row succeeds.
func (p *productRepository) mustExist(ctx context.Context, id string) error {
	exists, err := p.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewNotFoundError("product", id)
	}
	return nil
}
