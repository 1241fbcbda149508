package services

import (
	"context"
	"time"

	"github.com/danuarta/go-marketplace/app/domain"
	"github.com/danuarta/go-marketplace/app/models"
	"github.com/danuarta/go-marketplace/app/repositories"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest is the validated product-creation DTO. Field-level
// constraints live in the validate tags; cross-entity rules are enforced in
// the service before the repository is touched.
type CreateProductRequest struct {
	SellerID          string                   `json:"sellerId" validate:"required"`
	CategoryID        *string                  `json:"categoryId"`
	Name              string                   `json:"name" validate:"required,max=255"`
	Slug              string                   `json:"slug" validate:"required,max=255"`
	Description       string                   `json:"description"`
	ShortDescription  string                   `json:"shortDescription" validate:"max=500"`
	Price             decimal.Decimal          `json:"price"`
	ComparePrice      *decimal.Decimal         `json:"comparePrice"`
	CostPrice         *decimal.Decimal         `json:"costPrice"`
	SKU               *string                  `json:"sku"`
	StockQuantity     int                      `json:"stockQuantity" validate:"gte=0"`
	LowStockThreshold *int                     `json:"lowStockThreshold"`
	TrackInventory    *bool                    `json:"trackInventory"`
	AllowBackorders   bool                     `json:"allowBackorders"`
	Weight            *decimal.Decimal         `json:"weight"`
	Dimensions        *models.Dimensions       `json:"dimensions"`
	Images            models.ImageList         `json:"images" validate:"max=5"`
	Status            models.ProductStatus     `json:"status"`
	Visibility        models.ProductVisibility `json:"visibility"`
	Password          string                   `json:"password"`
	Tags              models.StringList        `json:"tags"`
	Attributes        models.JSONMap           `json:"attributes"`
}

type UpdateProductRequest struct {
	ActorID string                `json:"-"`
	Changes models.ProductChanges `json:"-"`
}

type CreateCategoryRequest struct {
	Name           string  `json:"name" validate:"required,max=100"`
	Slug           string  `json:"slug" validate:"required,max=100"`
	Description    string  `json:"description"`
	ImageURL       *string `json:"imageUrl"`
	ParentID       *string `json:"parentId"`
	SortOrder      int     `json:"sortOrder" validate:"gte=0"`
	SeoTitle       *string `json:"seoTitle"`
	SeoDescription *string `json:"seoDescription"`
	SeoKeywords    *string `json:"seoKeywords"`
	IsActive       *bool   `json:"isActive"`
}

// ProductResponse is the read model handed to the HTTP layer.
type ProductResponse struct {
	ID                 string                   `json:"id"`
	SellerID           string                   `json:"sellerId"`
	CategoryID         *string                  `json:"categoryId"`
	Name               string                   `json:"name"`
	Slug               string                   `json:"slug"`
	Description        string                   `json:"description,omitempty"`
	ShortDescription   string                   `json:"shortDescription,omitempty"`
	Price              decimal.Decimal          `json:"price"`
	ComparePrice       *decimal.Decimal         `json:"comparePrice,omitempty"`
	SKU                *string                  `json:"sku,omitempty"`
	StockQuantity      int                      `json:"stockQuantity"`
	Status             models.ProductStatus     `json:"status"`
	Visibility         models.ProductVisibility `json:"visibility"`
	Images             models.ImageList         `json:"images,omitempty"`
	MainImage          *models.ProductImage     `json:"mainImage,omitempty"`
	Tags               models.StringList        `json:"tags,omitempty"`
	Attributes         models.JSONMap           `json:"attributes,omitempty"`
	IsAvailable        bool                     `json:"isAvailable"`
	IsOnSale           bool                     `json:"isOnSale"`
	DiscountPercentage int                      `json:"discountPercentage"`
	AverageRating      decimal.Decimal          `json:"averageRating"`
	ReviewCount        int                      `json:"reviewCount"`
	ViewCount          int                      `json:"viewCount"`
	CreatedAt          time.Time                `json:"createdAt"`
	UpdatedAt          time.Time                `json:"updatedAt"`
}

func NewProductResponse(p *models.Product) *ProductResponse {
	return &ProductResponse{
		ID:                 p.ID,
		SellerID:           p.SellerID,
		CategoryID:         p.CategoryID,
		Name:               p.Name,
		Slug:               p.Slug,
		Description:        p.Description,
		ShortDescription:   p.ShortDescription,
		Price:              p.Price,
		ComparePrice:       p.ComparePrice,
		SKU:                p.SKU,
		StockQuantity:      p.StockQuantity,
		Status:             p.Status,
		Visibility:         p.Visibility,
		Images:             p.SortedImages(),
		MainImage:          p.MainImage(),
		Tags:               p.Tags,
		Attributes:         p.Attributes,
		IsAvailable:        p.IsAvailable(),
		IsOnSale:           p.IsOnSale(),
		DiscountPercentage: p.DiscountPercentage(),
		AverageRating:      p.AverageRating,
		ReviewCount:        p.ReviewCount,
		ViewCount:          p.ViewCount,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// CatalogService is the thin use-case layer over the product and category
// repositories: it validates cross-entity business rules the entities cannot
// see and fails fast before touching the store when possible.
type CatalogService struct {
	productRepo  repositories.ProductRepositoryImpl
	categoryRepo repositories.CategoryRepositoryImpl
	log          *zap.Logger
}

func NewCatalogService(
	productRepo repositories.ProductRepositoryImpl,
	categoryRepo repositories.CategoryRepositoryImpl,
	log *zap.Logger,
) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		log:          log,
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	taken, err := s.productRepo.SlugExists(ctx, req.Slug, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.NewConflictError("product", "slug already exists")
	}

	if req.SKU != nil && *req.SKU != "" {
		taken, err := s.productRepo.SKUExists(ctx, *req.SKU, "")
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.NewConflictError("product", "sku already exists")
		}
	}

	if req.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *req.CategoryID)
		if err != nil {
			if domain.IsNotFound(err) {
				return nil, domain.NewValidationError("product", "categoryId", "category does not exist")
			}
			return nil, err
		}
		if !category.IsActive {
			return nil, domain.NewValidationError("product", "categoryId", "category is not active")
		}
	}

	if req.ComparePrice != nil && !req.ComparePrice.GreaterThan(req.Price) {
		return nil, domain.NewValidationError("product", "comparePrice", "must exceed price")
	}
	if req.CostPrice != nil && !req.CostPrice.LessThan(req.Price) {
		return nil, domain.NewValidationError("product", "costPrice", "should be lower than price")
	}

	product, err := models.NewProduct(models.NewProductInput{
		SellerID:          req.SellerID,
		CategoryID:        req.CategoryID,
		Name:              req.Name,
		Slug:              req.Slug,
		Description:       req.Description,
		ShortDescription:  req.ShortDescription,
		Price:             req.Price,
		ComparePrice:      req.ComparePrice,
		CostPrice:         req.CostPrice,
		SKU:               req.SKU,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
		TrackInventory:    req.TrackInventory,
		AllowBackorders:   req.AllowBackorders,
		Weight:            req.Weight,
		Dimensions:        req.Dimensions,
		Images:            req.Images,
		Status:            req.Status,
		Visibility:        req.Visibility,
		Password:          req.Password,
		Tags:              req.Tags,
		Attributes:        req.Attributes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.log.Info("product created",
		zap.String("product_id", product.ID),
		zap.String("seller_id", product.SellerID),
		zap.String("slug", product.Slug))

	return NewProductResponse(product), nil
}

// GetProductByID bumps the view counter; a failed bump is logged, never
// surfaced, since the read itself succeeded.
func (s *CatalogService) GetProductByID(ctx context.Context, id string) (*ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.IncrementViewCount(ctx, product.ID); err != nil {
		s.log.Warn("failed to increment view count", zap.String("product_id", product.ID), zap.Error(err))
	}
	return NewProductResponse(product), nil
}

func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*ProductResponse, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.IncrementViewCount(ctx, product.ID); err != nil {
		s.log.Warn("failed to increment view count", zap.String("product_id", product.ID), zap.Error(err))
	}
	return NewProductResponse(product), nil
}

// UpdateProduct enforces ownership: only the owning seller or an admin may
// mutate a product.
func (s *CatalogService) UpdateProduct(ctx context.Context, productID, actorID, actorRole string, changes models.ProductChanges) (*ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.SellerID != actorID && actorRole != models.RoleAdmin {
		return nil, domain.NewValidationError("product", "sellerId", "only the owning seller may modify this product")
	}

	if changes.Slug != nil {
		taken, err := s.productRepo.SlugExists(ctx, *changes.Slug, productID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.NewConflictError("product", "slug already exists")
		}
	}
	if changes.SKU != nil && *changes.SKU != "" {
		taken, err := s.productRepo.SKUExists(ctx, *changes.SKU, productID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.NewConflictError("product", "sku already exists")
		}
	}

	updated, err := s.productRepo.Update(ctx, productID, changes)
	if err != nil {
		return nil, err
	}
	return NewProductResponse(updated), nil
}

// DeleteProduct soft-deletes; the row survives but every read path treats it
// as gone.
func (s *CatalogService) DeleteProduct(ctx context.Context, productID, actorID, actorRole string) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product.SellerID != actorID && actorRole != models.RoleAdmin {
		return domain.NewValidationError("product", "sellerId", "only the owning seller may delete this product")
	}
	return s.productRepo.SoftDelete(ctx, productID)
}

func (s *CatalogService) ListProducts(ctx context.Context, filters repositories.ProductFilters, opts repositories.ListOptions) (*repositories.ProductPage, error) {
	return s.productRepo.GetByFilters(ctx, filters, opts)
}

func (s *CatalogService) SearchProducts(ctx context.Context, keyword string, opts repositories.ListOptions) (*repositories.ProductPage, error) {
	return s.productRepo.Search(ctx, keyword, opts)
}

func (s *CatalogService) GetFeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	return s.productRepo.GetFeaturedProducts(ctx, limit)
}

func (s *CatalogService) GetRelatedProducts(ctx context.Context, productID string, limit int) ([]models.Product, error) {
	return s.productRepo.GetRelatedProducts(ctx, productID, limit)
}

func (s *CatalogService) GetLowStockProducts(ctx context.Context, sellerID string) ([]models.Product, error) {
	return s.productRepo.GetLowStockProducts(ctx, sellerID)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*models.Category, error) {
	taken, err := s.categoryRepo.SlugExists(ctx, req.Slug, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.NewConflictError("category", "slug already exists")
	}

	if req.ParentID != nil {
		parent, err := s.categoryRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			if domain.IsNotFound(err) {
				return nil, domain.NewValidationError("category", "parentId", "parent category does not exist")
			}
			return nil, err
		}
		if parent.Level+1 > models.MaxCategoryDepth {
			return nil, domain.NewValidationError("category", "parentId", "parent is at the maximum nesting depth")
		}
	}

	category, err := s.categoryRepo.Create(ctx, models.NewCategoryInput{
		Name:           req.Name,
		Slug:           req.Slug,
		Description:    req.Description,
		ImageURL:       req.ImageURL,
		ParentID:       req.ParentID,
		SortOrder:      req.SortOrder,
		SeoTitle:       req.SeoTitle,
		SeoDescription: req.SeoDescription,
		SeoKeywords:    req.SeoKeywords,
		IsActive:       req.IsActive,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("category created",
		zap.String("category_id", category.ID),
		zap.String("slug", category.Slug),
		zap.Int("level", category.Level))

	return category, nil
}

func (s *CatalogService) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

func (s *CatalogService) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.categoryRepo.GetBySlug(ctx, slug)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, changes models.CategoryChanges) (*models.Category, error) {
	if changes.Slug != nil {
		taken, err := s.categoryRepo.SlugExists(ctx, *changes.Slug, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.NewConflictError("category", "slug already exists")
		}
	}
	return s.categoryRepo.Update(ctx, id, changes)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	return s.categoryRepo.Delete(ctx, id)
}

func (s *CatalogService) GetCategoryTree(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.GetCategoryTree(ctx)
}

func (s *CatalogService) GetCategoryChildren(ctx context.Context, parentID string) ([]models.Category, error) {
	return s.categoryRepo.GetChildren(ctx, parentID)
}

func (s *CatalogService) ListCategories(ctx context.Context, filters repositories.CategoryFilters, opts repositories.ListOptions) (*repositories.CategoryPage, error) {
	return s.categoryRepo.GetByFilters(ctx, filters, opts)
}
