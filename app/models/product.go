package models

import (
	"regexp"
	"sort"
	"time"

	"github.com/danuarta/go-marketplace/app/domain"
	"github.com/danuarta/go-marketplace/app/utils/calc"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductStatusDraft      ProductStatus = "draft"
	ProductStatusActive     ProductStatus = "active"
	ProductStatusInactive   ProductStatus = "inactive"
	ProductStatusOutOfStock ProductStatus = "out_of_stock"
)

type ProductVisibility string

const (
	VisibilityPublic            ProductVisibility = "public"
	VisibilityPrivate           ProductVisibility = "private"
	VisibilityPasswordProtected ProductVisibility = "password_protected"
)

const (
	MaxProductImages         = 5
	DefaultLowStockThreshold = 10
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Product is both the persisted row and the validated catalog entity.
// Instances are treated as immutable: all changes go through Update or
// MarkAsDeleted, which return fresh validated copies.
type Product struct {
	ID                string            `gorm:"size:36;primaryKey"`
	SellerID          string            `gorm:"size:36;not null;index"`
	Seller            *User             `gorm:"foreignKey:SellerID"`
	CategoryID        *string           `gorm:"size:36;index"`
	Category          *Category         `gorm:"foreignKey:CategoryID"`
	Name              string            `gorm:"size:255;not null"`
	Slug              string            `gorm:"size:255;not null;uniqueIndex"`
	Description       string            `gorm:"type:text"`
	ShortDescription  string            `gorm:"size:500"`
	Price             decimal.Decimal   `gorm:"type:decimal(16,2);not null"`
	ComparePrice      *decimal.Decimal  `gorm:"type:decimal(16,2)"`
	CostPrice         *decimal.Decimal  `gorm:"type:decimal(16,2)"`
	SKU               *string           `gorm:"column:sku;size:100;uniqueIndex"`
	StockQuantity     int               `gorm:"not null;default:0"`
	LowStockThreshold int               `gorm:"not null;default:10"`
	TrackInventory    bool              `gorm:"not null;default:true"`
	AllowBackorders   bool              `gorm:"not null;default:false"`
	Weight            *decimal.Decimal  `gorm:"type:decimal(10,2)"`
	Dimensions        *Dimensions       `gorm:"type:json"`
	Images            ImageList         `gorm:"type:json"`
	Status            ProductStatus     `gorm:"size:20;not null;default:'draft';index"`
	Visibility        ProductVisibility `gorm:"size:20;not null;default:'public'"`
	Password          string            `gorm:"size:255"`
	Tags              StringList        `gorm:"type:json"`
	Attributes        JSONMap           `gorm:"type:json"`
	ViewCount         int               `gorm:"not null;default:0"`
	FavoriteCount     int               `gorm:"not null;default:0"`
	AverageRating     decimal.Decimal   `gorm:"type:decimal(3,2);not null;default:0.00"`
	ReviewCount       int               `gorm:"not null;default:0"`
	Variants          []ProductVariant  `gorm:"foreignKey:ProductID"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

// NewProductInput carries everything a caller may set at creation time.
// Zero values fall back to the documented defaults.
type NewProductInput struct {
	SellerID          string
	CategoryID        *string
	Name              string
	Slug              string
	Description       string
	ShortDescription  string
	Price             decimal.Decimal
	ComparePrice      *decimal.Decimal
	CostPrice         *decimal.Decimal
	SKU               *string
	StockQuantity     int
	LowStockThreshold *int
	TrackInventory    *bool
	AllowBackorders   bool
	Weight            *decimal.Decimal
	Dimensions        *Dimensions
	Images            ImageList
	Status            ProductStatus
	Visibility        ProductVisibility
	Password          string
	Tags              StringList
	Attributes        JSONMap
}

// NewProduct builds a validated product. Counters start at zero, status
// defaults to draft and the low-stock threshold to 10.
func NewProduct(input NewProductInput) (*Product, error) {
	threshold := DefaultLowStockThreshold
	if input.LowStockThreshold != nil {
		threshold = *input.LowStockThreshold
	}
	track := true
	if input.TrackInventory != nil {
		track = *input.TrackInventory
	}
	status := input.Status
	if status == "" {
		status = ProductStatusDraft
	}
	visibility := input.Visibility
	if visibility == "" {
		visibility = VisibilityPublic
	}

	now := time.Now()
	product := &Product{
		ID:                uuid.New().String(),
		SellerID:          input.SellerID,
		CategoryID:        input.CategoryID,
		Name:              input.Name,
		Slug:              input.Slug,
		Description:       input.Description,
		ShortDescription:  input.ShortDescription,
		Price:             input.Price,
		ComparePrice:      input.ComparePrice,
		CostPrice:         input.CostPrice,
		SKU:               input.SKU,
		StockQuantity:     input.StockQuantity,
		LowStockThreshold: threshold,
		TrackInventory:    track,
		AllowBackorders:   input.AllowBackorders,
		Weight:            input.Weight,
		Dimensions:        input.Dimensions,
		Images:            input.Images,
		Status:            status,
		Visibility:        visibility,
		Password:          input.Password,
		Tags:              input.Tags,
		Attributes:        input.Attributes,
		AverageRating:     decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := product.validate(); err != nil {
		return nil, err
	}
	return product, nil
}

func (p *Product) validate() error {
	if p.SellerID == "" {
		return domain.NewValidationError("product", "sellerId", "is required")
	}
	if p.Name == "" {
		return domain.NewValidationError("product", "name", "is required")
	}
	if p.Slug == "" {
		return domain.NewValidationError("product", "slug", "is required")
	}
	if len(p.Slug) > 255 {
		return domain.NewValidationError("product", "slug", "must not exceed 255 characters")
	}
	if !slugPattern.MatchString(p.Slug) {
		return domain.NewValidationError("product", "slug", "must be kebab-case")
	}
	if p.Price.IsNegative() {
		return domain.NewValidationError("product", "price", "must not be negative")
	}
	if p.ComparePrice != nil && p.ComparePrice.IsNegative() {
		return domain.NewValidationError("product", "comparePrice", "must not be negative")
	}
	if p.CostPrice != nil && p.CostPrice.IsNegative() {
		return domain.NewValidationError("product", "costPrice", "must not be negative")
	}
	if p.StockQuantity < 0 {
		return domain.NewValidationError("product", "stockQuantity", "must not be negative")
	}
	if p.LowStockThreshold < 0 {
		return domain.NewValidationError("product", "lowStockThreshold", "must not be negative")
	}
	if p.Weight != nil && p.Weight.IsNegative() {
		return domain.NewValidationError("product", "weight", "must not be negative")
	}
	if len(p.Images) > MaxProductImages {
		return domain.NewValidationError("product", "images", "must not exceed 5 entries")
	}
	switch p.Status {
	case ProductStatusDraft, ProductStatusActive, ProductStatusInactive, ProductStatusOutOfStock:
	default:
		return domain.NewValidationError("product", "status", "is not a valid status")
	}
	switch p.Visibility {
	case VisibilityPublic, VisibilityPrivate, VisibilityPasswordProtected:
	default:
		return domain.NewValidationError("product", "visibility", "is not a valid visibility")
	}
	if p.Visibility == VisibilityPasswordProtected && p.Password == "" {
		return domain.NewValidationError("product", "password", "is required for password protected products")
	}
	if p.ViewCount < 0 || p.FavoriteCount < 0 {
		return domain.NewValidationError("product", "counters", "must not be negative")
	}
	if p.AverageRating.IsNegative() || p.AverageRating.GreaterThan(decimal.NewFromInt(5)) {
		return domain.NewValidationError("product", "averageRating", "must be between 0 and 5")
	}
	if p.ReviewCount < 0 {
		return domain.NewValidationError("product", "reviewCount", "must not be negative")
	}
	return nil
}

// ProductChanges is the closed set of fields a partial update may touch.
// A nil pointer means "leave unchanged".
type ProductChanges struct {
	CategoryID        *string
	Name              *string
	Slug              *string
	Description       *string
	ShortDescription  *string
	Price             *decimal.Decimal
	ComparePrice      *decimal.Decimal
	CostPrice         *decimal.Decimal
	SKU               *string
	StockQuantity     *int
	LowStockThreshold *int
	TrackInventory    *bool
	AllowBackorders   *bool
	Weight            *decimal.Decimal
	Dimensions        *Dimensions
	Images            *ImageList
	Status            *ProductStatus
	Visibility        *ProductVisibility
	Password          *string
	Tags              *StringList
	Attributes        *JSONMap
}

// IsEmpty reports whether no field is set.
func (c ProductChanges) IsEmpty() bool {
	return c.CategoryID == nil && c.Name == nil && c.Slug == nil &&
		c.Description == nil && c.ShortDescription == nil && c.Price == nil &&
		c.ComparePrice == nil && c.CostPrice == nil && c.SKU == nil &&
		c.StockQuantity == nil && c.LowStockThreshold == nil &&
		c.TrackInventory == nil && c.AllowBackorders == nil && c.Weight == nil &&
		c.Dimensions == nil && c.Images == nil && c.Status == nil &&
		c.Visibility == nil && c.Password == nil && c.Tags == nil &&
		c.Attributes == nil
}

// Update returns a new validated copy with the supplied changes applied and
// UpdatedAt refreshed. The receiver is never mutated.
func (p *Product) Update(changes ProductChanges) (*Product, error) {
	next := *p
	if changes.CategoryID != nil {
		next.CategoryID = changes.CategoryID
	}
	if changes.Name != nil {
		next.Name = *changes.Name
	}
	if changes.Slug != nil {
		next.Slug = *changes.Slug
	}
	if changes.Description != nil {
		next.Description = *changes.Description
	}
	if changes.ShortDescription != nil {
		next.ShortDescription = *changes.ShortDescription
	}
	if changes.Price != nil {
		next.Price = *changes.Price
	}
	if changes.ComparePrice != nil {
		next.ComparePrice = changes.ComparePrice
	}
	if changes.CostPrice != nil {
		next.CostPrice = changes.CostPrice
	}
	if changes.SKU != nil {
		next.SKU = changes.SKU
	}
	if changes.StockQuantity != nil {
		next.StockQuantity = *changes.StockQuantity
	}
	if changes.LowStockThreshold != nil {
		next.LowStockThreshold = *changes.LowStockThreshold
	}
	if changes.TrackInventory != nil {
		next.TrackInventory = *changes.TrackInventory
	}
	if changes.AllowBackorders != nil {
		next.AllowBackorders = *changes.AllowBackorders
	}
	if changes.Weight != nil {
		next.Weight = changes.Weight
	}
	if changes.Dimensions != nil {
		next.Dimensions = changes.Dimensions
	}
	if changes.Images != nil {
		next.Images = *changes.Images
	}
	if changes.Status != nil {
		next.Status = *changes.Status
	}
	if changes.Visibility != nil {
		next.Visibility = *changes.Visibility
	}
	if changes.Password != nil {
		next.Password = *changes.Password
	}
	if changes.Tags != nil {
		next.Tags = *changes.Tags
	}
	if changes.Attributes != nil {
		next.Attributes = *changes.Attributes
	}
	next.UpdatedAt = time.Now()

	if err := next.validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

// MarkAsDeleted returns a soft-deleted copy: deletion timestamp set and
// status forced to inactive.
func (p *Product) MarkAsDeleted() *Product {
	now := time.Now()
	next := *p
	next.Status = ProductStatusInactive
	next.DeletedAt = gorm.DeletedAt{Time: now, Valid: true}
	next.UpdatedAt = now
	return &next
}

// IsAvailable reports whether the product can currently be purchased.
func (p *Product) IsAvailable() bool {
	if p.Status != ProductStatusActive {
		return false
	}
	return !p.TrackInventory || p.StockQuantity > 0 || p.AllowBackorders
}

func (p *Product) IsOutOfStock() bool {
	return p.TrackInventory && p.StockQuantity <= 0 && !p.AllowBackorders
}

func (p *Product) IsLowStock() bool {
	return p.TrackInventory && p.StockQuantity <= p.LowStockThreshold
}

// IsOnSale reports whether a compare-at price above the selling price is set.
func (p *Product) IsOnSale() bool {
	return p.ComparePrice != nil && p.ComparePrice.GreaterThan(p.Price)
}

// DiscountPercentage returns the rounded sale discount, 0 when not on sale.
func (p *Product) DiscountPercentage() int {
	if !p.IsOnSale() {
		return 0
	}
	return calc.DiscountPercentage(p.Price, *p.ComparePrice)
}

// MainImage returns the image flagged as main, falling back to the first by
// insertion order. Nil when the gallery is empty.
func (p *Product) MainImage() *ProductImage {
	if len(p.Images) == 0 {
		return nil
	}
	for i := range p.Images {
		if p.Images[i].IsMain {
			return &p.Images[i]
		}
	}
	return &p.Images[0]
}

// SortedImages returns a copy of the gallery ordered by SortOrder ascending.
func (p *Product) SortedImages() ImageList {
	images := make(ImageList, len(p.Images))
	copy(images, p.Images)
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].SortOrder < images[j].SortOrder
	})
	return images
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// ProductVariant overrides price/stock/weight/attributes of its parent
// product; unset fields fall back to the parent values.
type ProductVariant struct {
	ID            string           `gorm:"size:36;primaryKey"`
	ProductID     string           `gorm:"size:36;not null;index"`
	Product       *Product         `gorm:"foreignKey:ProductID"`
	Name          string           `gorm:"size:255;not null"`
	SKU           *string          `gorm:"column:sku;size:100;uniqueIndex"`
	Price         *decimal.Decimal `gorm:"type:decimal(16,2)"`
	StockQuantity *int
	Weight        *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Attributes    JSONMap          `gorm:"type:json"`
	IsActive      bool             `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (v *ProductVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

func (v *ProductVariant) EffectivePrice(parent *Product) decimal.Decimal {
	if v.Price != nil {
		return *v.Price
	}
	return parent.Price
}

func (v *ProductVariant) EffectiveStock(parent *Product) int {
	if v.StockQuantity != nil {
		return *v.StockQuantity
	}
	return parent.StockQuantity
}

func (v *ProductVariant) EffectiveWeight(parent *Product) *decimal.Decimal {
	if v.Weight != nil {
		return v.Weight
	}
	return parent.Weight
}

// EffectiveAttributes merges variant attributes over the parent's.
func (v *ProductVariant) EffectiveAttributes(parent *Product) JSONMap {
	if len(v.Attributes) == 0 {
		return parent.Attributes
	}
	merged := make(JSONMap, len(parent.Attributes)+len(v.Attributes))
	for k, val := range parent.Attributes {
		merged[k] = val
	}
	for k, val := range v.Attributes {
		merged[k] = val
	}
	return merged
}
