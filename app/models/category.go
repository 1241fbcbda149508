package models

import (
	"time"

	"github.com/danuarta/go-marketplace/app/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxCategoryDepth limits the hierarchy: a root sits at level 0 and the
// deepest allowed child at level 4, so a child of a level-4 parent is
// rejected.
const MaxCategoryDepth = 4

// Category is the persisted row and validated entity for the catalog
// hierarchy. Level is derived from the parent chain, never set directly by
// callers: the repository computes it when creating or re-parenting.
type Category struct {
	ID             string     `gorm:"size:36;primaryKey"`
	Name           string     `gorm:"size:100;not null"`
	Slug           string     `gorm:"size:100;not null;uniqueIndex"`
	Description    string     `gorm:"type:text"`
	ImageURL       *string    `gorm:"size:500"`
	ParentID       *string    `gorm:"size:36;index"`
	Parent         *Category  `gorm:"foreignKey:ParentID"`
	Children       []Category `gorm:"foreignKey:ParentID"`
	Level          int        `gorm:"not null;default:0;index"`
	SortOrder      int        `gorm:"not null;default:0"`
	SeoTitle       *string    `gorm:"size:255"`
	SeoDescription *string    `gorm:"size:500"`
	SeoKeywords    *string    `gorm:"size:500"`
	IsActive       bool       `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type NewCategoryInput struct {
	Name           string
	Slug           string
	Description    string
	ImageURL       *string
	ParentID       *string
	Level          int
	SortOrder      int
	SeoTitle       *string
	SeoDescription *string
	SeoKeywords    *string
	IsActive       *bool
}

// NewCategory builds a validated category. IsActive defaults to true.
func NewCategory(input NewCategoryInput) (*Category, error) {
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	now := time.Now()
	category := &Category{
		ID:             uuid.New().String(),
		Name:           input.Name,
		Slug:           input.Slug,
		Description:    input.Description,
		ImageURL:       input.ImageURL,
		ParentID:       input.ParentID,
		Level:          input.Level,
		SortOrder:      input.SortOrder,
		SeoTitle:       input.SeoTitle,
		SeoDescription: input.SeoDescription,
		SeoKeywords:    input.SeoKeywords,
		IsActive:       active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := category.validate(); err != nil {
		return nil, err
	}
	return category, nil
}

func (c *Category) validate() error {
	if c.Name == "" {
		return domain.NewValidationError("category", "name", "is required")
	}
	if c.Slug == "" {
		return domain.NewValidationError("category", "slug", "is required")
	}
	if !slugPattern.MatchString(c.Slug) {
		return domain.NewValidationError("category", "slug", "must be kebab-case")
	}
	if c.Level < 0 {
		return domain.NewValidationError("category", "level", "must not be negative")
	}
	if c.Level > MaxCategoryDepth {
		return domain.NewValidationError("category", "level", "exceeds the maximum nesting depth")
	}
	if c.SortOrder < 0 {
		return domain.NewValidationError("category", "sortOrder", "must not be negative")
	}
	if c.ParentID == nil && c.Level != 0 {
		return domain.NewValidationError("category", "level", "must be 0 for a root category")
	}
	if c.ParentID != nil && c.Level == 0 {
		return domain.NewValidationError("category", "level", "must be above 0 for a child category")
	}
	return nil
}

// CategoryChanges is the closed set of fields a partial update may touch.
// ParentID/ClearParent drive a re-parent: the repository recomputes Level
// from the new parent before persisting.
type CategoryChanges struct {
	Name           *string
	Slug           *string
	Description    *string
	ImageURL       *string
	ParentID       *string
	ClearParent    bool
	SortOrder      *int
	SeoTitle       *string
	SeoDescription *string
	SeoKeywords    *string
	IsActive       *bool
}

func (c CategoryChanges) IsEmpty() bool {
	return c.Name == nil && c.Slug == nil && c.Description == nil &&
		c.ImageURL == nil && c.ParentID == nil && !c.ClearParent &&
		c.SortOrder == nil && c.SeoTitle == nil && c.SeoDescription == nil &&
		c.SeoKeywords == nil && c.IsActive == nil
}

// Update returns a new validated copy with the supplied changes applied.
// level is the (re)computed hierarchy level for the resulting parent.
func (c *Category) Update(changes CategoryChanges, level int) (*Category, error) {
	next := *c
	if changes.Name != nil {
		next.Name = *changes.Name
	}
	if changes.Slug != nil {
		next.Slug = *changes.Slug
	}
	if changes.Description != nil {
		next.Description = *changes.Description
	}
	if changes.ImageURL != nil {
		next.ImageURL = changes.ImageURL
	}
	if changes.ClearParent {
		next.ParentID = nil
	} else if changes.ParentID != nil {
		next.ParentID = changes.ParentID
	}
	next.Level = level
	if changes.SortOrder != nil {
		next.SortOrder = *changes.SortOrder
	}
	if changes.SeoTitle != nil {
		next.SeoTitle = changes.SeoTitle
	}
	if changes.SeoDescription != nil {
		next.SeoDescription = changes.SeoDescription
	}
	if changes.SeoKeywords != nil {
		next.SeoKeywords = changes.SeoKeywords
	}
	if changes.IsActive != nil {
		next.IsActive = *changes.IsActive
	}
	next.UpdatedAt = time.Now()

	if err := next.validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

func (c *Category) IsRootCategory() bool {
	return c.ParentID == nil && c.Level == 0
}

func (c *Category) IsChildCategory() bool {
	return c.ParentID != nil && c.Level > 0
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
