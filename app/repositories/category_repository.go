package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/danuarta/go-marketplace/app/domain"
	"github.com/danuarta/go-marketplace/app/models"
	"gorm.io/gorm"
)

// CategoryFilters compose conjunctively. RootsOnly is the explicit
// "parent is null" filter; it wins over ParentID when both are set.
type CategoryFilters struct {
	ParentID  string
	RootsOnly bool
	Level     *int
	IsActive  *bool
	Search    string
}

type CategoryPage struct {
	Categories []models.Category
	Pagination Pagination
}

type CategoryRepositoryImpl interface {
	Create(ctx context.Context, input models.NewCategoryInput) (*models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Update(ctx context.Context, id string, changes models.CategoryChanges) (*models.Category, error)
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context) ([]models.Category, error)
	GetByFilters(ctx context.Context, filters CategoryFilters, opts ListOptions) (*CategoryPage, error)
	GetChildren(ctx context.Context, parentID string) ([]models.Category, error)
	GetRootCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryTree(ctx context.Context) ([]models.Category, error)
	UpdateSortOrder(ctx context.Context, id string, sortOrder int) error
	Exists(ctx context.Context, id string) (bool, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepositoryImpl {
	return &categoryRepository{db: db}
}

var categorySortColumns = map[string]string{
	"name":       "name",
	"level":      "level",
	"sort_order": "sort_order",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// treeOrder is the canonical hierarchy-rendering order.
const treeOrder = "level ASC, sort_order ASC, name ASC"

// Create computes the level from the parent's stored level at creation time.
// A parent that later moves does not cascade into existing children.
func (r *categoryRepository) Create(ctx context.Context, input models.NewCategoryInput) (*models.Category, error) {
	input.Level = 0
	if input.ParentID != nil {
		parent, err := r.GetByID(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		input.Level = parent.Level + 1
	}

	category, err := models.NewCategory(input)
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.NewConflictError("category", "slug already exists")
		}
		return nil, err
	}
	return category, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("category", id)
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("category", slug)
		}
		return nil, err
	}
	return &category, nil
}

// Update recomputes the level whenever the parent changes, reading the new
// parent's current level.
func (r *categoryRepository) Update(ctx context.Context, id string, changes models.CategoryChanges) (*models.Category, error) {
	if changes.IsEmpty() {
		return nil, domain.NewValidationError("category", "update", "no fields supplied")
	}

	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	level := existing.Level
	switch {
	case changes.ClearParent:
		level = 0
	case changes.ParentID != nil:
		if *changes.ParentID == id {
			return nil, domain.NewValidationError("category", "parentId", "cannot be its own parent")
		}
		parent, err := r.GetByID(ctx, *changes.ParentID)
		if err != nil {
			return nil, err
		}
		level = parent.Level + 1
	}

	updated, err := existing.Update(changes, level)
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(buildCategoryUpdates(changes, updated)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.NewConflictError("category", "slug already exists")
		}
		return nil, err
	}
	return updated, nil
}

func buildCategoryUpdates(changes models.CategoryChanges, updated *models.Category) map[string]interface{} {
	columns := map[string]interface{}{
		"updated_at": updated.UpdatedAt,
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
	if changes.ImageURL != nil {
		columns["image_url"] = changes.ImageURL
	}
	if changes.ClearParent || changes.ParentID != nil {
		columns["parent_id"] = updated.ParentID
		columns["level"] = updated.Level
	}
	if changes.SortOrder != nil {
		columns["sort_order"] = *changes.SortOrder
	}
	if changes.SeoTitle != nil {
		columns["seo_title"] = changes.SeoTitle
	}
	if changes.SeoDescription != nil {
		columns["seo_description"] = changes.SeoDescription
	}
	if changes.SeoKeywords != nil {
		columns["seo_keywords"] = changes.SeoKeywords
	}
	if changes.IsActive != nil {
		columns["is_active"] = *changes.IsActive
	}
	return columns
}

// Delete refuses to remove a category that still has children.
func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	var children int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Where("parent_id = ?", id).Count(&children).Error
	if err != nil {
		return err
	}
	if children > 0 {
		return domain.NewConflictError("category", "cannot delete a category that has children")
	}

	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.NewNotFoundError("category", id)
	}
	return nil
}

func (r *categoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Order(treeOrder).Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) GetByFilters(ctx context.Context, filters CategoryFilters, opts ListOptions) (*CategoryPage, error) {
	opts = opts.normalized()

	var total int64
	if err := r.filtered(ctx, filters).Count(&total).Error; err != nil {
		return nil, err
	}

	var categories []models.Category
	err := r.filtered(ctx, filters).
		Order(opts.orderClause(categorySortColumns)).
		Limit(opts.Limit).
		Offset(opts.offset()).
		Find(&categories).Error
	if err != nil {
		return nil, err
	}

	return &CategoryPage{Categories: categories, Pagination: newPagination(opts, total)}, nil
}

func (r *categoryRepository) filtered(ctx context.Context, filters CategoryFilters) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&models.Category{})
	if filters.RootsOnly {
		tx = tx.Where("parent_id IS NULL")
	} else if filters.ParentID != "" {
		tx = tx.Where("parent_id = ?", filters.ParentID)
	}
	if filters.Level != nil {
		tx = tx.Where("level = ?", *filters.Level)
	}
	if filters.IsActive != nil {
		tx = tx.Where("is_active = ?", *filters.IsActive)
	}
	if filters.Search != "" {
		keyword := "%" + strings.ToLower(filters.Search) + "%"
		tx = tx.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", keyword, keyword)
	}
	return tx
}

func (r *categoryRepository) GetChildren(ctx context.Context, parentID string) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Where("parent_id = ?", parentID).Order(treeOrder).Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) GetRootCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Where("parent_id IS NULL").Order(treeOrder).Find(&categories).Error
	return categories, err
}

// GetCategoryTree loads every row in rendering order and assembles the
// hierarchy in memory: roots are returned with Children populated
// recursively.
func (r *categoryRepository) GetCategoryTree(ctx context.Context) ([]models.Category, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	byParent := make(map[string][]models.Category, len(all))
	for _, c := range all {
		if c.ParentID != nil {
			byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
		}
	}

	// Rows arrive ordered by level, sortOrder, name, so each branch keeps
	// that ordering when attached.
	var attach func(c models.Category) models.Category
	attach = func(c models.Category) models.Category {
		for _, child := range byParent[c.ID] {
			c.Children = append(c.Children, attach(child))
		}
		return c
	}

	var roots []models.Category
	for _, c := range all {
		if c.ParentID == nil {
			roots = append(roots, attach(c))
		}
	}
	return roots, nil
}

func (r *categoryRepository) UpdateSortOrder(ctx context.Context, id string, sortOrder int) error {
	if sortOrder < 0 {
		return domain.NewValidationError("category", "sortOrder", "must not be negative")
	}

	tx := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).UpdateColumn("sort_order", sortOrder)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		exists, err := r.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return domain.NewNotFoundError("category", id)
		}
	}
	return nil
}

func (r *categoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *categoryRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Category{}).Where("slug = ?", slug)
	if excludeID != "" {
		tx = tx.Where("id != ?", excludeID)
	}
	var count int64
	err := tx.Count(&count).Error
	return count > 0, err
}
