package models

import (
	"testing"

	"github.com/danuarta/go-marketplace/app/domain"
)

func TestNewCategoryDefaults(t *testing.T) {
	category, err := NewCategory(NewCategoryInput{Name: "Electronics", Slug: "electronics"})
	if err != nil {
		t.Fatalf("NewCategory: %v", err)
	}

	if category.ID == "" {
		t.Error("expected generated id")
	}
	if !category.IsActive {
		t.Error("isActive should default to true")
	}
	if !category.IsRootCategory() {
		t.Error("category without parent should be a root")
	}
}

func TestNewCategoryValidation(t *testing.T) {
	parentID := "parent-1"
	cases := []struct {
		name  string
		input NewCategoryInput
	}{
		{"missing name", NewCategoryInput{Slug: "electronics"}},
		{"missing slug", NewCategoryInput{Name: "Electronics"}},
		{"bad slug", NewCategoryInput{Name: "Electronics", Slug: "Electronics!"}},
		{"negative sort order", NewCategoryInput{Name: "A", Slug: "a", SortOrder: -1}},
		{"level beyond max depth", NewCategoryInput{Name: "A", Slug: "a", ParentID: &parentID, Level: MaxCategoryDepth + 1}},
		{"root with nonzero level", NewCategoryInput{Name: "A", Slug: "a", Level: 2}},
		{"child with zero level", NewCategoryInput{Name: "A", Slug: "a", ParentID: &parentID}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewCategory(tc.input); !domain.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

// The deepest allowed child sits at level MaxCategoryDepth; a child one
// level below that (the child of a level-4 parent) must be rejected.
func TestCategoryDepthBound(t *testing.T) {
	parentID := "parent-1"

	deepest, err := NewCategory(NewCategoryInput{
		Name: "Deepest", Slug: "deepest", ParentID: &parentID, Level: MaxCategoryDepth,
	})
	if err != nil {
		t.Fatalf("level %d should be accepted: %v", MaxCategoryDepth, err)
	}
	if deepest.Level != MaxCategoryDepth {
		t.Errorf("level = %d, want %d", deepest.Level, MaxCategoryDepth)
	}

	if _, err := NewCategory(NewCategoryInput{
		Name: "Too Deep", Slug: "too-deep", ParentID: &parentID, Level: MaxCategoryDepth + 1,
	}); !domain.IsValidation(err) {
		t.Errorf("child under a level-%d parent must be rejected, got %v", MaxCategoryDepth, err)
	}
}

func TestCategoryUpdateReparent(t *testing.T) {
	parentID := "parent-1"
	child, err := NewCategory(NewCategoryInput{
		Name: "Laptops", Slug: "laptops", ParentID: &parentID, Level: 1,
	})
	if err != nil {
		t.Fatalf("NewCategory: %v", err)
	}
	if !child.IsChildCategory() {
		t.Error("expected child category")
	}

	promoted, err := child.Update(CategoryChanges{ClearParent: true}, 0)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !promoted.IsRootCategory() {
		t.Errorf("expected root after clearing parent, got level %d parent %v", promoted.Level, promoted.ParentID)
	}
	if child.ParentID == nil {
		t.Error("receiver was mutated")
	}

	otherParent := "parent-2"
	moved, err := child.Update(CategoryChanges{ParentID: &otherParent}, 3)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if *moved.ParentID != otherParent || moved.Level != 3 {
		t.Errorf("reparent: parent = %v level = %d", moved.ParentID, moved.Level)
	}
}

func TestCategoryUpdateRejectsExcessiveDepth(t *testing.T) {
	parentID := "parent-1"
	child, err := NewCategory(NewCategoryInput{
		Name: "Deep", Slug: "deep", ParentID: &parentID, Level: 1,
	})
	if err != nil {
		t.Fatalf("NewCategory: %v", err)
	}

	if _, err := child.Update(CategoryChanges{}, MaxCategoryDepth+1); !domain.IsValidation(err) {
		t.Errorf("expected validation error past max depth, got %v", err)
	}
}
