package fakers

import (
	"strings"

	"github.com/danuarta/go-marketplace/app/models"
	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// CategoryFaker builds a category under the given parent; pass nil for a
// root category.
func CategoryFaker(parent *models.Category) (*models.Category, error) {
	word := faker.Word()
	name := strings.ToUpper(word[:1]) + word[1:]

	input := models.NewCategoryInput{
		Name:        name,
		Slug:        slug.Make(name + "-" + uuid.NewString()[:6]),
		Description: faker.Sentence(),
	}
	if parent != nil {
		input.ParentID = &parent.ID
		input.Level = parent.Level + 1
	}
	return models.NewCategory(input)
}
