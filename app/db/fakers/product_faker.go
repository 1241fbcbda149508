package fakers

import (
	"math/rand"

	"github.com/danuarta/go-marketplace/app/models"
	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

var sampleImages = []string{
	"/images/products/sample-1.jpg",
	"/images/products/sample-2.jpg",
	"/images/products/sample-3.jpg",
}

var sampleTags = []string{"new", "popular", "sale", "limited", "eco", "premium"}

// ProductFaker builds an active product owned by the given seller, optionally
// placed in a category.
func ProductFaker(seller *models.User, category *models.Category) (*models.Product, error) {
	name := faker.Name()
	price := fakePrice()
	sku := slug.Make(name)
	status := models.ProductStatusActive

	input := models.NewProductInput{
		SellerID:         seller.ID,
		Name:             name,
		Slug:             slug.Make(name + "-" + uuid.NewString()[:6]),
		Description:      faker.Paragraph(),
		ShortDescription: faker.Sentence(),
		Price:            price,
		SKU:              &sku,
		StockQuantity:    rand.Intn(100) + 1,
		Images:           fakeImages(),
		Status:           status,
		Tags:             fakeTags(),
	}
	if category != nil {
		input.CategoryID = &category.ID
	}
	if rand.Intn(3) == 0 {
		compare := price.Mul(decimal.NewFromFloat(1.25)).Round(0)
		input.ComparePrice = &compare
	}
	return models.NewProduct(input)
}

func fakePrice() decimal.Decimal {
	return decimal.NewFromInt(int64(rand.Intn(4950)+50) * 1000)
}

func fakeImages() models.ImageList {
	count := rand.Intn(3) + 1
	images := make(models.ImageList, 0, count)
	for i := 0; i < count; i++ {
		images = append(images, models.ProductImage{
			URL:       sampleImages[rand.Intn(len(sampleImages))],
			SortOrder: i,
			IsMain:    i == 0,
		})
	}
	return images
}

func fakeTags() models.StringList {
	count := rand.Intn(3)
	tags := make(models.StringList, 0, count)
	for i := 0; i < count; i++ {
		tags = append(tags, sampleTags[rand.Intn(len(sampleTags))])
	}
	return tags
}
