package fakers

import (
	"github.com/danuarta/go-marketplace/app/models"
	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
)

func UserFaker(role string) *models.User {
	return &models.User{
		ID:        uuid.New().String(),
		FirstName: faker.FirstName(),
		LastName:  faker.LastName(),
		Email:     faker.Email(),
		Role:      role,
	}
}
