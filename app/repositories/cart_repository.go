package repositories

import (
	"context"
	"errors"

	"github.com/danuarta/go-marketplace/app/domain"
	"github.com/danuarta/go-marketplace/app/models"
	"gorm.io/gorm"
)

type CartRepositoryImpl interface {
	GetOrCreateCartByUserID(ctx context.Context, userID string) (*models.Cart, error)
	GetByID(ctx context.Context, id string) (*models.Cart, error)
	GetCartWithItems(ctx context.Context, cartID string) (*models.Cart, error)
	GetActiveCartByUserID(ctx context.Context, userID string) (*models.Cart, error)
	GetCartItemCount(ctx context.Context, cartID string) (int, error)
	DeleteCart(ctx context.Context, cartID string) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepositoryImpl {
	return &cartRepository{db}
}

// GetOrCreateCartByUserID returns the user's most recent active cart,
// creating one when none exists. The lookup and insert are separate round
// trips; the unique (user_id, status) index decides a concurrent first-add
// race, and the loser retries the lookup instead of creating a second cart.
func (r *cartRepository) GetOrCreateCartByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	if userID == "" {
		return nil, domain.NewValidationError("cart", "userId", "is required")
	}

	cart, err := r.GetActiveCartByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !domain.IsNotFound(err) {
		return nil, err
	}

	fresh := &models.Cart{UserID: userID, Status: models.CartStatusActive}
	if err := r.db.WithContext(ctx).Create(fresh).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.GetActiveCartByUserID(ctx, userID)
		}
		return nil, err
	}
	return fresh, nil
}

func (r *cartRepository) GetActiveCartByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.CartStatusActive).
		Order("created_at DESC").
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("cart", userID)
		}
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) GetByID(ctx context.Context, id string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("cart", id)
		}
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) GetCartWithItems(ctx context.Context, cartID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("CartItems.Product").
		Preload("CartItems").
		Where("id = ?", cartID).
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("cart", cartID)
		}
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) GetCartItemCount(ctx context.Context, cartID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ?", cartID).
		Count(&count).Error
	return int(count), err
}

func (r *cartRepository) DeleteCart(ctx context.Context, cartID string) error {
	return r.db.WithContext(ctx).Where("id = ?", cartID).Delete(&models.Cart{}).Error
}
