package services

import (
	"context"
	"fmt"
	"time"

	"github.com/danuarta/go-marketplace/app/domain"
	"github.com/danuarta/go-marketplace/app/helpers"
	"github.com/danuarta/go-marketplace/app/models"
	"github.com/danuarta/go-marketplace/app/repositories"
	"github.com/danuarta/go-marketplace/app/utils/calc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartItemResponse is one denormalized cart line.
type CartItemResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	DisplayPrice string          `json:"displayPrice"`
	AddedAt      time.Time       `json:"addedAt"`
}

// GetCartResponse carries the cart totals recomputed from the returned
// items on every read. The cart row is never the source of truth for them.
type GetCartResponse struct {
	CartID       string             `json:"cartId"`
	Items        []CartItemResponse `json:"items"`
	TotalItems   int                `json:"totalItems"`
	TotalAmount  decimal.Decimal    `json:"totalAmount"`
	DisplayTotal string             `json:"displayTotal"`
}

type CartService struct {
	cartRepo     repositories.CartRepositoryImpl
	cartItemRepo repositories.CartItemRepositoryImpl
	productRepo  repositories.ProductRepositoryImpl
	log          *zap.Logger
}

func NewCartService(
	cartRepo repositories.CartRepositoryImpl,
	cartItemRepo repositories.CartItemRepositoryImpl,
	productRepo repositories.ProductRepositoryImpl,
	log *zap.Logger,
) *CartService {
	return &CartService{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		log:          log,
	}
}

// AddItemToCart merges into an existing line when the product is already in
// the cart: quantities sum and the whole line is repriced at the product's
// current unit price, not the price snapshotted at first add.
func (s *CartService) AddItemToCart(ctx context.Context, userID, productID string, qty int) (*GetCartResponse, error) {
	if qty <= 0 {
		return nil, domain.NewValidationError("cartItem", "quantity", "must be positive")
	}

	cart, err := s.cartRepo.GetOrCreateCartByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsAvailable() {
		return nil, domain.NewValidationError("cartItem", "productId", "product is not available")
	}

	unitPrice := product.Price
	existing, err := s.cartItemRepo.GetCartAndProduct(ctx, cart.ID, productID)
	if err != nil && !domain.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check existing cart item: %w", err)
	}

	if existing != nil {
		existing.Quantity += qty
		existing.UnitPrice = unitPrice
		existing.TotalPrice = calc.LineTotal(unitPrice, existing.Quantity)
		existing.UpdatedAt = time.Now()
		if err := s.cartItemRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	} else {
		item := &models.CartItem{
			CartID:     cart.ID,
			ProductID:  productID,
			Quantity:   qty,
			UnitPrice:  unitPrice,
			TotalPrice: calc.LineTotal(unitPrice, qty),
		}
		if err := s.cartItemRepo.Add(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	}

	s.log.Info("cart item added",
		zap.String("cart_id", cart.ID),
		zap.String("product_id", productID),
		zap.Int("quantity", qty))

	return s.buildCartResponse(ctx, cart)
}

// GetCart returns the user's active cart with totals recomputed from the
// line items.
func (s *CartService) GetCart(ctx context.Context, userID string) (*GetCartResponse, error) {
	cart, err := s.cartRepo.GetOrCreateCartByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}
	return s.buildCartResponse(ctx, cart)
}

// UpdateCartItemQty reprices the line at the product's current unit price.
// Stock is deliberately not re-validated here: reservation happens at
// checkout, and a cart is allowed to reference more than is in stock.
func (s *CartService) UpdateCartItemQty(ctx context.Context, userID, productID string, newQty int) (*GetCartResponse, error) {
	if newQty <= 0 {
		return s.RemoveItemFromCart(ctx, userID, productID)
	}

	cart, err := s.cartRepo.GetOrCreateCartByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	item, err := s.cartItemRepo.GetCartAndProduct(ctx, cart.ID, productID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	item.Quantity = newQty
	item.UnitPrice = product.Price
	item.TotalPrice = calc.LineTotal(product.Price, newQty)
	item.UpdatedAt = time.Now()
	if err := s.cartItemRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update cart item quantity: %w", err)
	}

	return s.buildCartResponse(ctx, cart)
}

func (s *CartService) RemoveItemFromCart(ctx context.Context, userID, productID string) (*GetCartResponse, error) {
	cart, err := s.cartRepo.GetOrCreateCartByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if err := s.cartItemRepo.Delete(ctx, cart.ID, productID); err != nil {
		return nil, err
	}

	return s.buildCartResponse(ctx, cart)
}

func (s *CartService) ClearCart(ctx context.Context, userID string) (*GetCartResponse, error) {
	cart, err := s.cartRepo.GetOrCreateCartByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if err := s.cartItemRepo.ClearCartItems(ctx, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	return s.buildCartResponse(ctx, cart)
}

func (s *CartService) buildCartResponse(ctx context.Context, cart *models.Cart) (*GetCartResponse, error) {
	items, err := s.cartItemRepo.GetByCartID(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}

	response := &GetCartResponse{
		CartID:      cart.ID,
		Items:       make([]CartItemResponse, 0, len(items)),
		TotalAmount: decimal.Zero,
	}
	for _, item := range items {
		line := CartItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			TotalPrice:   item.TotalPrice,
			DisplayPrice: helpers.FormatMoney(item.TotalPrice),
			AddedAt:      item.CreatedAt,
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
		}
		response.Items = append(response.Items, line)
		response.TotalItems += item.Quantity
		response.TotalAmount = response.TotalAmount.Add(item.TotalPrice)
	}
	response.DisplayTotal = helpers.FormatMoney(response.TotalAmount)
	return response, nil
}
