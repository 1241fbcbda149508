package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/danuarta/go-marketplace/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type CartHandler struct {
	cartSvc  *services.CartService
	render   *render.Render
	validate *validator.Validate
	log      *zap.Logger
}

func NewCartHandler(cartSvc *services.CartService, rnd *render.Render, validate *validator.Validate, log *zap.Logger) *CartHandler {
	return &CartHandler{cartSvc: cartSvc, render: rnd, validate: validate, log: log}
}

type addCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identityFromContext(r)
	if !ok {
		h.render.JSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
		return
	}

	cart, err := h.cartSvc.GetCart(r.Context(), userID)
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identityFromContext(r)
	if !ok {
		h.render.JSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
		return
	}

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.render.JSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, h.render, err)
		return
	}

	cart, err := h.cartSvc.AddItemToCart(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, cart)
}

// UpdateItem sets the line quantity; zero or negative removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identityFromContext(r)
	if !ok {
		h.render.JSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
		return
	}

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.render.JSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	cart, err := h.cartSvc.UpdateCartItemQty(r.Context(), userID, mux.Vars(r)["productId"], req.Quantity)
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identityFromContext(r)
	if !ok {
		h.render.JSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
		return
	}

	cart, err := h.cartSvc.RemoveItemFromCart(r.Context(), userID, mux.Vars(r)["productId"])
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identityFromContext(r)
	if !ok {
		h.render.JSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
		return
	}

	cart, err := h.cartSvc.ClearCart(r.Context(), userID)
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, cart)
}
