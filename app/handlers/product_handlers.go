package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/danuarta/go-marketplace/app/models"
	"github.com/danuarta/go-marketplace/app/repositories"
	"github.com/danuarta/go-marketplace/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type ProductHandler struct {
	catalog  *services.CatalogService
	render   *render.Render
	validate *validator.Validate
	log      *zap.Logger
}

func NewProductHandler(catalog *services.CatalogService, rnd *render.Render, validate *validator.Validate, log *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, render: rnd, validate: validate, log: log}
}

type productListResponse struct {
	Products   []services.ProductResponse `json:"products"`
	Pagination repositories.Pagination    `json:"pagination"`
}

// Products lists the catalog with the full filter surface exposed as query
// parameters.
func (h *ProductHandler) Products(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := repositories.ProductFilters{
		SellerID:   q.Get("seller_id"),
		CategoryID: q.Get("category_id"),
		Status:     models.ProductStatus(q.Get("status")),
		Search:     q.Get("q"),
	}
	if raw := q.Get("min_price"); raw != "" {
		if v, err := decimal.NewFromString(raw); err == nil {
			filters.MinPrice = &v
		}
	}
	if raw := q.Get("max_price"); raw != "" {
		if v, err := decimal.NewFromString(raw); err == nil {
			filters.MaxPrice = &v
		}
	}
	if raw := q.Get("in_stock"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filters.InStock = &v
		}
	}
	if tags, ok := q["tag"]; ok {
		filters.Tags = tags
	}

	page, err := h.catalog.ListProducts(r.Context(), filters, listOptionsFromQuery(r))
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newProductListResponse(page))
}

func (h *ProductHandler) ProductByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	product, err := h.catalog.GetProductByID(r.Context(), id)
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) ProductBySlug(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	product, err := h.catalog.GetProductBySlug(r.Context(), slug)
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := identityFromContext(r)
	if !ok {
		h.render.JSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
		return
	}

	var req services.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.render.JSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	// Sellers create products for themselves; admins may create on behalf of
	// a seller by supplying sellerId.
	if role != models.RoleAdmin || req.SellerID == "" {
		req.SellerID = userID
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, h.render, err)
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), req)
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := identityFromContext(r)
	if !ok {
		h.render.JSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
		return
	}

	var changes models.ProductChanges
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		h.render.JSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), mux.Vars(r)["id"], userID, role, changes)
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := identityFromContext(r)
	if !ok {
		h.render.JSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), mux.Vars(r)["id"], userID, role); err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 10
	}
	products, err := h.catalog.GetFeaturedProducts(r.Context(), limit)
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newProductResponses(products))
}

func (h *ProductHandler) RelatedProducts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 10
	}
	products, err := h.catalog.GetRelatedProducts(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newProductResponses(products))
}

// LowStockProducts is a seller dashboard view: sellers see their own
// products, admins may inspect any seller via seller_id.
func (h *ProductHandler) LowStockProducts(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := identityFromContext(r)
	if !ok {
		h.render.JSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
		return
	}

	sellerID := userID
	if role == models.RoleAdmin {
		sellerID = r.URL.Query().Get("seller_id")
	}
	products, err := h.catalog.GetLowStockProducts(r.Context(), sellerID)
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newProductResponses(products))
}

func newProductListResponse(page *repositories.ProductPage) productListResponse {
	return productListResponse{
		Products:   newProductResponses(page.Products),
		Pagination: page.Pagination,
	}
}

func newProductResponses(products []models.Product) []services.ProductResponse {
	out := make([]services.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *services.NewProductResponse(&products[i]))
	}
	return out
}
