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
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	catalog  *services.CatalogService
	render   *render.Render
	validate *validator.Validate
	log      *zap.Logger
}

func NewCategoryHandler(catalog *services.CatalogService, rnd *render.Render, validate *validator.Validate, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{catalog: catalog, render: rnd, validate: validate, log: log}
}

type categoryListResponse struct {
	Categories []models.Category       `json:"categories"`
	Pagination repositories.Pagination `json:"pagination"`
}

func (h *CategoryHandler) Categories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := repositories.CategoryFilters{
		ParentID: q.Get("parent_id"),
		Search:   q.Get("q"),
	}
	if raw := q.Get("roots_only"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filters.RootsOnly = v
		}
	}
	if raw := q.Get("level"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			filters.Level = &v
		}
	}
	if raw := q.Get("is_active"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filters.IsActive = &v
		}
	}

	page, err := h.catalog.ListCategories(r.Context(), filters, listOptionsFromQuery(r))
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, categoryListResponse{
		Categories: page.Categories,
		Pagination: page.Pagination,
	})
}

// CategoryTree returns the full hierarchy with children nested under their
// parents, in rendering order.
func (h *CategoryHandler) CategoryTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.catalog.GetCategoryTree(r.Context())
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, tree)
}

func (h *CategoryHandler) CategoryByID(w http.ResponseWriter, r *http.Request) {
	category, err := h.catalog.GetCategoryByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) CategoryBySlug(w http.ResponseWriter, r *http.Request) {
	category, err := h.catalog.GetCategoryBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) CategoryChildren(w http.ResponseWriter, r *http.Request) {
	children, err := h.catalog.GetCategoryChildren(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, children)
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req services.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.render.JSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, h.render, err)
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), req)
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var changes models.CategoryChanges
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		h.render.JSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	category, err := h.catalog.UpdateCategory(r.Context(), mux.Vars(r)["id"], changes)
	if err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCategory(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, h.render, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
