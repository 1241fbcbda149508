package routes

import (
	"net/http"

	"github.com/danuarta/go-marketplace/app/handlers"
	"github.com/danuarta/go-marketplace/app/middlewares"
	"github.com/danuarta/go-marketplace/app/models"
	"github.com/danuarta/go-marketplace/app/repositories"
	"github.com/danuarta/go-marketplace/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/unrolled/render"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewRouter wires repositories, services and handlers onto the API surface.
// Catalog reads are public; writes require a session, with category
// management restricted to admins.
func NewRouter(db *gorm.DB, store sessions.Store, log *zap.Logger) *mux.Router {
	rnd := render.New()
	validate := validator.New()

	productRepo := repositories.NewProductRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	cartRepo := repositories.NewCartRepository(db)
	cartItemRepo := repositories.NewCartItemRepository(db)

	catalogSvc := services.NewCatalogService(productRepo, categoryRepo, log)
	cartSvc := services.NewCartService(cartRepo, cartItemRepo, productRepo, log)

	productHandler := handlers.NewProductHandler(catalogSvc, rnd, validate, log)
	categoryHandler := handlers.NewCategoryHandler(catalogSvc, rnd, validate, log)
	cartHandler := handlers.NewCartHandler(cartSvc, rnd, validate, log)

	router := mux.NewRouter()
	router.Use(middlewares.RequestLogger(log))
	router.Use(middlewares.SessionMiddleware(store))

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/products", productHandler.Products).Methods(http.MethodGet)
	api.HandleFunc("/products/featured", productHandler.FeaturedProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/slug/{slug}", productHandler.ProductBySlug).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", productHandler.ProductByID).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}/related", productHandler.RelatedProducts).Methods(http.MethodGet)

	api.HandleFunc("/categories", categoryHandler.Categories).Methods(http.MethodGet)
	api.HandleFunc("/categories/tree", categoryHandler.CategoryTree).Methods(http.MethodGet)
	api.HandleFunc("/categories/slug/{slug}", categoryHandler.CategoryBySlug).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id}", categoryHandler.CategoryByID).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id}/children", categoryHandler.CategoryChildren).Methods(http.MethodGet)

	seller := api.NewRoute().Subrouter()
	seller.Use(middlewares.RequireRole(rnd, models.RoleSeller, models.RoleAdmin))
	seller.HandleFunc("/products", productHandler.CreateProduct).Methods(http.MethodPost)
	seller.HandleFunc("/products/{id}", productHandler.UpdateProduct).Methods(http.MethodPatch)
	seller.HandleFunc("/products/{id}", productHandler.DeleteProduct).Methods(http.MethodDelete)
	seller.HandleFunc("/seller/products/low-stock", productHandler.LowStockProducts).Methods(http.MethodGet)

	admin := api.NewRoute().Subrouter()
	admin.Use(middlewares.RequireRole(rnd, models.RoleAdmin))
	admin.HandleFunc("/categories", categoryHandler.CreateCategory).Methods(http.MethodPost)
	admin.HandleFunc("/categories/{id}", categoryHandler.UpdateCategory).Methods(http.MethodPatch)
	admin.HandleFunc("/categories/{id}", categoryHandler.DeleteCategory).Methods(http.MethodDelete)

	api.HandleFunc("/cart", cartHandler.GetCart).Methods(http.MethodGet)
	api.HandleFunc("/cart", cartHandler.ClearCart).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items", cartHandler.AddItem).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{productId}", cartHandler.UpdateItem).Methods(http.MethodPatch)
	api.HandleFunc("/cart/items/{productId}", cartHandler.RemoveItem).Methods(http.MethodDelete)

	return router
}
