package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/history"
	"github.com/fjod/go_cart/storefront/internal/navigation"
)

type ProductHandler struct {
	api     catalog.API
	timeout time.Duration
	logger  *slog.Logger
}

func NewProductHandler(api catalog.API, timeout time.Duration, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		api:     api,
		timeout: timeout,
		logger:  logger,
	}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
}

type ProductDetailResponse struct {
	Product         domain.Product   `json:"product"`
	Recommendations []domain.Product `json:"recommendations"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// List serves ?q= as a search and ?category= as a category filter.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var (
		products []domain.Product
		err      error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		products, err = h.api.Search(ctx, q)
	} else {
		category := r.URL.Query().Get("category")
		if category == "" {
			category = catalog.AllCategories
		}
		products, err = h.api.ListByCategory(ctx, category)
	}
	if err != nil {
		handleCatalogError(w, h.logger, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}

	respondJSON(w, http.StatusOK, ProductsResponse{Products: products, Count: len(products)})
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.api.ListCategories(ctx)
	if err != nil {
		handleCatalogError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, CategoriesResponse{Categories: categories})
}

// Get serves the product page: the product is recorded as recently viewed
// and returned with a few recommendations.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := productIDParam(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return
	}

	product, err := h.api.GetByID(ctx, id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondJSON(w, http.StatusNotFound, ErrorResponse{
			Error:    "product not found",
			Code:     "not_found",
			Redirect: navigation.PathNotFound,
		})
		return
	}
	if err != nil {
		handleCatalogError(w, h.logger, err)
		return
	}

	history.FromContext(r.Context()).Record(ctx, product)

	recommendations, err := catalog.Recommend(ctx, h.api, product.ID, catalog.DefaultRecommendations)
	if err != nil {
		h.logger.Warn("failed to load recommendations", "product_id", product.ID, "err", err)
		recommendations = []domain.Product{}
	}

	respondJSON(w, http.StatusOK, ProductDetailResponse{
		Product:         product,
		Recommendations: recommendations,
	})
}
