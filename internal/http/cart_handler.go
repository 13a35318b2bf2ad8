package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

const maxQuantity = 99

type CartHandler struct {
	api         catalog.API
	timeout     time.Duration
	maxBodySize int64
	logger      *slog.Logger
}

func NewCartHandler(api catalog.API, timeout time.Duration, maxBodySize int64, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		api:         api,
		timeout:     timeout,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Items   []domain.CartItem `json:"items"`
	Summary cart.Summary      `json:"summary"`
}

func cartResponse(s *cart.Store) CartResponse {
	return CartResponse{Items: s.Items(), Summary: cart.Summarize(s)}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, cartResponse(cart.FromContext(r.Context())))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeJSON(w, r, h.maxBodySize, &req) {
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 || req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, err := h.api.GetByID(ctx, req.ProductID)
	if err != nil {
		handleCatalogError(w, h.logger, err)
		return
	}

	store := cart.FromContext(r.Context())
	store.AddQuantity(ctx, product, req.Quantity)

	respondJSON(w, http.StatusCreated, cartResponse(store))
}

// UpdateQuantity overwrites the quantity of an item; zero or less removes it.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(r, "product_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, h.maxBodySize, &req) {
		return
	}
	if req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must not exceed 99")
		return
	}

	store := cart.FromContext(r.Context())
	store.SetQuantity(r.Context(), productID, req.Quantity)

	respondJSON(w, http.StatusOK, cartResponse(store))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(r, "product_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	store := cart.FromContext(r.Context())
	store.Remove(r.Context(), productID)

	respondJSON(w, http.StatusOK, cartResponse(store))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store := cart.FromContext(r.Context())
	store.Clear(r.Context())

	respondJSON(w, http.StatusOK, cartResponse(store))
}
