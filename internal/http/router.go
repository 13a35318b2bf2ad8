package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	Sessions           *session.Manager
	Catalog            catalog.API
	Checkout           *checkout.Service
	Logger             *slog.Logger
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

// NewRouter wires every storefront route behind the common middleware and
// an OpenTelemetry server handler.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	productHandler := NewProductHandler(cfg.Catalog, cfg.RequestTimeout, logger)
	cartHandler := NewCartHandler(cfg.Catalog, cfg.RequestTimeout, cfg.MaxRequestBodySize, logger)
	listingHandler := NewListingHandler(cfg.MaxRequestBodySize)
	checkoutHandler := NewCheckoutHandler(cfg.Checkout, cfg.MaxRequestBodySize, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware(cfg.Sessions, logger))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/categories", productHandler.Categories)
			r.Get("/{id}", productHandler.Get)
		})
		r.Route("/listing", func(r chi.Router) {
			r.Get("/", listingHandler.Get)
			r.Post("/category", listingHandler.SelectCategory)
			r.Post("/search", listingHandler.Search)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
		r.Route("/recently-viewed", func(r chi.Router) {
			r.Get("/", GetRecentlyViewed)
			r.Delete("/", ClearRecentlyViewed)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkoutHandler.Get)
			r.Patch("/form", checkoutHandler.UpdateField)
			r.Post("/", checkoutHandler.PlaceOrder)
		})
		r.Get("/order-confirmation", GetOrderConfirmation)
		r.Get("/notifications", GetNotifications)
	})

	return otelhttp.NewHandler(r, "storefront")
}
