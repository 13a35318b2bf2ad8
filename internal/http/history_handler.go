package http

import (
	"net/http"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/history"
)

type RecentlyViewedResponse struct {
	Products []domain.Product `json:"products"`
}

func GetRecentlyViewed(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	items := history.Limit(history.FromContext(r.Context()).Items(), limit)
	respondJSON(w, http.StatusOK, RecentlyViewedResponse{Products: items})
}

func ClearRecentlyViewed(w http.ResponseWriter, r *http.Request) {
	history.FromContext(r.Context()).Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
