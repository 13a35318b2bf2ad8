package http

import (
	"net/http"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/listing"
)

type ListingHandler struct {
	maxBodySize int64
}

func NewListingHandler(maxBodySize int64) *ListingHandler {
	return &ListingHandler{maxBodySize: maxBodySize}
}

type SelectCategoryRequestDTO struct {
	Category string `json:"category"`
}

// SearchRequestDTO carries either one keystroke of the search box or,
// with Submit set, the submitted query.
type SearchRequestDTO struct {
	Query  string `json:"query"`
	Submit bool   `json:"submit"`
}

func (h *ListingHandler) listing(r *http.Request) *listing.Controller {
	return sessionFromContext(r.Context()).Listing
}

// Get returns the listing. With ?wait=true it first waits for the fetch in flight.
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	c := h.listing(r)
	if r.URL.Query().Get("wait") == "true" {
		if err := c.WaitIdle(r.Context()); err != nil {
			respondError(w, http.StatusGatewayTimeout, "timeout", "listing is still loading")
			return
		}
	}
	respondJSON(w, http.StatusOK, c.State())
}

func (h *ListingHandler) SelectCategory(w http.ResponseWriter, r *http.Request) {
	var req SelectCategoryRequestDTO
	if !decodeJSON(w, r, h.maxBodySize, &req) {
		return
	}

	c := h.listing(r)
	c.SelectCategory(strings.TrimSpace(req.Category))
	respondJSON(w, http.StatusAccepted, c.State())
}

func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequestDTO
	if !decodeJSON(w, r, h.maxBodySize, &req) {
		return
	}

	c := h.listing(r)
	if req.Submit {
		c.Search(req.Query)
	} else {
		c.Type(req.Query)
	}
	respondJSON(w, http.StatusAccepted, c.State())
}
