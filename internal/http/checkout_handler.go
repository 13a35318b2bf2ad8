package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/navigation"
	"github.com/fjod/go_cart/storefront/internal/notify"
)

type CheckoutHandler struct {
	service     *checkout.Service
	maxBodySize int64
	logger      *slog.Logger
}

func NewCheckoutHandler(service *checkout.Service, maxBodySize int64, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service:     service,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

type CheckoutResponse struct {
	Form       checkout.Form        `json:"form"`
	Errors     checkout.FieldErrors `json:"errors"`
	Processing bool                 `json:"processing"`
	Cart       CartResponse         `json:"cart"`
}

type UpdateFieldRequestDTO struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

func emptyCartResponse(w http.ResponseWriter) {
	respondJSON(w, http.StatusConflict, ErrorResponse{
		Error:    checkout.ErrEmptyCart.Error(),
		Code:     "empty_cart",
		Redirect: navigation.PathCart,
	})
}

func (h *CheckoutHandler) checkoutResponse(r *http.Request) CheckoutResponse {
	s := sessionFromContext(r.Context())
	return CheckoutResponse{
		Form:       s.Form.Form(),
		Errors:     s.Form.Errors(),
		Processing: s.Form.Processing(),
		Cart:       cartResponse(cart.FromContext(r.Context())),
	}
}

// Get serves the checkout page. An empty cart sends the shopper back to the cart.
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	if cart.FromContext(r.Context()).IsEmpty() {
		emptyCartResponse(w)
		return
	}
	respondJSON(w, http.StatusOK, h.checkoutResponse(r))
}

func (h *CheckoutHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	var req UpdateFieldRequestDTO
	if !decodeJSON(w, r, h.maxBodySize, &req) {
		return
	}

	if err := sessionFromContext(r.Context()).Form.Update(req.Field, req.Value); err != nil {
		code := "invalid_value"
		if errors.Is(err, checkout.ErrUnknownField) {
			code = "unknown_field"
		}
		respondError(w, http.StatusBadRequest, code, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.checkoutResponse(r))
}

// PlaceOrder submits the session form. A JSON form in the body replaces
// the stored one first.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	if r.ContentLength != 0 {
		form := checkout.NewForm()
		if !decodeJSON(w, r, h.maxBodySize, &form) {
			return
		}
		s.Form.Set(form)
	}

	var nav navigation.Recorder
	order, err := h.service.PlaceOrder(r.Context(), s.Form, s.Cart, &nav)

	var verr *checkout.ValidationError
	switch {
	case err == nil:
		respondJSON(w, http.StatusCreated, order)
	case errors.Is(err, checkout.ErrEmptyCart):
		emptyCartResponse(w)
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "please fix the errors",
			Code:   "validation_failed",
			Fields: verr.Fields,
		})
	case errors.Is(err, checkout.ErrInProgress):
		respondError(w, http.StatusConflict, "checkout_in_progress", err.Error())
	case errors.Is(err, checkout.ErrPaymentFailed):
		respondJSON(w, http.StatusPaymentRequired, ErrorResponse{
			Error:   "payment failed",
			Code:    "payment_failed",
			Details: err.Error(),
		})
	default:
		h.logger.Error("place order failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func GetOrderConfirmation(w http.ResponseWriter, r *http.Request) {
	c, err := checkout.ParseConfirmation(r.URL.Query())
	if err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:    err.Error(),
			Code:     "missing_order",
			Redirect: navigation.PathHome,
		})
		return
	}
	respondJSON(w, http.StatusOK, c)
}

type NotificationsResponse struct {
	Toasts []notify.Toast `json:"toasts"`
}

func GetNotifications(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, NotificationsResponse{
		Toasts: sessionFromContext(r.Context()).Inbox.Drain(),
	})
}
