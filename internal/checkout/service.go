// Package checkout validates the checkout form, charges the order and
// hands the shopper over to the confirmation page.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/navigation"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart  = errors.New("cart is empty, nothing to checkout")
	ErrInProgress = errors.New("order is already being placed")
)

// Order is the result of a successful PlaceOrder.
type Order struct {
	Number    string          `json:"order"`
	Total     decimal.Decimal `json:"total"`
	PaymentID string          `json:"payment_id"`
	Redirect  string          `json:"redirect"`
}

type Service struct {
	gateway   Gateway
	notifier  notify.Notifier
	publisher events.Publisher
	logger    *slog.Logger
}

type Option func(*Service)

// WithPublisher announces every placed order on p.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func NewService(gateway Gateway, notifier notify.Notifier, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		gateway:   gateway,
		notifier:  notifier,
		publisher: events.Nop{},
		logger:    logger.With("component", "checkout"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder submits form for the items in c.
//
// An empty cart sends the shopper back to the cart page. An invalid form
// records its field errors and returns a *ValidationError without charging.
// A refused payment leaves cart and form untouched. On success the charged
// items are taken out of the cart, anything added while the payment was
// pending stays, and the shopper is sent to the confirmation page with a
// fresh form.
func (s *Service) PlaceOrder(ctx context.Context, form *FormState, c *cart.Store, nav navigation.Navigator) (Order, error) {
	const op = "Service.PlaceOrder"

	if c.IsEmpty() {
		nav.Push(navigation.PathCart, nil)
		return Order{}, ErrEmptyCart
	}

	if !form.begin() {
		return Order{}, ErrInProgress
	}
	defer form.end()

	notifier := notify.Multi{s.notifier, notify.FromContext(ctx)}

	errs := form.Form().Validate()
	form.setErrors(errs)
	if len(errs) > 0 {
		notifier.Notify(ctx, notify.Toast{
			Title:       "Please fix the errors",
			Description: "Check the form for validation errors and try again.",
			Severity:    notify.SeverityDestructive,
		})
		return Order{}, &ValidationError{Fields: errs}
	}

	total := c.TotalPrice()
	items := c.Items()

	receipt, err := s.gateway.Charge(ctx, total)
	if err != nil {
		s.logger.Warn("payment refused", "op", op, "total", total.StringFixed(2), "err", err)
		notifier.Notify(ctx, notify.Toast{
			Title:       "Payment failed",
			Description: "There was an error processing your payment. Please try again.",
			Severity:    notify.SeverityDestructive,
		})
		if !errors.Is(err, ErrPaymentFailed) {
			err = errors.Join(ErrPaymentFailed, err)
		}
		return Order{}, err
	}

	number := NewOrderNumber()
	c.Settle(ctx, items)
	form.Reset()

	placed := events.OrderPlaced{
		Order:     number,
		Total:     total,
		PaymentID: receipt.PaymentID,
		Items:     items,
		PlacedAt:  time.Now().UTC(),
	}
	if err := s.publisher.PublishOrderPlaced(ctx, placed); err != nil {
		s.logger.Error("failed to publish order event", "op", op, "order", number, "err", err)
	}

	notifier.Notify(ctx, notify.Toast{
		Title:       "Order placed successfully!",
		Description: "Your order #" + number + " has been confirmed.",
	})

	query := url.Values{
		"order": {number},
		"total": {total.StringFixed(2)},
	}
	nav.Push(navigation.PathOrderConfirmation, query)

	s.logger.Info("order placed", "op", op, "order", number, "total", total.StringFixed(2), "payment_id", receipt.PaymentID)

	return Order{
		Number:    number,
		Total:     total,
		PaymentID: receipt.PaymentID,
		Redirect:  navigation.Target(navigation.PathOrderConfirmation, query),
	}, nil
}
