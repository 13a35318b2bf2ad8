package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/sony/gobreaker/v2"
)

// ErrUnavailable is returned while the breaker is open.
var ErrUnavailable = errors.New("catalog unavailable")

type BreakerSettings struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             10 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// BreakerAPI stops calling next after repeated failures. A missing product
// counts as a success.
type BreakerAPI struct {
	next API
	cb   *gobreaker.CircuitBreaker[any]
}

var _ API = (*BreakerAPI)(nil)

func NewBreakerAPI(next API, s BreakerSettings, logger *slog.Logger) *BreakerAPI {
	if logger == nil {
		logger = slog.Default()
	}
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrProductNotFound) ||
				errors.Is(err, context.Canceled)
		},
	})
	return &BreakerAPI{next: next, cb: cb}
}

func (b *BreakerAPI) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerAPI) ListAll(ctx context.Context) ([]domain.Product, error) {
	return guarded(b, func() ([]domain.Product, error) { return b.next.ListAll(ctx) })
}

func (b *BreakerAPI) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return guarded(b, func() ([]domain.Product, error) { return b.next.ListByCategory(ctx, category) })
}

func (b *BreakerAPI) Search(ctx context.Context, query string) ([]domain.Product, error) {
	return guarded(b, func() ([]domain.Product, error) { return b.next.Search(ctx, query) })
}

func (b *BreakerAPI) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	return guarded(b, func() (domain.Product, error) { return b.next.GetByID(ctx, id) })
}

func (b *BreakerAPI) ListCategories(ctx context.Context) ([]string, error) {
	return guarded(b, func() ([]string, error) { return b.next.ListCategories(ctx) })
}

func guarded[T any](b *BreakerAPI, call func() (T, error)) (T, error) {
	var zero T
	v, err := b.cb.Execute(func() (any, error) {
		return call()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return zero, errors.Join(ErrUnavailable, err)
	}
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}
