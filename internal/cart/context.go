package cart

import (
	"context"
	"errors"
)

// ErrNoStore is the panic value of FromContext outside a session scope.
var ErrNoStore = errors.New("cart: store used outside of a session scope")

type ctxKey struct{}

// WithStore scopes s into ctx.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the cart scoped into ctx. It panics with ErrNoStore
// when there is none: reaching the cart without a session is a wiring bug.
func FromContext(ctx context.Context) *Store {
	s, ok := ctx.Value(ctxKey{}).(*Store)
	if !ok || s == nil {
		panic(ErrNoStore)
	}
	return s
}
