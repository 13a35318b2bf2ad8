package history

import (
	"context"
	"errors"
)

var ErrNoStore = errors.New("history: no recently viewed store in context")

type ctxKey struct{}

func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the store scoped by WithStore and panics without one.
func FromContext(ctx context.Context) *Store {
	s, ok := ctx.Value(ctxKey{}).(*Store)
	if !ok || s == nil {
		panic(ErrNoStore)
	}
	return s
}
