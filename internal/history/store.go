package history

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

const (
	StorageKey = "recentlyViewed"
	MaxItems   = 10
)

// Store tracks the products a session looked at, newest first.
type Store struct {
	mu     sync.RWMutex
	items  []domain.Product
	bridge storage.Bridge
	logger *slog.Logger
}

func NewStore(ctx context.Context, bridge storage.Bridge, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		items:  []domain.Product{},
		bridge: bridge,
		logger: logger.With("component", "history"),
	}
	s.rehydrate(ctx)
	return s
}

func (s *Store) rehydrate(ctx context.Context) {
	const op = "Store.rehydrate"

	saved, found, err := storage.GetJSON[[]domain.Product](ctx, s.bridge, StorageKey)
	switch {
	case errors.Is(err, storage.ErrCorrupt):
		s.logger.Warn("failed to load recently viewed from storage, starting empty", "op", op, "err", err)
		return
	case err != nil:
		s.logger.Error("failed to read recently viewed from storage", "op", op, "err", err)
		return
	case !found:
		return
	}

	if len(saved) > MaxItems {
		saved = saved[:MaxItems]
	}
	s.items = saved
}

// Record moves p to the front of the list, dropping any older entry with the
// same id and everything past MaxItems.
func (s *Store) Record(ctx context.Context, p domain.Product) {
	const op = "Store.Record"

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Product, 0, MaxItems)
	next = append(next, p)
	for _, item := range s.items {
		if len(next) == MaxItems {
			break
		}
		if item.ID != p.ID {
			next = append(next, item)
		}
	}

	ctx, cancel := storage.WriteContext(ctx)
	defer cancel()
	if err := storage.SetJSON(ctx, s.bridge, StorageKey, next); err != nil {
		s.logger.Error("failed to persist recently viewed", "op", op, "err", err)
	}
	s.items = next
}

// Clear empties the list and deletes the persisted key.
func (s *Store) Clear(ctx context.Context) {
	const op = "Store.Clear"

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []domain.Product{}
	ctx, cancel := storage.WriteContext(ctx)
	defer cancel()
	if err := s.bridge.Remove(ctx, StorageKey); err != nil {
		s.logger.Error("failed to remove recently viewed", "op", op, "err", err)
	}
}

func (s *Store) Items() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, len(s.items))
	copy(out, s.items)
	return out
}

// Limit returns at most n leading products. Non-positive n returns items unchanged.
func Limit(items []domain.Product, n int) []domain.Product {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
