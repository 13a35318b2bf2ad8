package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/shopspring/decimal"
)

// StorageKey is the bridge key holding the serialized cart.
const StorageKey = "cart"

// Store is the session-scoped cart: a reducer over Actions whose state is
// mirrored to the bridge after every transition.
type Store struct {
	mu     sync.RWMutex
	items  []domain.CartItem
	bridge storage.Bridge
	logger *slog.Logger
}

// NewStore creates a cart and rehydrates it once from the bridge.
// A corrupt saved cart is logged and replaced by an empty one.
func NewStore(ctx context.Context, bridge storage.Bridge, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		items:  []domain.CartItem{},
		bridge: bridge,
		logger: logger.With("component", "cart"),
	}
	s.rehydrate(ctx)
	return s
}

func (s *Store) rehydrate(ctx context.Context) {
	const op = "Store.rehydrate"

	saved, found, err := storage.GetJSON[[]domain.CartItem](ctx, s.bridge, StorageKey)
	switch {
	case errors.Is(err, storage.ErrCorrupt):
		s.logger.Warn("failed to load cart from storage, starting empty", "op", op, "err", err)
		return
	case err != nil:
		s.logger.Error("failed to read cart from storage", "op", op, "err", err)
		return
	case !found:
		return
	}

	s.Dispatch(ctx, Load{Items: saved})
}

// Dispatch applies a and persists the resulting sequence.
func (s *Store) Dispatch(ctx context.Context, a Action) {
	const op = "Store.Dispatch"

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = Reduce(s.items, a)
	s.persistLocked(ctx, op)
}

// Settle takes the charged quantities out of the cart. Lines added or
// raised after charged was snapshotted keep the difference.
func (s *Store) Settle(ctx context.Context, charged []domain.CartItem) {
	const op = "Store.Settle"

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.items
	for _, paid := range charged {
		left := quantityOf(next, paid.ID) - paid.Quantity
		next = Reduce(next, SetQuantity{ProductID: paid.ID, Quantity: left})
	}
	s.items = next
	s.persistLocked(ctx, op)
}

func (s *Store) persistLocked(ctx context.Context, op string) {
	ctx, cancel := storage.WriteContext(ctx)
	defer cancel()
	if err := storage.SetJSON(ctx, s.bridge, StorageKey, s.items); err != nil {
		s.logger.Error("failed to persist cart", "op", op, "err", err)
	}
}

func (s *Store) Add(ctx context.Context, p domain.Product) {
	s.Dispatch(ctx, Add{Product: p})
}

// AddQuantity adds n units of p one at a time, like repeated clicks.
func (s *Store) AddQuantity(ctx context.Context, p domain.Product, n int) {
	for i := 0; i < n; i++ {
		s.Dispatch(ctx, Add{Product: p})
	}
}

func (s *Store) Remove(ctx context.Context, productID int64) {
	s.Dispatch(ctx, Remove{ProductID: productID})
}

func (s *Store) SetQuantity(ctx context.Context, productID int64, quantity int) {
	s.Dispatch(ctx, SetQuantity{ProductID: productID, Quantity: quantity})
}

func (s *Store) Clear(ctx context.Context) {
	s.Dispatch(ctx, Clear{})
}

// Items returns a copy of the current line items in cart order.
func (s *Store) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.items)
}

// IsEmpty reports whether the cart has no line items.
func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items) == 0
}

// TotalItems is the sum of quantities.
func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return totalItems(s.items)
}

// TotalPrice is the sum of price × quantity.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return totalPrice(s.items)
}

func quantityOf(items []domain.CartItem, productID int64) int {
	for _, item := range items {
		if item.ID == productID {
			return item.Quantity
		}
	}
	return 0
}

func totalItems(items []domain.CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func totalPrice(items []domain.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total
}
