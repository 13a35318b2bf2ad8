package cart

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type failingBridge struct {
	storage.Bridge
	setErr error
}

func (f failingBridge) Set(context.Context, string, []byte) error {
	return f.setErr
}

func TestStore_EndToEndTotals(t *testing.T) {
	ctx := context.Background()
	bridge := storage.NewMemoryStore()
	store := NewStore(ctx, bridge, discard)

	p7 := product(7, 19.99)
	p9 := product(9, 5.00)
	store.Add(ctx, p7)
	store.Add(ctx, p7)
	store.Add(ctx, p9)

	assert.Equal(t, 3, store.TotalItems())
	assert.True(t, decimal.RequireFromString("44.98").Equal(store.TotalPrice()), "got %s", store.TotalPrice())

	sum := Summarize(store)
	assert.False(t, sum.FreeShipping)
	assert.True(t, ShippingFee.Equal(sum.Shipping))

	store.Clear(ctx)
	assert.Equal(t, 0, store.TotalItems())
	assert.True(t, store.TotalPrice().IsZero())

	raw, err := bridge.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestStore_TotalPriceAfterMixedActions(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, storage.NewMemoryStore(), discard)

	store.Add(ctx, product(1, 12.5))
	store.Add(ctx, product(2, 0.1))
	store.Add(ctx, product(3, 3.33))
	store.SetQuantity(ctx, 2, 3)
	store.Add(ctx, product(1, 12.5))
	store.Remove(ctx, 3)

	want := decimal.Zero
	for _, item := range store.Items() {
		want = want.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	assert.True(t, want.Equal(store.TotalPrice()))
	assert.True(t, decimal.RequireFromString("25.3").Equal(store.TotalPrice()))
	assert.Equal(t, 5, store.TotalItems())
}

func TestStore_PersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	bridge := storage.NewMemoryStore()
	store := NewStore(ctx, bridge, discard)

	store.Add(ctx, product(1, 10))
	store.SetQuantity(ctx, 1, 4)

	raw, err := bridge.Get(ctx, StorageKey)
	require.NoError(t, err)

	var saved []domain.CartItem
	require.NoError(t, json.Unmarshal(raw, &saved))
	require.Len(t, saved, 1)
	assert.Equal(t, 4, saved[0].Quantity)
	assert.Equal(t, int64(1), saved[0].ID)
}

func TestStore_RehydrateRoundTrip(t *testing.T) {
	ctx := context.Background()
	bridge := storage.NewMemoryStore()

	first := NewStore(ctx, bridge, discard)
	first.Add(ctx, product(1, 10))
	first.Add(ctx, product(2, 20))
	first.Add(ctx, product(1, 10))

	second := NewStore(ctx, bridge, discard)
	assert.Equal(t, first.Items(), second.Items())
}

func TestStore_CorruptStorageStartsEmpty(t *testing.T) {
	ctx := context.Background()
	bridge := storage.NewMemoryStore()
	require.NoError(t, bridge.Set(ctx, StorageKey, []byte("{not json")))

	store := NewStore(ctx, bridge, discard)

	assert.Empty(t, store.Items())
	assert.True(t, store.IsEmpty())
}

func TestStore_PersistFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	bridge := failingBridge{Bridge: storage.NewMemoryStore(), setErr: errors.New("quota exceeded")}
	store := NewStore(ctx, bridge, discard)

	store.Add(ctx, product(1, 10))

	assert.Equal(t, 1, store.TotalItems())
}

func TestStore_PersistsWhenRequestIsCancelled(t *testing.T) {
	bridge := storage.NewMemoryStore()
	store := NewStore(context.Background(), bridge, discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store.Add(ctx, domain.Product{ID: 7, Title: "Ring", Price: 19.99})

	rehydrated := NewStore(context.Background(), bridge, discard)
	assert.Equal(t, store.Items(), rehydrated.Items())
	assert.Equal(t, 1, rehydrated.TotalItems())
}

func TestStore_SettleKeepsLaterAdditions(t *testing.T) {
	ctx := context.Background()
	bridge := storage.NewMemoryStore()
	store := NewStore(ctx, bridge, discard)
	ring := domain.Product{ID: 7, Title: "Ring", Price: 19.99}
	drive := domain.Product{ID: 9, Title: "Drive", Price: 5}

	store.AddQuantity(ctx, ring, 2)
	charged := store.Items()

	store.Add(ctx, ring)
	store.Add(ctx, drive)
	store.Settle(ctx, charged)

	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(7), items[0].ID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, int64(9), items[1].ID)
	assert.Equal(t, 1, items[1].Quantity)
	assert.Equal(t, 2, NewStore(ctx, bridge, discard).TotalItems())
}

func TestStore_SettleWholeCartEmptiesIt(t *testing.T) {
	ctx := context.Background()
	bridge := storage.NewMemoryStore()
	store := NewStore(ctx, bridge, discard)
	store.Add(ctx, domain.Product{ID: 1, Price: 3})
	store.Add(ctx, domain.Product{ID: 2, Price: 4})

	store.Settle(ctx, store.Items())

	assert.True(t, store.IsEmpty())
	raw, err := bridge.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestStore_SettleIgnoresLinesRemovedMeanwhile(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, storage.NewMemoryStore(), discard)
	store.AddQuantity(ctx, domain.Product{ID: 1, Price: 3}, 2)
	charged := store.Items()

	store.Remove(ctx, 1)
	store.Settle(ctx, charged)

	assert.True(t, store.IsEmpty())
}

func TestStore_AddQuantity(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, storage.NewMemoryStore(), discard)

	store.AddQuantity(ctx, product(5, 2), 3)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestStore_ItemsIsACopy(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, storage.NewMemoryStore(), discard)
	store.Add(ctx, product(1, 10))

	items := store.Items()
	items[0].Quantity = 100

	assert.Equal(t, 1, store.TotalItems())
}

func TestFromContext(t *testing.T) {
	store := NewStore(context.Background(), storage.NewMemoryStore(), discard)

	ctx := WithStore(context.Background(), store)
	assert.Same(t, store, FromContext(ctx))

	assert.PanicsWithValue(t, ErrNoStore, func() {
		FromContext(context.Background())
	})
}
