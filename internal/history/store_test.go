package history

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func p(id int64) domain.Product {
	return domain.Product{ID: id, Title: "Product", Price: 1}
}

func ids(items []domain.Product) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestRecord_MovesRevisitToFront(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, storage.NewMemoryStore(), discard)

	for _, id := range []int64{1, 2, 1, 3} {
		store.Record(ctx, p(id))
	}

	assert.Equal(t, []int64{3, 1, 2}, ids(store.Items()))
}

func TestRecord_KeepsTenMostRecent(t *testing.T) {
	ctx := context.Background()
	bridge := storage.NewMemoryStore()
	store := NewStore(ctx, bridge, discard)

	for id := int64(1); id <= 15; id++ {
		store.Record(ctx, p(id))
	}

	assert.Equal(t, []int64{15, 14, 13, 12, 11, 10, 9, 8, 7, 6}, ids(store.Items()))

	raw, err := bridge.Get(ctx, StorageKey)
	require.NoError(t, err)
	var saved []domain.Product
	require.NoError(t, json.Unmarshal(raw, &saved))
	assert.Equal(t, ids(store.Items()), ids(saved))
}

func TestRecord_FullListRevisitKeepsAll(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, storage.NewMemoryStore(), discard)

	for id := int64(1); id <= 10; id++ {
		store.Record(ctx, p(id))
	}
	store.Record(ctx, p(1))

	assert.Equal(t, []int64{1, 10, 9, 8, 7, 6, 5, 4, 3, 2}, ids(store.Items()))
}

func TestClear_RemovesKey(t *testing.T) {
	ctx := context.Background()
	bridge := storage.NewMemoryStore()
	store := NewStore(ctx, bridge, discard)
	store.Record(ctx, p(1))

	store.Clear(ctx)

	assert.Empty(t, store.Items())
	_, err := bridge.Get(ctx, StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	store.Clear(ctx)
	assert.Empty(t, store.Items())
}

func TestStore_PersistsWhenRequestIsCancelled(t *testing.T) {
	bridge := storage.NewMemoryStore()
	store := NewStore(context.Background(), bridge, discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store.Record(ctx, p(3))
	assert.Equal(t, []int64{3}, ids(NewStore(context.Background(), bridge, discard).Items()))

	store.Clear(ctx)
	_, err := bridge.Get(context.Background(), StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNewStore_Rehydrates(t *testing.T) {
	ctx := context.Background()
	bridge := storage.NewMemoryStore()

	first := NewStore(ctx, bridge, discard)
	first.Record(ctx, p(4))
	first.Record(ctx, p(5))

	second := NewStore(ctx, bridge, discard)
	assert.Equal(t, []int64{5, 4}, ids(second.Items()))
}

func TestNewStore_CorruptStartsEmpty(t *testing.T) {
	ctx := context.Background()
	bridge := storage.NewMemoryStore()
	require.NoError(t, bridge.Set(ctx, StorageKey, []byte(`{"id":`)))

	store := NewStore(ctx, bridge, discard)
	assert.Empty(t, store.Items())

	store.Record(ctx, p(1))
	assert.Equal(t, []int64{1}, ids(store.Items()))
}

func TestLimit(t *testing.T) {
	items := []domain.Product{p(1), p(2), p(3), p(4), p(5)}

	assert.Equal(t, []int64{1, 2, 3, 4}, ids(Limit(items, 4)))
	assert.Len(t, Limit(items, 10), 5)
	assert.Len(t, Limit(items, 0), 5)
	assert.Empty(t, Limit(nil, 4))
}

func TestFromContext(t *testing.T) {
	store := NewStore(context.Background(), storage.NewMemoryStore(), discard)

	assert.Same(t, store, FromContext(WithStore(context.Background(), store)))
	assert.PanicsWithValue(t, ErrNoStore, func() {
		FromContext(context.Background())
	})
}
