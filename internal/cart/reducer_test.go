package cart

import (
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int64, price float64) domain.Product {
	return domain.Product{ID: id, Title: "Product", Price: price, Category: "electronics"}
}

func TestReduce_AddDistinctProducts(t *testing.T) {
	var items []domain.CartItem
	for id := int64(1); id <= 5; id++ {
		items = Reduce(items, Add{Product: product(id, 10)})
	}

	require.Len(t, items, 5)
	for i, item := range items {
		assert.Equal(t, int64(i+1), item.ID, "insertion order")
		assert.Equal(t, 1, item.Quantity)
	}
}

func TestReduce_AddSameProductIncrements(t *testing.T) {
	items := Reduce(nil, Add{Product: product(1, 10)})
	items = Reduce(items, Add{Product: product(2, 10)})
	for i := 0; i < 4; i++ {
		items = Reduce(items, Add{Product: product(1, 10)})
	}

	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID, "incremented item keeps its position")
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestReduce_Remove(t *testing.T) {
	items := Reduce(nil, Add{Product: product(1, 10)})
	items = Reduce(items, Add{Product: product(2, 10)})

	items = Reduce(items, Remove{ProductID: 1})
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ID)

	same := Reduce(items, Remove{ProductID: 42})
	assert.Equal(t, items, same)
}

func TestReduce_SetQuantity(t *testing.T) {
	items := Reduce(nil, Add{Product: product(1, 10)})
	items = Reduce(items, Add{Product: product(2, 10)})

	items = Reduce(items, SetQuantity{ProductID: 2, Quantity: 7})
	assert.Equal(t, 7, items[1].Quantity)

	t.Run("ZeroRemoves", func(t *testing.T) {
		got := Reduce(items, SetQuantity{ProductID: 1, Quantity: 0})
		require.Len(t, got, 1)
		assert.Equal(t, int64(2), got[0].ID)
	})

	t.Run("NegativeRemoves", func(t *testing.T) {
		got := Reduce(items, SetQuantity{ProductID: 1, Quantity: -3})
		require.Len(t, got, 1)
		assert.Equal(t, int64(2), got[0].ID)
	})

	t.Run("MissingIsNoop", func(t *testing.T) {
		got := Reduce(items, SetQuantity{ProductID: 99, Quantity: 4})
		assert.Equal(t, items, got)
	})
}

func TestReduce_ClearAndLoad(t *testing.T) {
	items := Reduce(nil, Add{Product: product(1, 10)})

	cleared := Reduce(items, Clear{})
	assert.NotNil(t, cleared)
	assert.Empty(t, cleared)

	saved := []domain.CartItem{{Product: product(3, 1), Quantity: 2}, {Product: product(4, 2), Quantity: 1}}
	loaded := Reduce(cleared, Load{Items: saved})
	assert.Equal(t, saved, loaded)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	items := Reduce(nil, Add{Product: product(1, 10)})
	before := append([]domain.CartItem(nil), items...)

	_ = Reduce(items, Add{Product: product(1, 10)})
	_ = Reduce(items, SetQuantity{ProductID: 1, Quantity: 9})
	_ = Reduce(items, Remove{ProductID: 1})
	_ = Reduce(items, Clear{})

	assert.Equal(t, before, items)
}

func TestReduce_UnknownActionKeepsState(t *testing.T) {
	items := Reduce(nil, Add{Product: product(1, 10)})
	assert.Equal(t, items, Reduce(items, nil))
}
