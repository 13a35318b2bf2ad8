package catalog

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func setupCache(t *testing.T, next API) (*CachedAPI, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCachedAPI(next, client, time.Minute, discard), mr
}

func TestCachedAPI_ServesRepeatedReadsFromCache(t *testing.T) {
	stub := &stubAPI{products: sampleProducts()}
	api, mr := setupCache(t, stub)
	ctx := context.Background()

	first, err := api.ListByCategory(ctx, "electronics")
	require.NoError(t, err)
	second, err := api.ListByCategory(ctx, "electronics")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), stub.calls.Load())
	assert.True(t, mr.Exists("catalog:products:category:electronics"))

	ttl := mr.TTL("catalog:products:category:electronics")
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.LessOrEqual(t, ttl, time.Minute+12*time.Second)
}

func TestCachedAPI_SearchKeyIgnoresCase(t *testing.T) {
	stub := &stubAPI{products: sampleProducts()}
	api, _ := setupCache(t, stub)
	ctx := context.Background()

	_, err := api.Search(ctx, "Phone")
	require.NoError(t, err)
	got, err := api.Search(ctx, "phone ")
	require.NoError(t, err)

	assert.Len(t, got, 2)
	assert.Equal(t, int32(1), stub.calls.Load())
}

func TestCachedAPI_NotFoundIsNotCached(t *testing.T) {
	stub := &stubAPI{products: sampleProducts()}
	api, mr := setupCache(t, stub)
	ctx := context.Background()

	_, err := api.GetByID(ctx, 42)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.False(t, mr.Exists("catalog:product:42"))

	p, err := api.GetByID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "Phone Case", p.Title)
}

func TestCachedAPI_RedisDownFallsThrough(t *testing.T) {
	stub := &stubAPI{products: sampleProducts()}
	api, mr := setupCache(t, stub)
	mr.Close()

	products, err := api.ListAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, products, 6)
}

func TestCachedAPI_CorruptEntryReloads(t *testing.T) {
	stub := &stubAPI{products: sampleProducts()}
	api, mr := setupCache(t, stub)
	require.NoError(t, mr.Set("catalog:categories", "not json"))

	categories, err := api.ListCategories(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{AllCategories, "electronics"}, categories)
	assert.Equal(t, int32(1), stub.calls.Load())
}

func TestCachedAPI_ConcurrentMissesShareOneLoad(t *testing.T) {
	stub := &stubAPI{products: sampleProducts()}
	api, _ := setupCache(t, stub)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := api.ListAll(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, stub.calls.Load(), int32(20))
	assert.GreaterOrEqual(t, stub.calls.Load(), int32(1))
}

func TestCachedAPI_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	stub := &stubAPI{products: sampleProducts(), gate: make(chan struct{})}
	api, mr := setupCache(t, stub)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := api.ListByCategory(ctxA, AllCategories)
		errA <- err
	}()
	require.Eventually(t, func() bool { return stub.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	type result struct {
		products int
		err      error
	}
	resB := make(chan result, 1)
	go func() {
		products, err := api.ListByCategory(context.Background(), AllCategories)
		resB <- result{len(products), err}
	}()

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(stub.gate)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, 6, b.products)
	assert.True(t, mr.Exists("catalog:products:category:all"))
}

func TestCachedAPI_Invalidate(t *testing.T) {
	stub := &stubAPI{products: sampleProducts()}
	api, mr := setupCache(t, stub)
	ctx := context.Background()

	_, err := api.ListAll(ctx)
	require.NoError(t, err)
	require.NoError(t, mr.Set("session:abc:cart", "[]"))

	require.NoError(t, api.Invalidate(ctx))

	assert.False(t, mr.Exists("catalog:products:all"))
	assert.True(t, mr.Exists("session:abc:cart"))

	_, err = api.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), stub.calls.Load())
}
