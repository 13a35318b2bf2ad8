package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var errCacheMiss = errors.New("cache miss")

// sharedLoadTimeout bounds a load shared by several callers; it outlives
// the cancellation of whichever caller started it.
const sharedLoadTimeout = 10 * time.Second

// CachedAPI is a read-through Redis cache in front of another API.
// Cache failures are logged and the request falls through to next.
type CachedAPI struct {
	next    API
	client  *redis.Client
	baseTTL time.Duration
	logger  *slog.Logger
	sfg     singleflight.Group // one backend call per key at a time
}

var _ API = (*CachedAPI)(nil)

func NewCachedAPI(next API, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedAPI {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedAPI{
		next:    next,
		client:  client,
		baseTTL: ttl,
		logger:  logger.With("component", "catalog_cache"),
	}
}

func (c *CachedAPI) ListAll(ctx context.Context) ([]domain.Product, error) {
	return cached(ctx, c, "catalog:products:all", func(ctx context.Context) ([]domain.Product, error) {
		return c.next.ListAll(ctx)
	})
}

func (c *CachedAPI) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return cached(ctx, c, "catalog:products:category:"+category, func(ctx context.Context) ([]domain.Product, error) {
		return c.next.ListByCategory(ctx, category)
	})
}

func (c *CachedAPI) Search(ctx context.Context, query string) ([]domain.Product, error) {
	key := "catalog:products:search:" + strings.ToLower(strings.TrimSpace(query))
	return cached(ctx, c, key, func(ctx context.Context) ([]domain.Product, error) {
		return c.next.Search(ctx, query)
	})
}

func (c *CachedAPI) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	return cached(ctx, c, fmt.Sprintf("catalog:product:%d", id), func(ctx context.Context) (domain.Product, error) {
		return c.next.GetByID(ctx, id)
	})
}

func (c *CachedAPI) ListCategories(ctx context.Context) ([]string, error) {
	return cached(ctx, c, "catalog:categories", func(ctx context.Context) ([]string, error) {
		return c.next.ListCategories(ctx)
	})
}

func cached[T any](ctx context.Context, c *CachedAPI, key string, load func(context.Context) (T, error)) (T, error) {
	const op = "CachedAPI.get"

	ch := c.sfg.DoChan(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()

		hit, err := c.get(ctx, key)
		if err == nil {
			var out T
			if err := json.Unmarshal(hit, &out); err == nil {
				return out, nil
			}
			c.logger.Warn("dropping undecodable cache entry", "op", op, "key", key)
		} else if !errors.Is(err, errCacheMiss) {
			c.logger.Error("cache get error", "op", op, "key", key, "err", err)
		}

		out, err := load(ctx)
		if err != nil {
			return out, err
		}

		if err := c.set(ctx, key, out); err != nil {
			c.logger.Error("cache set error", "op", op, "key", key, "err", err)
		}
		return out, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (c *CachedAPI) get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (c *CachedAPI) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}

	ttl := c.baseTTL
	if ttl > 0 {
		// spread expiries so hot keys do not all reload together
		ttl += time.Duration(rand.Int63n(int64(ttl)/5 + 1))
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Invalidate drops every cached catalog entry.
func (c *CachedAPI) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "catalog:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis delete failed: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	return nil
}
