package catalog

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// DefaultRecommendations is the number of products suggested on a product page.
const DefaultRecommendations = 4

// Recommend picks up to limit random products other than excludeID.
func Recommend(ctx context.Context, api API, excludeID int64, limit int) ([]domain.Product, error) {
	all, err := api.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	pool := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if p.ID != excludeID {
			pool = append(pool, p)
		}
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	if limit >= 0 && len(pool) > limit {
		pool = pool[:limit]
	}
	return pool, nil
}
