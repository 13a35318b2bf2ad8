package catalog

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// stubAPI serves a fixed product list and counts backend calls.
type stubAPI struct {
	products []domain.Product
	err      error
	calls    atomic.Int32
	// gate, when set, holds every ListAll until closed or ctx is done
	gate chan struct{}
}

func (s *stubAPI) ListAll(ctx context.Context) ([]domain.Product, error) {
	s.calls.Add(1)
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.Product(nil), s.products...), nil
}

func (s *stubAPI) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	all, err := s.ListAll(ctx)
	if err != nil || category == AllCategories {
		return all, err
	}
	var out []domain.Product
	for _, p := range all {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubAPI) Search(ctx context.Context, query string) ([]domain.Product, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Product
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubAPI) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range all {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, ErrProductNotFound
}

func (s *stubAPI) ListCategories(context.Context) ([]string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return []string{AllCategories, "electronics"}, nil
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Title: "Phone", Price: 199.99, Category: "electronics"},
		{ID: 2, Title: "Ring", Price: 9.99, Category: "jewelery"},
		{ID: 3, Title: "Jacket", Price: 55.99, Category: "men's clothing"},
		{ID: 4, Title: "Phone Case", Price: 14.99, Category: "electronics"},
		{ID: 5, Title: "Monitor", Price: 599, Category: "electronics"},
		{ID: 6, Title: "Bracelet", Price: 695, Category: "jewelery"},
	}
}
