// Package catalog is the read-only product source behind the storefront.
package catalog

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// AllCategories is the synthetic category that matches every product.
const AllCategories = "all"

var ErrProductNotFound = errors.New("product not found")

// API is the product data collaborator used by the listing, the product
// pages and the recommendations.
type API interface {
	ListAll(ctx context.Context) ([]domain.Product, error)
	// ListByCategory returns the products in category; AllCategories returns everything.
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	// Search matches query case-insensitively against title, description and category.
	Search(ctx context.Context, query string) ([]domain.Product, error)
	// GetByID returns ErrProductNotFound when id does not exist.
	GetByID(ctx context.Context, id int64) (domain.Product, error)
	// ListCategories returns AllCategories followed by the real categories.
	ListCategories(ctx context.Context) ([]string, error)
}
