package service

import (
	"context"

	"product-api/internal/model"
)

// ProductService defines operations for product management.
type ProductService interface {
	// List retrieves every product.
	List(ctx context.Context) ([]model.Product, error)

	// ListSortedByPrice retrieves every product ordered by ascending price.
	ListSortedByPrice(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// Create stores a new product. The product must not carry an ID.
	Create(ctx context.Context, product *model.Product) (*model.Product, error)

	// Update overwrites the mutable fields of an existing product. The name must be set.
	Update(ctx context.Context, id int64, product *model.Product) (*model.Product, error)

	// Delete removes a product.
	Delete(ctx context.Context, id int64) error

	// CheckStock reports whether the product's quantity covers count.
	CheckStock(ctx context.Context, id int64, count int) (bool, error)
}
