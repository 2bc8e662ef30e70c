package repository

import (
	"context"

	"product-api/internal/model"
)

// ProductRepository defines the interface for product data access operations.
// Reads run as single queries; writes go through a ProductTx obtained from BeginTx.
type ProductRepository interface {
	// List retrieves every product ordered by id.
	List(ctx context.Context) ([]model.Product, error)

	// ListSortedByPrice retrieves every product ordered by ascending price.
	// Products without a price come last; ties are broken by id.
	ListSortedByPrice(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. It returns nil, nil when
	// the product does not exist.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// BeginTx starts a new transaction.
	BeginTx(ctx context.Context) (ProductTx, error)

	// Ping checks that the underlying store is reachable.
	Ping(ctx context.Context) error
}

// ProductTx is a unit of work over the products store. Writes become visible to
// other callers only after Commit. Rollback after Commit is a no-op, so callers
// can always defer it.
type ProductTx interface {
	// GetByID retrieves a product inside the transaction, locking the row where
	// the store supports it. It returns nil, nil when the product does not exist.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// Insert stores a new product and returns it with its generated ID.
	// Any ID set on the input is ignored.
	Insert(ctx context.Context, product *model.Product) (*model.Product, error)

	// Update overwrites the name, description, price and quantity of the product
	// identified by product.ID. It returns nil, nil when the product does not exist.
	Update(ctx context.Context, product *model.Product) (*model.Product, error)

	// DeleteByID removes a product and reports whether a row was deleted.
	DeleteByID(ctx context.Context, id int64) (bool, error)

	// Commit makes the transaction's writes durable.
	Commit(ctx context.Context) error

	// Rollback discards the transaction's writes.
	Rollback(ctx context.Context) error
}
