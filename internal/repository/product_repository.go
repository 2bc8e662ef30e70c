package repository

import (
	"context"
	"errors"
	"fmt"

	"product-api/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = "id, name, description, price, quantity"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Str("store", "postgres").Logger(),
	}
}

// List retrieves every product ordered by id.
func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY id
	`

	products, err := queryProducts(ctx, r.pool, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, err
	}

	return products, nil
}

// ListSortedByPrice retrieves every product ordered by ascending price.
func (r *productRepository) ListSortedByPrice(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY price ASC NULLS LAST, id
	`

	products, err := queryProducts(ctx, r.pool, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products sorted by price")
		return nil, err
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	p, err := queryProduct(ctx, r.pool, query, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, err
	}
	if p == nil {
		r.logger.Debug().Int64("product_id", id).Msg("product not found")
	}

	return p, nil
}

// BeginTx starts a new database transaction.
func (r *productRepository) BeginTx(ctx context.Context) (ProductTx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &productTx{tx: tx, logger: r.logger}, nil
}

// Ping checks database connectivity.
func (r *productRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// productTx implements ProductTx on top of a pgx transaction.
type productTx struct {
	tx     pgx.Tx
	logger zerolog.Logger
}

// GetByID retrieves a product and locks its row until the transaction ends.
func (t *productTx) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
		FOR UPDATE
	`

	p, err := queryProduct(ctx, t.tx, query, id)
	if err != nil {
		t.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product for update")
		return nil, err
	}

	return p, nil
}

// Insert stores a new product and returns it with its generated ID.
func (t *productTx) Insert(ctx context.Context, product *model.Product) (*model.Product, error) {
	query := `
		INSERT INTO products (name, description, price, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + productColumns

	p, err := queryProduct(ctx, t.tx, query, product.Name, product.Description, product.Price, product.Quantity)
	if err != nil {
		t.logger.Error().Err(err).Msg("failed to insert product")
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("failed to insert product: no row returned")
	}

	return p, nil
}

// Update overwrites the mutable fields of an existing product.
func (t *productTx) Update(ctx context.Context, product *model.Product) (*model.Product, error) {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, quantity = $5
		WHERE id = $1
		RETURNING ` + productColumns

	id := product.GetID()
	p, err := queryProduct(ctx, t.tx, query, id, product.Name, product.Description, product.Price, product.Quantity)
	if err != nil {
		t.logger.Error().Err(err).Int64("product_id", id).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return p, nil
}

// DeleteByID removes a product and reports whether a row was deleted.
func (t *productTx) DeleteByID(ctx context.Context, id int64) (bool, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		t.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return false, fmt.Errorf("failed to delete product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Commit commits the transaction.
func (t *productTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback rolls the transaction back. It is a no-op once the transaction has
// been committed or rolled back.
func (t *productTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

func queryProducts(ctx context.Context, q querier, query string, args ...any) ([]model.Product, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Product])
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}

	return products, nil
}

// queryProduct returns nil, nil when the query yields no row.
func queryProduct(ctx context.Context, q querier, query string, args ...any) (*model.Product, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Product])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	return p, nil
}
