package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"product-api/internal/model"

	"github.com/rs/zerolog"
)

// memoryProductRepository implements the ProductRepository interface with an
// in-process map. It backs tests and the memory store driver.
type memoryProductRepository struct {
	mu       sync.RWMutex
	products map[int64]model.Product
	nextID   int64
	logger   zerolog.Logger
}

// NewMemoryProductRepository creates an empty in-memory product repository.
func NewMemoryProductRepository(logger zerolog.Logger) ProductRepository {
	return &memoryProductRepository{
		products: make(map[int64]model.Product),
		nextID:   1,
		logger:   logger.With().Str("repository", "product").Str("store", "memory").Logger(),
	}
}

func (r *memoryProductRepository) List(ctx context.Context) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	products := r.snapshot()
	sort.Slice(products, func(i, j int) bool {
		return products[i].GetID() < products[j].GetID()
	})

	return products, nil
}

func (r *memoryProductRepository) ListSortedByPrice(ctx context.Context) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	products := r.snapshot()
	sort.Slice(products, func(i, j int) bool {
		return lessByPrice(products[i], products[j])
	})

	return products, nil
}

func (r *memoryProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		r.logger.Debug().Int64("product_id", id).Msg("product not found")
		return nil, nil
	}

	return p.Clone(), nil
}

// BeginTx takes the store's write lock, which is held until the transaction
// is committed or rolled back.
func (r *memoryProductRepository) BeginTx(ctx context.Context) (ProductTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	r.mu.Lock()

	return &memoryProductTx{
		repo:    r,
		pending: make(map[int64]*model.Product),
		nextID:  r.nextID,
	}, nil
}

func (r *memoryProductRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// snapshot copies the stored products. Callers must hold the lock.
func (r *memoryProductRepository) snapshot() []model.Product {
	products := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, *p.Clone())
	}
	return products
}

// lessByPrice orders by ascending price, nil prices last, then by id.
func lessByPrice(a, b model.Product) bool {
	switch {
	case a.Price == nil && b.Price == nil:
		return a.GetID() < b.GetID()
	case a.Price == nil:
		return false
	case b.Price == nil:
		return true
	case *a.Price != *b.Price:
		return *a.Price < *b.Price
	default:
		return a.GetID() < b.GetID()
	}
}

// memoryProductTx stages writes until Commit. A nil entry in pending marks a
// deleted product.
type memoryProductTx struct {
	repo    *memoryProductRepository
	pending map[int64]*model.Product
	nextID  int64
	done    bool
}

func (t *memoryProductTx) lookup(id int64) (*model.Product, bool) {
	if p, ok := t.pending[id]; ok {
		return p, p != nil
	}
	p, ok := t.repo.products[id]
	if !ok {
		return nil, false
	}
	return &p, true
}

func (t *memoryProductTx) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if err := t.check(ctx); err != nil {
		return nil, err
	}

	p, ok := t.lookup(id)
	if !ok {
		return nil, nil
	}

	return p.Clone(), nil
}

func (t *memoryProductTx) Insert(ctx context.Context, product *model.Product) (*model.Product, error) {
	if err := t.check(ctx); err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	id := t.nextID
	t.nextID++

	stored := product.Clone()
	stored.ID = &id
	t.pending[id] = stored

	return stored.Clone(), nil
}

func (t *memoryProductTx) Update(ctx context.Context, product *model.Product) (*model.Product, error) {
	if err := t.check(ctx); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	id := product.GetID()
	existing, ok := t.lookup(id)
	if !ok {
		return nil, nil
	}

	updated := existing.Clone()
	updated.Overwrite(product)
	t.pending[id] = updated

	return updated.Clone(), nil
}

func (t *memoryProductTx) DeleteByID(ctx context.Context, id int64) (bool, error) {
	if err := t.check(ctx); err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}

	if _, ok := t.lookup(id); !ok {
		return false, nil
	}
	t.pending[id] = nil

	return true, nil
}

func (t *memoryProductTx) Commit(ctx context.Context) error {
	if t.done {
		return fmt.Errorf("failed to commit transaction: transaction already closed")
	}
	t.done = true
	defer t.repo.mu.Unlock()

	for id, p := range t.pending {
		if p == nil {
			delete(t.repo.products, id)
			continue
		}
		t.repo.products[id] = *p
	}
	t.repo.nextID = t.nextID

	return nil
}

func (t *memoryProductTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.repo.mu.Unlock()

	return nil
}

func (t *memoryProductTx) check(ctx context.Context) error {
	if t.done {
		return fmt.Errorf("transaction already closed")
	}
	return ctx.Err()
}
