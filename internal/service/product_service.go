package service

import (
	"context"
	"fmt"

	"product-api/internal/events"
	"product-api/internal/model"
	"product-api/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	publisher   events.Publisher
	validate    *validator.Validate
	logger      zerolog.Logger
}

// NewProductService creates a new product service. Change events are sent to
// publisher after every committed write.
func NewProductService(productRepo repository.ProductRepository, publisher events.Publisher, logger zerolog.Logger) ProductService {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}

	return &productService{
		productRepo: productRepo,
		publisher:   publisher,
		validate:    newValidator(),
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves every product.
func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	if products == nil {
		products = []model.Product{}
	}

	s.logger.Debug().Int("count", len(products)).Msg("retrieved products")

	return products, nil
}

// ListSortedByPrice retrieves every product ordered by ascending price.
func (s *productService) ListSortedByPrice(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListSortedByPrice(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products sorted by price")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	if products == nil {
		products = []model.Product{}
	}

	s.logger.Debug().Int("count", len(products)).Msg("retrieved products sorted by price")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Int64("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// Create stores a new product in a single transaction.
func (s *productService) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	if err := s.validateCreate(product); err != nil {
		s.logger.Warn().Err(err).Msg("rejected product create")
		return nil, err
	}

	tx, err := s.productRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	defer s.rollback(ctx, tx)

	created, err := tx.Insert(ctx, product)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to insert product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("product_id", created.GetID()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().Int64("product_id", created.GetID()).Msg("product created successfully")
	s.publish(ctx, events.ProductCreated, created)

	return created, nil
}

// Update overwrites name, description, price and quantity of an existing
// product in a single transaction. The ID is preserved.
func (s *productService) Update(ctx context.Context, id int64, product *model.Product) (*model.Product, error) {
	if err := s.validateUpdate(product); err != nil {
		s.logger.Warn().Err(err).Int64("product_id", id).Msg("rejected product update")
		return nil, err
	}

	tx, err := s.productRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	defer s.rollback(ctx, tx)

	current, err := tx.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to load product for update")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if current == nil {
		s.logger.Debug().Int64("product_id", id).Msg("product not found for update")
		return nil, model.ErrProductNotFound
	}

	current.Overwrite(product)

	updated, err := tx.Update(ctx, current)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if updated == nil {
		return nil, model.ErrProductNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().Int64("product_id", id).Msg("product updated successfully")
	s.publish(ctx, events.ProductUpdated, updated)

	return updated, nil
}

// Delete removes a product in a single transaction.
func (s *productService) Delete(ctx context.Context, id int64) error {
	tx, err := s.productRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to delete product: %w", err)
	}
	defer s.rollback(ctx, tx)

	deleted, err := tx.DeleteByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !deleted {
		s.logger.Debug().Int64("product_id", id).Msg("product not found for delete")
		return model.ErrProductNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to commit transaction")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info().Int64("product_id", id).Msg("product deleted successfully")
	s.publish(ctx, events.ProductDeleted, &model.Product{ID: &id})

	return nil
}

// CheckStock reports whether the product's quantity is at least count.
func (s *productService) CheckStock(ctx context.Context, id int64, count int) (bool, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	inStock := product.HasStock(count)

	s.logger.Debug().
		Int64("product_id", id).
		Int("count", count).
		Int("quantity", product.GetQuantity()).
		Bool("in_stock", inStock).
		Msg("checked product stock")

	return inStock, nil
}

// rollback is deferred by every write; after a commit it does nothing.
func (s *productService) rollback(ctx context.Context, tx repository.ProductTx) {
	if err := tx.Rollback(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to rollback transaction")
	}
}

// publish sends a change event. Failures are logged and never reach the caller.
func (s *productService) publish(ctx context.Context, eventType events.EventType, product *model.Product) {
	event := events.NewEvent(eventType, product)
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn().
			Err(err).
			Str("event_type", string(eventType)).
			Int64("product_id", event.ProductID).
			Msg("failed to publish product event")
	}
}
