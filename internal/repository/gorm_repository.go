package repository

import (
	"context"
	"errors"
	"fmt"

	"product-api/internal/model"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// productRecord is the gorm mapping of the products table.
type productRecord struct {
	ID          int64    `gorm:"primaryKey;autoIncrement"`
	Name        *string  `gorm:"size:255"`
	Description *string  `gorm:"type:text"`
	Price       *float64 `gorm:"index:idx_products_price"`
	Quantity    *int
}

func (productRecord) TableName() string {
	return "products"
}

func newProductRecord(p *model.Product) productRecord {
	return productRecord{
		ID:          p.GetID(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
	}
}

func (r productRecord) toModel() model.Product {
	id := r.ID
	return model.Product{
		ID:          &id,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Quantity:    r.Quantity,
	}
}

func toModels(records []productRecord) []model.Product {
	products := make([]model.Product, 0, len(records))
	for _, r := range records {
		products = append(products, r.toModel())
	}
	return products
}

// OpenSQLite opens the SQLite database at path and creates the products table
// if it does not exist yet.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite connection: %w", err)
	}
	// SQLite allows a single writer.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&productRecord{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}

	return db, nil
}

// gormProductRepository implements the ProductRepository interface using gorm.
type gormProductRepository struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewGormProductRepository creates a new gorm-backed product repository.
func NewGormProductRepository(db *gorm.DB, logger zerolog.Logger) ProductRepository {
	return &gormProductRepository{
		db:     db,
		logger: logger.With().Str("repository", "product").Str("store", "sqlite").Logger(),
	}
}

func (r *gormProductRepository) List(ctx context.Context) ([]model.Product, error) {
	var records []productRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	return toModels(records), nil
}

func (r *gormProductRepository) ListSortedByPrice(ctx context.Context) ([]model.Product, error) {
	var records []productRecord
	err := r.db.WithContext(ctx).
		Order("price IS NULL").
		Order("price ASC").
		Order("id").
		Find(&records).Error
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products sorted by price")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	return toModels(records), nil
}

func (r *gormProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	p, err := findProduct(r.db.WithContext(ctx), id)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, err
	}
	if p == nil {
		r.logger.Debug().Int64("product_id", id).Msg("product not found")
	}

	return p, nil
}

func (r *gormProductRepository) BeginTx(ctx context.Context) (ProductTx, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		r.logger.Error().Err(tx.Error).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	return &gormProductTx{tx: tx, logger: r.logger}, nil
}

func (r *gormProductRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sqlite connection: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return nil
}

// gormProductTx implements ProductTx on top of a gorm transaction. SQLite
// serialises writers, so GetByID takes no row lock.
type gormProductTx struct {
	tx     *gorm.DB
	done   bool
	logger zerolog.Logger
}

func (t *gormProductTx) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	return findProduct(t.tx.WithContext(ctx), id)
}

func (t *gormProductTx) Insert(ctx context.Context, product *model.Product) (*model.Product, error) {
	record := newProductRecord(product)
	record.ID = 0

	if err := t.tx.WithContext(ctx).Create(&record).Error; err != nil {
		t.logger.Error().Err(err).Msg("failed to insert product")
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	p := record.toModel()
	return &p, nil
}

func (t *gormProductTx) Update(ctx context.Context, product *model.Product) (*model.Product, error) {
	id := product.GetID()
	record := newProductRecord(product)

	// Select writes every column, including nil ones.
	result := t.tx.WithContext(ctx).
		Model(&productRecord{ID: id}).
		Select("name", "description", "price", "quantity").
		Updates(&record)
	if result.Error != nil {
		t.logger.Error().Err(result.Error).Int64("product_id", id).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return findProduct(t.tx.WithContext(ctx), id)
}

func (t *gormProductTx) DeleteByID(ctx context.Context, id int64) (bool, error) {
	result := t.tx.WithContext(ctx).Delete(&productRecord{}, id)
	if result.Error != nil {
		t.logger.Error().Err(result.Error).Int64("product_id", id).Msg("failed to delete product")
		return false, fmt.Errorf("failed to delete product: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (t *gormProductTx) Commit(ctx context.Context) error {
	if t.done {
		return fmt.Errorf("failed to commit transaction: transaction already closed")
	}
	t.done = true
	if err := t.tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *gormProductTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback().Error; err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

func findProduct(db *gorm.DB, id int64) (*model.Product, error) {
	var record productRecord
	if err := db.Take(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	p := record.toModel()
	return &p, nil
}
