package seed

import (
	"context"
	"errors"
	"fmt"

	"product-api/internal/model"
	"product-api/internal/service"

	"github.com/rs/zerolog"
)

// Result summarises a seed import.
type Result struct {
	Created int
	Skipped int
}

// Importer creates seed products through the product service so the regular
// create rules apply to every row.
type Importer struct {
	loader  Loader
	service service.ProductService
	logger  zerolog.Logger
}

// NewImporter creates a new seed importer.
func NewImporter(loader Loader, productService service.ProductService, logger zerolog.Logger) *Importer {
	return &Importer{
		loader:  loader,
		service: productService,
		logger:  logger.With().Str("component", "seed-importer").Logger(),
	}
}

// Import loads the named seed file and creates each product. Rows rejected by
// validation, such as rows carrying an id, are skipped. Any other error stops
// the import.
func (i *Importer) Import(ctx context.Context, name string) (Result, error) {
	var result Result

	products, err := i.loader.Load(ctx, name)
	if err != nil {
		return result, fmt.Errorf("failed to load seed file: %w", err)
	}

	for n := range products {
		if _, err := i.service.Create(ctx, &products[n]); err != nil {
			if errors.Is(err, model.ErrValidation) {
				i.logger.Warn().
					Err(err).
					Int("row", n+1).
					Str("name", products[n].GetName()).
					Msg("skipping invalid seed product")
				result.Skipped++
				continue
			}
			return result, fmt.Errorf("failed to import seed product %d: %w", n+1, err)
		}
		result.Created++
	}

	i.logger.Info().
		Str("source", name).
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Msg("seed import completed")

	return result, nil
}
