package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"product-api/internal/model"
)

// generateSampleProducts writes a gzipped seed file for the seed command.
// The last product carries an id and is skipped on import.
func main() {
	dataDir := "data/seed"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	str := func(s string) *string { return &s }
	num := func(f float64) *float64 { return &f }
	qty := func(i int) *int { return &i }
	id := int64(1000)

	products := []model.Product{
		{Name: str("Widget"), Description: str("A widget"), Price: num(9.99), Quantity: qty(10)},
		{Name: str("Gadget"), Description: str("A gadget"), Price: num(24.5), Quantity: qty(3)},
		{Name: str("Gizmo"), Price: num(4.25), Quantity: qty(0)},
		{Name: str("Sprocket"), Description: str("Price on request")},
		{Name: str("Doohickey"), Price: num(1.99), Quantity: qty(250)},
		{ID: &id, Name: str("Preassigned"), Price: num(1)},
	}

	filePath := filepath.Join(dataDir, "products.jsonl.gz")
	if err := createSeedFile(filePath, products); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d products\n", filePath, len(products))
	fmt.Printf("\nImport with: product-api seed --file %s\n", filePath)
}

func createSeedFile(filePath string, products []model.Product) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	encoder := json.NewEncoder(gzipWriter)
	for _, product := range products {
		if err := encoder.Encode(product); err != nil {
			return fmt.Errorf("failed to write product: %w", err)
		}
	}

	return nil
}
