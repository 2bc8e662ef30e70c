// Package seed imports products from newline-delimited JSON files kept on the
// local file system or in S3.
package seed

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"product-api/internal/model"
)

// Loader defines the interface for loading product seed files.
type Loader interface {
	// Load reads a seed file and returns the products it contains. Names ending
	// in .gz are decompressed.
	Load(ctx context.Context, name string) ([]model.Product, error)
}

// decode reads one JSON product per non-empty line.
func decode(ctx context.Context, r io.Reader, name string) ([]model.Product, error) {
	if strings.HasSuffix(name, ".gz") {
		gzipReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
		}
		defer gzipReader.Close()
		r = gzipReader
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var products []model.Product
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++

		if lineNumber%10_000 == 1 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var p model.Product
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			return nil, fmt.Errorf("invalid product on line %d of %s: %w", lineNumber, name, err)
		}
		products = append(products, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading seed file %s: %w", name, err)
	}

	return products, nil
}
