// Package file reads rule catalogs from the local filesystem.
package file

import (
	"context"
	"fmt"
	"os"

	"taxdocs/internal/port"
)

type catalogFile struct {
	path string
}

// NewCatalogSource returns a CatalogSource reading path on every Fetch.
func NewCatalogSource(path string) port.CatalogSource {
	return &catalogFile{path: path}
}

func (f *catalogFile) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return data, nil
}

func (f *catalogFile) Describe() string {
	return f.path
}
