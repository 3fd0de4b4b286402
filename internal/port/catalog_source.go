package port

import "context"

// CatalogSource fetches the raw rule catalog document.
type CatalogSource interface {
	Fetch(ctx context.Context) ([]byte, error)
	Describe() string
}
