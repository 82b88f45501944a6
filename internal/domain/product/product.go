package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a perishable catalog item. Products are never deleted; when a
// store runs out, the OutOfStock flag is raised instead.
type Product struct {
	ID         string
	Name       string
	Price      decimal.Decimal
	Unit       string // e.g. "500g", "1 dozen"
	OutOfStock bool
	Image      Image
	StoreName  string
}

// Image holds the image URLs for a product.
type Image struct {
	Thumbnail string
	Full      string
}

// Repository defines catalog operations.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	// SetOutOfStock toggles the stock flag (admin operation).
	SetOutOfStock(ctx context.Context, id string, outOfStock bool) error
}

// MapByID indexes products by their identifier.
func MapByID(products []Product) map[string]Product {
	m := make(map[string]Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m
}
