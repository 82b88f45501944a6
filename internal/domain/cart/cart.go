// Package cart holds a user's selected product quantities. Subtotals are
// computed against live product prices at read time; prices freeze into an
// order only at checkout.
package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/product"
)

var (
	// ErrNotFound is returned when a cart item does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("cart item not found")
	// ErrInvalidQuantity is returned for non-positive quantities.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
)

// Item is one product+quantity pair in a user's cart.
type Item struct {
	ID        string
	UserID    string
	ProductID string
	Quantity  int
	AddedAt   time.Time
}

// Repository defines cart persistence. Upsert replaces the quantity when the
// user already has the product in their cart.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Item, error)
	// GetByIDs returns the user's cart items matching the given item ids.
	// Ids belonging to other users are not returned.
	GetByIDs(ctx context.Context, userID string, ids []string) ([]Item, error)
	Upsert(ctx context.Context, item *Item) error
	Remove(ctx context.Context, userID, itemID string) error
}

// Subtotal sums price x quantity across items. Items whose product is out of
// stock contribute zero: they cannot be purchased but may still be shown.
func Subtotal(items []Item, products map[string]product.Product) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok || p.OutOfStock {
			continue
		}
		sum = sum.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}
