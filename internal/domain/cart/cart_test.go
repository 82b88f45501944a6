package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/product"
)

func TestSubtotal(t *testing.T) {
	products := map[string]product.Product{
		"p1": {ID: "p1", Price: decimal.NewFromInt(100)},
		"p2": {ID: "p2", Price: decimal.NewFromInt(250), OutOfStock: true},
		"p3": {ID: "p3", Price: decimal.NewFromInt(40)},
	}

	items := []Item{
		{ID: "c1", ProductID: "p1", Quantity: 2}, // 200
		{ID: "c2", ProductID: "p2", Quantity: 1}, // skipped: out of stock
		{ID: "c3", ProductID: "p3", Quantity: 3}, // 120
		{ID: "c4", ProductID: "p9", Quantity: 1}, // skipped: unknown product
	}

	got := Subtotal(items, products)
	assert.True(t, decimal.NewFromInt(320).Equal(got), "got %s", got)
}

func TestSubtotalEmpty(t *testing.T) {
	assert.True(t, Subtotal(nil, nil).IsZero())
}
