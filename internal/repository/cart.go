package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/cart"
)

const (
	listCartByUserSQL = `SELECT id, user_id, product_id, quantity, added_at
		FROM cart_items WHERE user_id = $1 ORDER BY added_at`

	getCartItemsByIDsSQL = `SELECT id, user_id, product_id, quantity, added_at
		FROM cart_items WHERE user_id = $1 AND id = ANY($2)`

	upsertCartItemSQL = `INSERT INTO cart_items (id, user_id, product_id, quantity, added_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity`

	removeCartItemSQL = `DELETE FROM cart_items WHERE user_id = $1 AND id = $2`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// ListByUser returns the user's cart items in insertion order.
func (r *CartRepository) ListByUser(ctx context.Context, userID string) ([]cart.Item, error) {
	rows, err := r.pool.Query(ctx, listCartByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cart for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanCartItem)
}

// GetByIDs returns the user's cart items matching the given ids. Ids owned
// by other users are silently absent from the result.
func (r *CartRepository) GetByIDs(ctx context.Context, userID string, ids []string) ([]cart.Item, error) {
	rows, err := r.pool.Query(ctx, getCartItemsByIDsSQL, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("getting cart items: %w", err)
	}
	return pgx.CollectRows(rows, scanCartItem)
}

// Upsert inserts the item or replaces the quantity when the user already
// carries the product.
func (r *CartRepository) Upsert(ctx context.Context, item *cart.Item) error {
	if item.Quantity <= 0 {
		return cart.ErrInvalidQuantity
	}
	_, err := r.pool.Exec(ctx, upsertCartItemSQL,
		item.ID, item.UserID, item.ProductID, item.Quantity, item.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting cart item: %w", err)
	}
	return nil
}

// Remove deletes one of the user's cart items.
func (r *CartRepository) Remove(ctx context.Context, userID, itemID string) error {
	tag, err := r.pool.Exec(ctx, removeCartItemSQL, userID, itemID)
	if err != nil {
		return fmt.Errorf("removing cart item %q: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrNotFound
	}
	return nil
}

func scanCartItem(row pgx.CollectableRow) (cart.Item, error) {
	var it cart.Item
	err := row.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.AddedAt)
	return it, err
}
