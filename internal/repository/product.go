package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, name, price, unit, out_of_stock, image_thumbnail, image_full, store_name
		FROM products ORDER BY name`

	getProductByIDSQL = `SELECT id, name, price, unit, out_of_stock, image_thumbnail, image_full, store_name
		FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT id, name, price, unit, out_of_stock, image_thumbnail, image_full, store_name
		FROM products WHERE id = ANY($1)`

	setOutOfStockSQL = `UPDATE products SET out_of_stock = $2 WHERE id = $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns the full catalog ordered by name.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// SetOutOfStock toggles the stock flag for a product.
func (r *ProductRepository) SetOutOfStock(ctx context.Context, id string, outOfStock bool) error {
	tag, err := r.pool.Exec(ctx, setOutOfStockSQL, id, outOfStock)
	if err != nil {
		return fmt.Errorf("toggling stock for product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.Unit, &p.OutOfStock,
		&p.Image.Thumbnail, &p.Image.Full, &p.StoreName,
	)
	return p, err
}
