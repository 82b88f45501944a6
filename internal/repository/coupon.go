package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/coupon"
)

const (
	couponColumns = `c.id, c.code, c.percent_off, c.flat_off, c.max_discount,
		c.min_order, c.target_user, c.max_per_user, c.valid_till,
		c.invalidated, c.exclusive,
		COALESCE(array_agg(cp.product_id::text)
			FILTER (WHERE cp.product_id IS NOT NULL), '{}')`

	getCouponByIDSQL = `SELECT ` + couponColumns + `
		FROM coupons c
		LEFT JOIN coupon_products cp ON cp.coupon_id = c.id
		WHERE c.id = $1 GROUP BY c.id`

	getCouponByCodeSQL = `SELECT ` + couponColumns + `
		FROM coupons c
		LEFT JOIN coupon_products cp ON cp.coupon_id = c.id
		WHERE c.code = $1 GROUP BY c.id`

	listCandidateCouponsSQL = `SELECT ` + couponColumns + `
		FROM coupons c
		LEFT JOIN coupon_products cp ON cp.coupon_id = c.id
		WHERE NOT c.invalidated AND (c.target_user IS NULL OR c.target_user = $1)
		GROUP BY c.id ORDER BY c.created_at`

	usageCountsSQL = `SELECT coupon_id, COUNT(*) FROM coupon_usages
		WHERE user_id = $1 AND coupon_id = ANY($2) GROUP BY coupon_id`

	createCouponSQL = `INSERT INTO coupons (id, code, percent_off, flat_off,
		max_discount, min_order, target_user, max_per_user, valid_till,
		invalidated, exclusive)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	addCouponProductSQL = `INSERT INTO coupon_products (coupon_id, product_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`

	invalidateCouponSQL = `UPDATE coupons SET invalidated = TRUE WHERE id = $1`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// GetByID returns a single coupon with its product scope.
func (r *CouponRepository) GetByID(ctx context.Context, id string) (*coupon.Coupon, error) {
	return r.getOne(ctx, getCouponByIDSQL, id)
}

// GetByCode returns a single coupon by its human-facing code.
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	return r.getOne(ctx, getCouponByCodeSQL, code)
}

func (r *CouponRepository) getOne(ctx context.Context, sql, arg string) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting coupon: %w", err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, fmt.Errorf("getting coupon: %w", err)
	}
	return &c, nil
}

// ListCandidates returns non-invalidated coupons visible to the user. The
// remaining eligibility rules are applied in the domain layer.
func (r *CouponRepository) ListCandidates(ctx context.Context, userID string) ([]coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, listCandidateCouponsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing candidate coupons: %w", err)
	}
	return pgx.CollectRows(rows, scanCoupon)
}

// UsageCounts returns the user's redemption count per coupon id.
func (r *CouponRepository) UsageCounts(ctx context.Context, userID string, couponIDs []string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, usageCountsSQL, userID, couponIDs)
	if err != nil {
		return nil, fmt.Errorf("counting coupon usages: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int, len(couponIDs))
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scanning usage count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// Create persists a new coupon with its product scope.
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	var percentOff, flatOff *decimal.Decimal
	v := c.Discount.Value()
	switch c.Discount.Kind() {
	case coupon.KindPercentage:
		percentOff = &v
	case coupon.KindFlat:
		flatOff = &v
	default:
		return coupon.ErrDiscountShape
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create coupon: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx, createCouponSQL,
		c.ID, c.Code, percentOff, flatOff,
		c.MaxDiscount, c.MinOrder, c.TargetUser, c.MaxPerUser, c.ValidTill,
		c.Invalidated, c.Exclusive,
	)
	if err != nil {
		return fmt.Errorf("creating coupon %q: %w", c.Code, err)
	}
	for _, pid := range c.Scope.ProductIDs() {
		if _, err := tx.Exec(ctx, addCouponProductSQL, c.ID, pid); err != nil {
			return fmt.Errorf("scoping coupon %q to product %q: %w", c.Code, pid, err)
		}
	}
	return tx.Commit(ctx)
}

// Invalidate permanently retires the coupon. Historical usages stay intact.
func (r *CouponRepository) Invalidate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, invalidateCouponSQL, id)
	if err != nil {
		return fmt.Errorf("invalidating coupon %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrNotFound
	}
	return nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var (
		c                coupon.Coupon
		percentOff       *decimal.Decimal
		flatOff          *decimal.Decimal
		scopedProductIDs []string
	)
	err := row.Scan(
		&c.ID, &c.Code, &percentOff, &flatOff, &c.MaxDiscount,
		&c.MinOrder, &c.TargetUser, &c.MaxPerUser, &c.ValidTill,
		&c.Invalidated, &c.Exclusive,
		&scopedProductIDs,
	)
	if err != nil {
		return coupon.Coupon{}, err
	}

	c.Discount, err = coupon.DiscountFromColumns(percentOff, flatOff)
	if err != nil {
		return coupon.Coupon{}, fmt.Errorf("coupon %q: %w", c.Code, err)
	}
	c.Scope = coupon.Products(scopedProductIDs...)
	return c, nil
}
