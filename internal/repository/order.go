package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/coupon"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/order"
)

const (
	orderColumns = `id, readable_id, user_id, slot_id,
		addr_name, addr_line1, addr_line2, addr_city, addr_pincode, addr_phone,
		subtotal, coupon_id, discount, final_amount, payment_mode,
		status, is_packaged, is_delivered, cancel_reason, refund_done, created_at`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT ` + orderColumns + `
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	orderItemsSQL = `SELECT product_id, product_name, unit_price, quantity, amount
		FROM order_items WHERE order_id = $1`

	// Transitions guard on the current status inside the UPDATE itself so
	// two concurrent actors cannot both apply the same transition.
	cancelOrderSQL = `UPDATE orders SET status = 'cancelled', cancel_reason = $2
		WHERE id = $1 AND status = 'pending'`

	packageOrderSQL = `UPDATE orders SET is_packaged = TRUE
		WHERE id = $1 AND status = 'pending'`

	deliverOrderSQL = `UPDATE orders SET status = 'delivered', is_delivered = TRUE
		WHERE id = $1 AND status = 'pending'`

	refundOrderSQL = `UPDATE orders SET refund_done = TRUE
		WHERE id = $1 AND status = 'cancelled'`

	orderExistsSQL = `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`

	insertOrderSQL = `INSERT INTO orders (id, user_id, slot_id,
		addr_name, addr_line1, addr_line2, addr_city, addr_pincode, addr_phone,
		subtotal, coupon_id, discount, final_amount, payment_mode, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING readable_id, created_at`

	insertOrderItemSQL = `INSERT INTO order_items
		(order_id, product_id, product_name, unit_price, quantity, amount)
		VALUES ($1, $2, $3, $4, $5, $6)`

	insertCouponUsageSQL = `INSERT INTO coupon_usages (coupon_id, user_id, order_id, used_at)
		VALUES ($1, $2, $3, $4)`

	deleteConsumedCartItemsSQL = `DELETE FROM cart_items WHERE id = ANY($1)`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. It also
// serves as the checkout writer: order creation commits the order row, its
// item snapshots, the coupon usage and the cart cleanup in one transaction.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// GetByID returns the order with its item snapshots.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	itemRows, err := r.pool.Query(ctx, orderItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order items: %w", err)
	}
	o.Items, err = pgx.CollectRows(itemRows, scanOrderItem)
	if err != nil {
		return nil, fmt.Errorf("getting order items: %w", err)
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first, without item rows.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// List returns every order, newest first, without item rows.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// SetCancelled applies pending -> cancelled.
func (r *OrderRepository) SetCancelled(ctx context.Context, id, reason string) error {
	return r.transition(ctx, cancelOrderSQL, order.ErrNotPending, id, reason)
}

// SetPackaged flags a pending order as packaged.
func (r *OrderRepository) SetPackaged(ctx context.Context, id string) error {
	return r.transition(ctx, packageOrderSQL, order.ErrNotPending, id)
}

// SetDelivered applies pending -> delivered.
func (r *OrderRepository) SetDelivered(ctx context.Context, id string) error {
	return r.transition(ctx, deliverOrderSQL, order.ErrNotPending, id)
}

// SetRefunded records the refund on a cancelled order. Re-running it keeps
// refund_done true and reports success.
func (r *OrderRepository) SetRefunded(ctx context.Context, id string) error {
	return r.transition(ctx, refundOrderSQL, order.ErrNotCancelled, id)
}

// transition runs a guarded UPDATE. Zero rows means either the order does
// not exist or its status failed the guard; the two are told apart with an
// existence probe so callers get a precise error.
func (r *OrderRepository) transition(ctx context.Context, sql string, guardErr error, id string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("updating order %q: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, orderExistsSQL, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking order %q: %w", id, err)
	}
	if !exists {
		return order.ErrNotFound
	}
	return guardErr
}

// CreateOrder persists an assembled order atomically. The database assigns
// the readable id and creation timestamp, which are written back into o.
func (r *OrderRepository) CreateOrder(ctx context.Context, o *order.Order, usage *coupon.Usage, consumedCartItemIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create order: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	err = tx.QueryRow(ctx, insertOrderSQL,
		o.ID, o.UserID, o.SlotID,
		o.Address.Name, o.Address.Line1, o.Address.Line2,
		o.Address.City, o.Address.Pincode, o.Address.Phone,
		o.Subtotal, o.CouponID, o.Discount, o.FinalAmount,
		string(o.PaymentMode), string(o.Status),
	).Scan(&o.ReadableID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	for _, it := range o.Items {
		_, err := tx.Exec(ctx, insertOrderItemSQL,
			o.ID, it.ProductID, it.ProductName, it.UnitPrice, it.Quantity, it.Amount,
		)
		if err != nil {
			return fmt.Errorf("inserting order item %q: %w", it.ProductID, err)
		}
	}

	if usage != nil {
		_, err := tx.Exec(ctx, insertCouponUsageSQL,
			usage.CouponID, usage.UserID, usage.OrderID, usage.UsedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting coupon usage: %w", err)
		}
	}

	if len(consumedCartItemIDs) > 0 {
		if _, err := tx.Exec(ctx, deleteConsumedCartItemsSQL, consumedCartItemIDs); err != nil {
			return fmt.Errorf("consuming cart items: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.ReadableID, &o.UserID, &o.SlotID,
		&o.Address.Name, &o.Address.Line1, &o.Address.Line2,
		&o.Address.City, &o.Address.Pincode, &o.Address.Phone,
		&o.Subtotal, &o.CouponID, &o.Discount, &o.FinalAmount, &o.PaymentMode,
		&o.Status, &o.IsPackaged, &o.IsDelivered, &o.CancelReason, &o.RefundDone,
		&o.CreatedAt,
	)
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var it order.Item
	err := row.Scan(&it.ProductID, &it.ProductName, &it.UnitPrice, &it.Quantity, &it.Amount)
	return it, err
}
