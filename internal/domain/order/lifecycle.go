package order

import (
	"context"

	"github.com/go-faster/errors"
)

// Lifecycle governs all post-creation order transitions. It checks the
// state machine guards on a fresh read and then applies the transition via
// the repository's conditional updates, so a concurrent transition on the
// same order loses cleanly instead of corrupting state.
type Lifecycle struct {
	orders Repository
}

// NewLifecycle creates a Lifecycle backed by the given repository.
func NewLifecycle(orders Repository) *Lifecycle {
	return &Lifecycle{orders: orders}
}

// Cancel cancels the user's own pending order with a mandatory reason.
func (l *Lifecycle) Cancel(ctx context.Context, orderID, userID, reason string) (*Order, error) {
	o, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotOwner
	}
	if err := o.Cancel(reason); err != nil {
		return nil, err
	}
	if err := l.orders.SetCancelled(ctx, orderID, reason); err != nil {
		return nil, errors.Wrap(err, "cancel order")
	}
	return l.orders.GetByID(ctx, orderID)
}

// MarkPackaged flags a pending order as packaged.
func (l *Lifecycle) MarkPackaged(ctx context.Context, orderID string) (*Order, error) {
	o, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.MarkPackaged(); err != nil {
		return nil, err
	}
	if err := l.orders.SetPackaged(ctx, orderID); err != nil {
		return nil, errors.Wrap(err, "mark packaged")
	}
	return l.orders.GetByID(ctx, orderID)
}

// MarkDelivered completes a pending order.
func (l *Lifecycle) MarkDelivered(ctx context.Context, orderID string) (*Order, error) {
	o, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.MarkDelivered(); err != nil {
		return nil, err
	}
	if err := l.orders.SetDelivered(ctx, orderID); err != nil {
		return nil, errors.Wrap(err, "mark delivered")
	}
	return l.orders.GetByID(ctx, orderID)
}

// MarkRefunded records the refund for a cancelled order. Idempotent: a
// second call returns the order unchanged.
func (l *Lifecycle) MarkRefunded(ctx context.Context, orderID string) (*Order, error) {
	o, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.RefundDone {
		return o, nil
	}
	if err := o.MarkRefunded(); err != nil {
		return nil, err
	}
	if err := l.orders.SetRefunded(ctx, orderID); err != nil {
		return nil, errors.Wrap(err, "mark refunded")
	}
	return l.orders.GetByID(ctx, orderID)
}

// Get returns an order, restricted to its owner unless admin is set.
func (l *Lifecycle) Get(ctx context.Context, orderID, userID string, admin bool) (*Order, error) {
	o, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !admin && o.UserID != userID {
		return nil, ErrNotOwner
	}
	return o, nil
}

// ListByUser returns the user's orders, newest first.
func (l *Lifecycle) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return l.orders.ListByUser(ctx, userID)
}

// List returns all orders (admin view).
func (l *Lifecycle) List(ctx context.Context) ([]Order, error) {
	return l.orders.List(ctx)
}
