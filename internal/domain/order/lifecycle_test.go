package order

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memOrderRepo mimics the conditional-update semantics of the postgres
// repository: transitions only apply when the stored row still satisfies
// the guard.
type memOrderRepo struct {
	orders map[string]*Order
}

func newMemOrderRepo(orders ...*Order) *memOrderRepo {
	m := &memOrderRepo{orders: make(map[string]*Order)}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *memOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderRepo) ListByUser(_ context.Context, userID string) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOrderRepo) List(_ context.Context) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *memOrderRepo) SetCancelled(_ context.Context, id, reason string) error {
	o, ok := m.orders[id]
	if !ok || o.Status != StatusPending {
		return ErrNotPending
	}
	o.Status = StatusCancelled
	o.CancelReason = reason
	return nil
}

func (m *memOrderRepo) SetPackaged(_ context.Context, id string) error {
	o, ok := m.orders[id]
	if !ok || o.Status != StatusPending {
		return ErrNotPending
	}
	o.IsPackaged = true
	return nil
}

func (m *memOrderRepo) SetDelivered(_ context.Context, id string) error {
	o, ok := m.orders[id]
	if !ok || o.Status != StatusPending {
		return ErrNotPending
	}
	o.Status = StatusDelivered
	o.IsDelivered = true
	return nil
}

func (m *memOrderRepo) SetRefunded(_ context.Context, id string) error {
	o, ok := m.orders[id]
	if !ok || o.Status != StatusCancelled {
		return ErrNotCancelled
	}
	o.RefundDone = true
	return nil
}

func pendingOrder(id, userID string) *Order {
	return &Order{
		ID:          id,
		UserID:      userID,
		Status:      StatusPending,
		Subtotal:    decimal.NewFromInt(500),
		FinalAmount: decimal.NewFromInt(500),
		PaymentMode: PaymentCOD,
	}
}

func TestLifecycleCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel pending order", func(t *testing.T) {
		lc := NewLifecycle(newMemOrderRepo(pendingOrder("o1", "u1")))
		got, err := lc.Cancel(ctx, "o1", "u1", "ordered by mistake")
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, got.Status)
		assert.Equal(t, "ordered by mistake", got.CancelReason)
		assert.False(t, got.RefundDone)
	})

	t.Run("second cancel fails with state error", func(t *testing.T) {
		lc := NewLifecycle(newMemOrderRepo(pendingOrder("o1", "u1")))
		_, err := lc.Cancel(ctx, "o1", "u1", "first")
		require.NoError(t, err)
		_, err = lc.Cancel(ctx, "o1", "u1", "second")
		require.ErrorIs(t, err, ErrNotPending)
	})

	t.Run("empty reason rejected", func(t *testing.T) {
		lc := NewLifecycle(newMemOrderRepo(pendingOrder("o1", "u1")))
		_, err := lc.Cancel(ctx, "o1", "u1", "")
		require.ErrorIs(t, err, ErrReasonRequired)
	})

	t.Run("other user cannot cancel", func(t *testing.T) {
		lc := NewLifecycle(newMemOrderRepo(pendingOrder("o1", "u1")))
		_, err := lc.Cancel(ctx, "o1", "u2", "not mine")
		require.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("cancel delivered order fails", func(t *testing.T) {
		o := pendingOrder("o1", "u1")
		o.Status = StatusDelivered
		lc := NewLifecycle(newMemOrderRepo(o))
		_, err := lc.Cancel(ctx, "o1", "u1", "too late")
		require.ErrorIs(t, err, ErrNotPending)
	})
}

func TestLifecycleRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("refund only after cancellation", func(t *testing.T) {
		lc := NewLifecycle(newMemOrderRepo(pendingOrder("o1", "u1")))
		_, err := lc.MarkRefunded(ctx, "o1")
		require.ErrorIs(t, err, ErrNotCancelled)
	})

	t.Run("refund twice is idempotent", func(t *testing.T) {
		lc := NewLifecycle(newMemOrderRepo(pendingOrder("o1", "u1")))
		_, err := lc.Cancel(ctx, "o1", "u1", "changed my mind")
		require.NoError(t, err)

		first, err := lc.MarkRefunded(ctx, "o1")
		require.NoError(t, err)
		assert.True(t, first.RefundDone)

		second, err := lc.MarkRefunded(ctx, "o1")
		require.NoError(t, err)
		assert.True(t, second.RefundDone)
	})
}

func TestLifecycleDelivery(t *testing.T) {
	ctx := context.Background()

	t.Run("packaged then delivered", func(t *testing.T) {
		lc := NewLifecycle(newMemOrderRepo(pendingOrder("o1", "u1")))
		got, err := lc.MarkPackaged(ctx, "o1")
		require.NoError(t, err)
		assert.True(t, got.IsPackaged)
		assert.Equal(t, StatusPending, got.Status)

		got, err = lc.MarkDelivered(ctx, "o1")
		require.NoError(t, err)
		assert.True(t, got.IsDelivered)
		assert.Equal(t, StatusDelivered, got.Status)
	})

	t.Run("delivery does not require packaging", func(t *testing.T) {
		lc := NewLifecycle(newMemOrderRepo(pendingOrder("o1", "u1")))
		got, err := lc.MarkDelivered(ctx, "o1")
		require.NoError(t, err)
		assert.False(t, got.IsPackaged)
		assert.Equal(t, StatusDelivered, got.Status)
	})

	t.Run("no transition leaves delivered", func(t *testing.T) {
		lc := NewLifecycle(newMemOrderRepo(pendingOrder("o1", "u1")))
		_, err := lc.MarkDelivered(ctx, "o1")
		require.NoError(t, err)

		_, err = lc.Cancel(ctx, "o1", "u1", "too late")
		require.ErrorIs(t, err, ErrNotPending)
		_, err = lc.MarkPackaged(ctx, "o1")
		require.ErrorIs(t, err, ErrNotPending)
	})

	t.Run("unknown order", func(t *testing.T) {
		lc := NewLifecycle(newMemOrderRepo())
		_, err := lc.MarkDelivered(ctx, "missing")
		require.ErrorIs(t, err, ErrNotFound)
	})
}
