// Package order holds the order record and its lifecycle state machine.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state. Pending is the only non-terminal
// state; delivered and cancelled are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// PaymentMode selects how the order is paid. Online payment is recorded but
// not processed here.
type PaymentMode string

const (
	PaymentCOD    PaymentMode = "cod"
	PaymentOnline PaymentMode = "online"
)

// Valid reports whether the payment mode is one of the known values.
func (m PaymentMode) Valid() bool {
	return m == PaymentCOD || m == PaymentOnline
}

var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrNotOwner is returned when a user acts on another user's order.
	ErrNotOwner = errors.New("order belongs to another user")
	// ErrNotPending is returned for transitions only legal from pending.
	ErrNotPending = errors.New("order is not pending")
	// ErrNotCancelled is returned when a refund is recorded on an order
	// that was never cancelled.
	ErrNotCancelled = errors.New("order is not cancelled")
	// ErrReasonRequired is returned when a cancellation carries no reason.
	ErrReasonRequired = errors.New("cancellation reason is required")
)

// Address is a delivery address captured at order time. It is a snapshot,
// not a reference: later edits to the user's saved addresses must not alter
// order history.
type Address struct {
	Name    string
	Line1   string
	Line2   string
	City    string
	Pincode string
	Phone   string
}

// IsZero reports whether no usable address was supplied.
func (a Address) IsZero() bool {
	return a.Name == "" && a.Line1 == ""
}

// Item is one frozen order line. Name, price and amount are snapshots taken
// at checkout and are never re-derived from live product rows.
type Item struct {
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Amount      decimal.Decimal
}

// Order is an immutable priced record of a checkout. Lifecycle transitions
// mutate only the status fields, never the pricing snapshot.
type Order struct {
	ID         string
	ReadableID int64
	UserID     string
	SlotID     string
	Address    Address
	Items      []Item

	Subtotal    decimal.Decimal
	CouponID    *string
	Discount    decimal.Decimal
	FinalAmount decimal.Decimal
	PaymentMode PaymentMode

	Status       Status
	IsPackaged   bool
	IsDelivered  bool
	CancelReason string
	RefundDone   bool

	CreatedAt time.Time
}

// Cancel transitions pending -> cancelled. The reason is mandatory and a
// cancellation does not by itself imply a refund.
func (o *Order) Cancel(reason string) error {
	if reason == "" {
		return ErrReasonRequired
	}
	if o.Status != StatusPending {
		return ErrNotPending
	}
	o.Status = StatusCancelled
	o.CancelReason = reason
	return nil
}

// MarkPackaged records that the packaging crew has prepared the order.
// Legal only while pending.
func (o *Order) MarkPackaged() error {
	if o.Status != StatusPending {
		return ErrNotPending
	}
	o.IsPackaged = true
	return nil
}

// MarkDelivered transitions pending -> delivered. The packaging flag is
// deliberately not a precondition: packaging and delivery crews operate
// independently.
func (o *Order) MarkDelivered() error {
	if o.Status != StatusPending {
		return ErrNotPending
	}
	o.IsDelivered = true
	o.Status = StatusDelivered
	return nil
}

// MarkRefunded records the refund for a cancelled order. Calling it again
// once the refund is done is a no-op, not an error.
func (o *Order) MarkRefunded() error {
	if o.Status != StatusCancelled {
		return ErrNotCancelled
	}
	o.RefundDone = true
	return nil
}

// Repository defines order persistence. The transition methods apply their
// guard conditions inside the storage layer (conditional updates) so that
// concurrent actors cannot double-apply a transition.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	List(ctx context.Context) ([]Order, error)

	// SetCancelled succeeds only while the order is pending.
	SetCancelled(ctx context.Context, id, reason string) error
	// SetPackaged succeeds only while the order is pending.
	SetPackaged(ctx context.Context, id string) error
	// SetDelivered succeeds only while the order is pending.
	SetDelivered(ctx context.Context, id string) error
	// SetRefunded succeeds only while the order is cancelled; repeating it
	// leaves refund_done true.
	SetRefunded(ctx context.Context, id string) error
}
