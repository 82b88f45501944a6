// Package slot holds the delivery slot registry. A slot is a scheduled
// delivery window with a freeze (order cutoff) time; once the freeze time
// passes no new orders may reference the slot.
package slot

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested slot does not exist.
	ErrNotFound = errors.New("slot not found")
	// ErrInvalidWindow is returned when a slot's freeze time does not
	// strictly precede its delivery time.
	ErrInvalidWindow = errors.New("freeze time must precede delivery time")
)

// FrozenError indicates an order was attempted against a slot past its
// freeze time (or an inactive slot).
type FrozenError struct {
	SlotID string
}

func (e *FrozenError) Error() string {
	return fmt.Sprintf("slot %s is no longer accepting orders", e.SlotID)
}

// Slot is a delivery window. Once orders reference a slot only the Active
// flag may change.
type Slot struct {
	ID         string
	DeliveryAt time.Time
	FreezeAt   time.Time
	Active     bool
}

// New validates the time window and returns a Slot.
func New(id string, deliveryAt, freezeAt time.Time, active bool) (*Slot, error) {
	if !freezeAt.Before(deliveryAt) {
		return nil, ErrInvalidWindow
	}
	return &Slot{ID: id, DeliveryAt: deliveryAt, FreezeAt: freezeAt, Active: active}, nil
}

// IsOrderable reports whether the slot still accepts orders at the given
// instant. Callers must pass a freshly read clock value at commit time, not
// one captured during an earlier quote.
func (s *Slot) IsOrderable(now time.Time) bool {
	return s.Active && now.Before(s.FreezeAt)
}

// Repository defines slot registry operations.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Slot, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]Slot, error)
	// ProductsOffered returns the ids of products sellable in the slot.
	ProductsOffered(ctx context.Context, slotID string) ([]string, error)
	Create(ctx context.Context, s *Slot, productIDs []string) error
	SetActive(ctx context.Context, id string, active bool) error
}
