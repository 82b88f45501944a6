package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/slot"
)

const (
	getSlotByIDSQL = `SELECT id, delivery_at, freeze_at, active
		FROM delivery_slots WHERE id = $1`

	listUpcomingSlotsSQL = `SELECT id, delivery_at, freeze_at, active
		FROM delivery_slots WHERE active AND freeze_at > $1 ORDER BY delivery_at`

	slotProductsSQL = `SELECT product_id FROM slot_products WHERE slot_id = $1`

	createSlotSQL = `INSERT INTO delivery_slots (id, delivery_at, freeze_at, active)
		VALUES ($1, $2, $3, $4)`

	addSlotProductSQL = `INSERT INTO slot_products (slot_id, product_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`

	setSlotActiveSQL = `UPDATE delivery_slots SET active = $2 WHERE id = $1`
)

var _ slot.Repository = (*SlotRepository)(nil)

// SlotRepository implements slot.Repository backed by PostgreSQL.
type SlotRepository struct {
	pool *pgxpool.Pool
}

// NewSlotRepository returns a SlotRepository that uses the given pool.
func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{pool: pool}
}

// GetByID returns a single slot by its identifier.
func (r *SlotRepository) GetByID(ctx context.Context, id string) (*slot.Slot, error) {
	rows, err := r.pool.Query(ctx, getSlotByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting slot %q: %w", id, err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanSlot)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, slot.ErrNotFound
		}
		return nil, fmt.Errorf("getting slot %q: %w", id, err)
	}
	return &s, nil
}

// ListUpcoming returns active slots whose freeze time is still ahead of now.
func (r *SlotRepository) ListUpcoming(ctx context.Context, now time.Time) ([]slot.Slot, error) {
	rows, err := r.pool.Query(ctx, listUpcomingSlotsSQL, now)
	if err != nil {
		return nil, fmt.Errorf("listing upcoming slots: %w", err)
	}
	return pgx.CollectRows(rows, scanSlot)
}

// ProductsOffered returns the product ids sellable in the slot.
func (r *SlotRepository) ProductsOffered(ctx context.Context, slotID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, slotProductsSQL, slotID)
	if err != nil {
		return nil, fmt.Errorf("listing slot products: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (string, error) {
		var id string
		err := row.Scan(&id)
		return id, err
	})
}

// Create persists a new slot with its offered product set.
func (r *SlotRepository) Create(ctx context.Context, s *slot.Slot, productIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create slot: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, createSlotSQL, s.ID, s.DeliveryAt, s.FreezeAt, s.Active); err != nil {
		return fmt.Errorf("creating slot %q: %w", s.ID, err)
	}
	for _, pid := range productIDs {
		if _, err := tx.Exec(ctx, addSlotProductSQL, s.ID, pid); err != nil {
			return fmt.Errorf("adding product %q to slot %q: %w", pid, s.ID, err)
		}
	}
	return tx.Commit(ctx)
}

// SetActive toggles the active flag, the only mutable slot field once
// orders reference it.
func (r *SlotRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx, setSlotActiveSQL, id, active)
	if err != nil {
		return fmt.Errorf("toggling slot %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return slot.ErrNotFound
	}
	return nil
}

func scanSlot(row pgx.CollectableRow) (slot.Slot, error) {
	var s slot.Slot
	err := row.Scan(&s.ID, &s.DeliveryAt, &s.FreezeAt, &s.Active)
	return s, err
}
