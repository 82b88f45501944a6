package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/complaint"
)

const (
	getComplaintByIDSQL = `SELECT id, user_id, order_id, body, resolved, response, created_at
		FROM complaints WHERE id = $1`

	listComplaintsByUserSQL = `SELECT id, user_id, order_id, body, resolved, response, created_at
		FROM complaints WHERE user_id = $1 ORDER BY created_at DESC`

	listOpenComplaintsSQL = `SELECT id, user_id, order_id, body, resolved, response, created_at
		FROM complaints WHERE NOT resolved ORDER BY created_at`

	createComplaintSQL = `INSERT INTO complaints (id, user_id, order_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	resolveComplaintSQL = `UPDATE complaints SET resolved = TRUE, response = $2
		WHERE id = $1 AND NOT resolved`

	complaintExistsSQL = `SELECT EXISTS (SELECT 1 FROM complaints WHERE id = $1)`
)

var _ complaint.Repository = (*ComplaintRepository)(nil)

// ComplaintRepository implements complaint.Repository backed by PostgreSQL.
type ComplaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository returns a ComplaintRepository that uses the given pool.
func NewComplaintRepository(pool *pgxpool.Pool) *ComplaintRepository {
	return &ComplaintRepository{pool: pool}
}

// GetByID returns a single complaint.
func (r *ComplaintRepository) GetByID(ctx context.Context, id string) (*complaint.Complaint, error) {
	rows, err := r.pool.Query(ctx, getComplaintByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting complaint %q: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanComplaint)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, complaint.ErrNotFound
		}
		return nil, fmt.Errorf("getting complaint %q: %w", id, err)
	}
	return &c, nil
}

// ListByUser returns the user's complaints, newest first.
func (r *ComplaintRepository) ListByUser(ctx context.Context, userID string) ([]complaint.Complaint, error) {
	rows, err := r.pool.Query(ctx, listComplaintsByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing complaints for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanComplaint)
}

// ListOpen returns unresolved complaints, oldest first.
func (r *ComplaintRepository) ListOpen(ctx context.Context) ([]complaint.Complaint, error) {
	rows, err := r.pool.Query(ctx, listOpenComplaintsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing open complaints: %w", err)
	}
	return pgx.CollectRows(rows, scanComplaint)
}

// Create persists a new complaint.
func (r *ComplaintRepository) Create(ctx context.Context, c *complaint.Complaint) error {
	_, err := r.pool.Exec(ctx, createComplaintSQL,
		c.ID, c.UserID, c.OrderID, c.Body, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating complaint: %w", err)
	}
	return nil
}

// SetResolved closes the complaint with a response. Resolution is one way:
// a resolved complaint cannot be reopened or re-resolved.
func (r *ComplaintRepository) SetResolved(ctx context.Context, id, response string) error {
	tag, err := r.pool.Exec(ctx, resolveComplaintSQL, id, response)
	if err != nil {
		return fmt.Errorf("resolving complaint %q: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, complaintExistsSQL, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking complaint %q: %w", id, err)
	}
	if !exists {
		return complaint.ErrNotFound
	}
	return complaint.ErrAlreadyResolved
}

func scanComplaint(row pgx.CollectableRow) (complaint.Complaint, error) {
	var c complaint.Complaint
	err := row.Scan(&c.ID, &c.UserID, &c.OrderID, &c.Body, &c.Resolved, &c.Response, &c.CreatedAt)
	return c, err
}
