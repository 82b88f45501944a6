// Package complaint handles post-order servicing requests. A complaint may
// reference an order but does not have to; resolution is a one-way admin
// action.
package complaint

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a requested complaint does not exist.
	ErrNotFound = errors.New("complaint not found")
	// ErrBodyRequired is returned when a complaint carries no text.
	ErrBodyRequired = errors.New("complaint body is required")
	// ErrAlreadyResolved is returned when resolving a resolved complaint.
	ErrAlreadyResolved = errors.New("complaint is already resolved")
)

// Complaint is a user-filed servicing request.
type Complaint struct {
	ID        string
	UserID    string
	OrderID   *string
	Body      string
	Resolved  bool
	Response  string
	CreatedAt time.Time
}

// Repository defines complaint persistence. SetResolved succeeds only while
// the complaint is unresolved.
type Repository interface {
	Create(ctx context.Context, c *Complaint) error
	GetByID(ctx context.Context, id string) (*Complaint, error)
	ListByUser(ctx context.Context, userID string) ([]Complaint, error)
	ListOpen(ctx context.Context) ([]Complaint, error)
	SetResolved(ctx context.Context, id, response string) error
}

// Service files and resolves complaints.
type Service struct {
	complaints Repository
	now        func() time.Time
}

// NewService creates a complaint Service.
func NewService(complaints Repository) *Service {
	return &Service{complaints: complaints, now: time.Now}
}

// File creates a pending complaint. Filing is always legal, even against
// delivered or cancelled orders.
func (s *Service) File(ctx context.Context, userID string, orderID *string, body string) (*Complaint, error) {
	if body == "" {
		return nil, ErrBodyRequired
	}
	c := &Complaint{
		ID:        uuid.New().String(),
		UserID:    userID,
		OrderID:   orderID,
		Body:      body,
		CreatedAt: s.now(),
	}
	if err := s.complaints.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "file complaint")
	}
	return c, nil
}

// Resolve marks a complaint resolved with an optional admin response.
// Irreversible: a resolved complaint can never return to pending.
func (s *Service) Resolve(ctx context.Context, complaintID, response string) (*Complaint, error) {
	c, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if c.Resolved {
		return nil, ErrAlreadyResolved
	}
	if err := s.complaints.SetResolved(ctx, complaintID, response); err != nil {
		return nil, errors.Wrap(err, "resolve complaint")
	}
	return s.complaints.GetByID(ctx, complaintID)
}

// ListByUser returns the user's complaints, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Complaint, error) {
	return s.complaints.ListByUser(ctx, userID)
}

// ListOpen returns all unresolved complaints (admin view).
func (s *Service) ListOpen(ctx context.Context) ([]Complaint, error) {
	return s.complaints.ListOpen(ctx)
}
