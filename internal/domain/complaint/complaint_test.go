package complaint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memComplaintRepo struct {
	complaints map[string]*Complaint
}

func newMemComplaintRepo() *memComplaintRepo {
	return &memComplaintRepo{complaints: make(map[string]*Complaint)}
}

func (m *memComplaintRepo) Create(_ context.Context, c *Complaint) error {
	cp := *c
	m.complaints[c.ID] = &cp
	return nil
}

func (m *memComplaintRepo) GetByID(_ context.Context, id string) (*Complaint, error) {
	c, ok := m.complaints[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memComplaintRepo) ListByUser(_ context.Context, userID string) ([]Complaint, error) {
	var out []Complaint
	for _, c := range m.complaints {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memComplaintRepo) ListOpen(_ context.Context) ([]Complaint, error) {
	var out []Complaint
	for _, c := range m.complaints {
		if !c.Resolved {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memComplaintRepo) SetResolved(_ context.Context, id, response string) error {
	c, ok := m.complaints[id]
	if !ok || c.Resolved {
		return ErrAlreadyResolved
	}
	c.Resolved = true
	c.Response = response
	return nil
}

func TestFileComplaint(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemComplaintRepo())

	t.Run("without order reference", func(t *testing.T) {
		c, err := svc.File(ctx, "u1", nil, "late delivery")
		require.NoError(t, err)
		assert.NotEmpty(t, c.ID)
		assert.Nil(t, c.OrderID)
		assert.False(t, c.Resolved)
	})

	t.Run("with order reference", func(t *testing.T) {
		orderID := "o1"
		c, err := svc.File(ctx, "u1", &orderID, "wrong items")
		require.NoError(t, err)
		require.NotNil(t, c.OrderID)
		assert.Equal(t, "o1", *c.OrderID)
	})

	t.Run("empty body rejected", func(t *testing.T) {
		_, err := svc.File(ctx, "u1", nil, "")
		require.ErrorIs(t, err, ErrBodyRequired)
	})
}

func TestResolveComplaint(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemComplaintRepo())

	c, err := svc.File(ctx, "u1", nil, "spoiled produce")
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, c.ID, "refund issued")
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)
	assert.Equal(t, "refund issued", resolved.Response)

	// Resolution is one-way; a second attempt is a state error.
	_, err = svc.Resolve(ctx, c.ID, "again")
	require.ErrorIs(t, err, ErrAlreadyResolved)

	open, err := svc.ListOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}
