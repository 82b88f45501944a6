package slot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	delivery := time.Date(2025, 6, 16, 7, 0, 0, 0, time.UTC)

	t.Run("freeze before delivery", func(t *testing.T) {
		s, err := New("s1", delivery, delivery.Add(-6*time.Hour), true)
		require.NoError(t, err)
		assert.Equal(t, "s1", s.ID)
	})

	t.Run("freeze at delivery rejected", func(t *testing.T) {
		_, err := New("s1", delivery, delivery, true)
		require.ErrorIs(t, err, ErrInvalidWindow)
	})

	t.Run("freeze after delivery rejected", func(t *testing.T) {
		_, err := New("s1", delivery, delivery.Add(time.Hour), true)
		require.ErrorIs(t, err, ErrInvalidWindow)
	})
}

func TestIsOrderable(t *testing.T) {
	freeze := time.Date(2025, 6, 16, 1, 0, 0, 0, time.UTC)
	s := Slot{ID: "s1", DeliveryAt: freeze.Add(6 * time.Hour), FreezeAt: freeze, Active: true}

	assert.True(t, s.IsOrderable(freeze.Add(-time.Minute)))
	assert.False(t, s.IsOrderable(freeze), "freeze instant itself is closed")
	assert.False(t, s.IsOrderable(freeze.Add(time.Minute)))

	inactive := s
	inactive.Active = false
	assert.False(t, inactive.IsOrderable(freeze.Add(-time.Hour)))
}
