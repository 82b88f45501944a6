package coupon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func mustPercentage(t *testing.T, v int64) Discount {
	t.Helper()
	d, err := NewPercentage(dec(v))
	require.NoError(t, err)
	return d
}

func mustFlat(t *testing.T, v int64) Discount {
	t.Helper()
	d, err := NewFlat(dec(v))
	require.NoError(t, err)
	return d
}

func TestDiscountConstruction(t *testing.T) {
	t.Run("valid percentage", func(t *testing.T) {
		d, err := NewPercentage(dec(20))
		require.NoError(t, err)
		assert.Equal(t, KindPercentage, d.Kind())
		assert.True(t, dec(20).Equal(d.Value()))
	})

	t.Run("percentage over 100 rejected", func(t *testing.T) {
		_, err := NewPercentage(dec(101))
		require.ErrorIs(t, err, ErrDiscountShape)
	})

	t.Run("zero percentage rejected", func(t *testing.T) {
		_, err := NewPercentage(decimal.Zero)
		require.ErrorIs(t, err, ErrDiscountShape)
	})

	t.Run("valid flat", func(t *testing.T) {
		d, err := NewFlat(dec(150))
		require.NoError(t, err)
		assert.Equal(t, KindFlat, d.Kind())
	})

	t.Run("negative flat rejected", func(t *testing.T) {
		_, err := NewFlat(dec(-5))
		require.ErrorIs(t, err, ErrDiscountShape)
	})
}

func TestDiscountFromColumns(t *testing.T) {
	tests := []struct {
		name     string
		percent  *decimal.Decimal
		flat     *decimal.Decimal
		wantKind Kind
		wantErr  bool
	}{
		{name: "percentage only", percent: decPtr(10), wantKind: KindPercentage},
		{name: "flat only", flat: decPtr(50), wantKind: KindFlat},
		{name: "both set rejected", percent: decPtr(10), flat: decPtr(50), wantErr: true},
		{name: "neither set rejected", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DiscountFromColumns(tt.percent, tt.flat)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrDiscountShape)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, d.Kind())
		})
	}
}

func TestCompute(t *testing.T) {
	items := []Item{
		{ProductID: "p1", UnitPrice: dec(1000), Quantity: 1},
	}

	t.Run("percentage capped at max discount", func(t *testing.T) {
		// 20% of 1000 = 200, cap 100 wins.
		c := &Coupon{Discount: mustPercentage(t, 20), MaxDiscount: decPtr(100)}
		got, err := Compute(c, items)
		require.NoError(t, err)
		assert.True(t, dec(100).Equal(got), "got %s", got)
		assert.True(t, dec(900).Equal(FinalAmount(dec(1000), got)))
	})

	t.Run("percentage without cap", func(t *testing.T) {
		c := &Coupon{Discount: mustPercentage(t, 20)}
		got, err := Compute(c, items)
		require.NoError(t, err)
		assert.True(t, dec(200).Equal(got), "got %s", got)
	})

	t.Run("flat never exceeds base without cap", func(t *testing.T) {
		// 150 off a 100 base clamps to 100, final lands on zero.
		c := &Coupon{Discount: mustFlat(t, 150)}
		small := []Item{{ProductID: "p1", UnitPrice: dec(100), Quantity: 1}}
		got, err := Compute(c, small)
		require.NoError(t, err)
		assert.True(t, dec(100).Equal(got), "got %s", got)
		assert.True(t, FinalAmount(dec(100), got).IsZero())
	})

	t.Run("flat with explicit cap", func(t *testing.T) {
		c := &Coupon{Discount: mustFlat(t, 150), MaxDiscount: decPtr(80)}
		got, err := Compute(c, items)
		require.NoError(t, err)
		assert.True(t, dec(80).Equal(got), "got %s", got)
	})

	t.Run("scoped coupon uses only in-scope lines", func(t *testing.T) {
		mixed := []Item{
			{ProductID: "p1", UnitPrice: dec(400), Quantity: 1},
			{ProductID: "p2", UnitPrice: dec(600), Quantity: 1},
		}
		c := &Coupon{Discount: mustPercentage(t, 50), Scope: Products("p2")}
		got, err := Compute(c, mixed)
		require.NoError(t, err)
		assert.True(t, dec(300).Equal(got), "got %s", got)
	})

	t.Run("zero discount rejected", func(t *testing.T) {
		c := &Coupon{}
		_, err := Compute(c, items)
		require.ErrorIs(t, err, ErrDiscountShape)
	})
}

func TestFinalAmountFloorsAtZero(t *testing.T) {
	assert.True(t, FinalAmount(dec(50), dec(80)).IsZero())
	assert.True(t, dec(20).Equal(FinalAmount(dec(100), dec(80))))
}
