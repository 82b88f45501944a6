package coupon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEligible(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	userA := "user-a"
	limit1 := 1

	items := []Item{
		{ProductID: "p1", UnitPrice: dec(250), Quantity: 2}, // 500
	}

	tests := []struct {
		name  string
		c     Coupon
		used  int
		items []Item
		want  bool
	}{
		{
			name: "open coupon eligible",
			c:    Coupon{ID: "c1", Discount: mustPercentage(t, 10)},
			want: true,
		},
		{
			name: "invalidated never eligible",
			c:    Coupon{ID: "c1", Discount: mustPercentage(t, 10), Invalidated: true},
			want: false,
		},
		{
			name: "expired deadline",
			c:    Coupon{ID: "c1", Discount: mustPercentage(t, 10), ValidTill: &past},
			want: false,
		},
		{
			name: "future deadline still valid",
			c:    Coupon{ID: "c1", Discount: mustPercentage(t, 10), ValidTill: &future},
			want: true,
		},
		{
			name: "targeted at another user",
			c:    Coupon{ID: "c1", Discount: mustPercentage(t, 10), TargetUser: strPtr("user-b")},
			want: false,
		},
		{
			name: "targeted at acting user",
			c:    Coupon{ID: "c1", Discount: mustPercentage(t, 10), TargetUser: &userA},
			want: true,
		},
		{
			name: "usage limit exhausted",
			c:    Coupon{ID: "c1", Discount: mustPercentage(t, 10), MaxPerUser: &limit1},
			used: 1,
			want: false,
		},
		{
			name: "usage below limit",
			c:    Coupon{ID: "c1", Discount: mustPercentage(t, 10), MaxPerUser: &limit1},
			used: 0,
			want: true,
		},
		{
			name:  "min order not reached",
			c:     Coupon{ID: "c1", Discount: mustPercentage(t, 10), MinOrder: decPtr(500)},
			items: []Item{{ProductID: "p1", UnitPrice: dec(499), Quantity: 1}},
			want:  false,
		},
		{
			name:  "min order reached exactly",
			c:     Coupon{ID: "c1", Discount: mustPercentage(t, 10), MinOrder: decPtr(500)},
			items: []Item{{ProductID: "p1", UnitPrice: dec(500), Quantity: 1}},
			want:  true,
		},
		{
			name: "min order measured against scoped base only",
			c: Coupon{
				ID:       "c1",
				Discount: mustPercentage(t, 10),
				Scope:    Products("p2"),
				MinOrder: decPtr(300),
			},
			items: []Item{
				{ProductID: "p1", UnitPrice: dec(400), Quantity: 1},
				{ProductID: "p2", UnitPrice: dec(200), Quantity: 1},
			},
			want: false, // scoped base is 200, not 600
		},
		{
			name: "scope misses every order product",
			c:    Coupon{ID: "c1", Discount: mustPercentage(t, 10), Scope: Products("p9")},
			want: false,
		},
		{
			name: "scope intersects order",
			c:    Coupon{ID: "c1", Discount: mustPercentage(t, 10), Scope: Products("p1", "p9")},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			its := tt.items
			if its == nil {
				its = items
			}
			got := IsEligible(&tt.c, userA, its, tt.used, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEligiblePreservesOrderAndFilters(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	limit1 := 1

	candidates := []Coupon{
		{ID: "a", Discount: mustPercentage(t, 5)},
		{ID: "b", Discount: mustPercentage(t, 10), MaxPerUser: &limit1},
		{ID: "c", Discount: mustFlat(t, 20)},
	}
	usage := map[string]int{"b": 1}
	items := []Item{{ProductID: "p1", UnitPrice: dec(100), Quantity: 1}}

	got := Eligible(candidates, usage, "user-a", items, now)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func strPtr(s string) *string { return &s }
