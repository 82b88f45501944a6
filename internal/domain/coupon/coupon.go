// Package coupon implements coupon eligibility filtering and discount
// calculation for checkout.
package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested coupon does not exist.
	ErrNotFound = errors.New("coupon not found")
	// ErrNotEligible is returned when a selected coupon is not in the
	// user's eligible set for the order being priced.
	ErrNotEligible = errors.New("coupon not eligible for this order")
)

// Coupon is an admin-created discount voucher. Once Invalidated is set the
// coupon must never again be offered as eligible; historical usages remain
// queryable.
type Coupon struct {
	ID       string
	Code     string
	Discount Discount
	// Scope limits the order items the discount acts on.
	Scope Scope
	// MaxDiscount, when set, caps the computed discount amount.
	MaxDiscount *decimal.Decimal
	// MinOrder, when set, requires the eligible base to reach this amount.
	MinOrder *decimal.Decimal
	// TargetUser restricts the coupon to one user; nil means apply-for-all.
	TargetUser *string
	// MaxPerUser, when set, caps how many times one user may redeem it.
	MaxPerUser *int
	// ValidTill, when set, is the redemption deadline.
	ValidTill   *time.Time
	Invalidated bool
	// Exclusive coupons cannot combine with other promotions. Structurally
	// enforced: an order carries at most one coupon.
	Exclusive bool
}

// Item is a frozen order line used for eligibility and discount math. It
// must come from the same snapshot the order is built from.
type Item struct {
	ProductID string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Amount returns the line total.
func (it Item) Amount() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Usage records one redemption of a coupon by a user on an order.
type Usage struct {
	CouponID string
	UserID   string
	OrderID  string
	UsedAt   time.Time
}

// Repository defines coupon persistence.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Coupon, error)
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	// ListCandidates returns non-invalidated coupons visible to the user
	// (apply-for-all plus the user's targeted ones). The eligibility filter
	// re-checks every rule on top.
	ListCandidates(ctx context.Context, userID string) ([]Coupon, error)
	// UsageCounts returns the user's historical redemption count per coupon
	// id. Coupons with no usages may be absent from the map.
	UsageCounts(ctx context.Context, userID string, couponIDs []string) (map[string]int, error)
	Create(ctx context.Context, c *Coupon) error
	Invalidate(ctx context.Context, id string) error
}
