package coupon

import "time"

// IsEligible checks every eligibility rule for a single coupon against the
// acting user and the frozen order item snapshot. usedCount is the user's
// historical redemption count for this coupon.
func IsEligible(c *Coupon, userID string, items []Item, usedCount int, now time.Time) bool {
	if c.Invalidated {
		return false
	}
	if c.ValidTill != nil && !now.Before(*c.ValidTill) {
		return false
	}
	if c.TargetUser != nil && *c.TargetUser != userID {
		return false
	}
	if c.MaxPerUser != nil && usedCount >= *c.MaxPerUser {
		return false
	}
	if !c.Scope.IsEntireOrder() {
		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = it.ProductID
		}
		if !c.Scope.Intersects(ids) {
			return false
		}
	}
	// The minimum-order threshold compares against the amount the discount
	// would act on, so a product-scoped coupon looks only at its own items.
	if c.MinOrder != nil && EligibleBase(c, items).LessThan(*c.MinOrder) {
		return false
	}
	return true
}

// Eligible filters candidates down to the coupons the user may apply to the
// given item snapshot. usage maps coupon id to the user's historical
// redemption count; absent ids count as zero. Input order is preserved and
// no ranking is imposed; the caller picks exactly one.
func Eligible(candidates []Coupon, usage map[string]int, userID string, items []Item, now time.Time) []Coupon {
	out := make([]Coupon, 0, len(candidates))
	for _, c := range candidates {
		if IsEligible(&c, userID, items, usage[c.ID], now) {
			out = append(out, c)
		}
	}
	return out
}
