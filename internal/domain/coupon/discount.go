package coupon

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ErrDiscountShape is returned when a discount is constructed with an
// invalid value, or decoded from storage with both or neither of the
// percentage/flat values set.
var ErrDiscountShape = errors.New("discount must be exactly one of percentage or flat")

// Kind discriminates the two discount shapes.
type Kind uint8

const (
	// KindPercentage takes a percentage off the eligible base.
	KindPercentage Kind = iota + 1
	// KindFlat takes a fixed amount off the eligible base.
	KindFlat
)

// Discount is a tagged variant: exactly one of percentage or flat, decided
// at construction. The zero Discount is invalid and rejected by Apply.
type Discount struct {
	kind  Kind
	value decimal.Decimal
}

// NewPercentage builds a percentage discount. Value must be in (0, 100].
func NewPercentage(value decimal.Decimal) (Discount, error) {
	if !value.IsPositive() || value.GreaterThan(hundred) {
		return Discount{}, errors.Wrapf(ErrDiscountShape, "percentage %s out of range", value)
	}
	return Discount{kind: KindPercentage, value: value}, nil
}

// NewFlat builds a flat discount. Value must be positive.
func NewFlat(value decimal.Decimal) (Discount, error) {
	if !value.IsPositive() {
		return Discount{}, errors.Wrapf(ErrDiscountShape, "flat value %s out of range", value)
	}
	return Discount{kind: KindFlat, value: value}, nil
}

// DiscountFromColumns decodes the storage representation: two nullable
// columns of which exactly one must be set.
func DiscountFromColumns(percentOff, flatOff *decimal.Decimal) (Discount, error) {
	switch {
	case percentOff != nil && flatOff != nil:
		return Discount{}, ErrDiscountShape
	case percentOff != nil:
		return NewPercentage(*percentOff)
	case flatOff != nil:
		return NewFlat(*flatOff)
	default:
		return Discount{}, ErrDiscountShape
	}
}

// Kind returns the discount shape.
func (d Discount) Kind() Kind { return d.kind }

// Value returns the percentage or flat value depending on Kind.
func (d Discount) Value() decimal.Decimal { return d.value }

// IsZero reports whether the discount was never constructed.
func (d Discount) IsZero() bool { return d.kind == 0 }

// EligibleBase returns the portion of the item snapshot the coupon's
// discount acts on: the in-scope line amounts for a product-scoped coupon,
// the full subtotal otherwise.
func EligibleBase(c *Coupon, items []Item) decimal.Decimal {
	base := decimal.Zero
	for _, it := range items {
		if c.Scope.Covers(it.ProductID) {
			base = base.Add(it.Amount())
		}
	}
	return base
}

// Compute returns the discount amount for the coupon against the item
// snapshot, rounded to 2 decimal places.
//
// Percentage: min(base * p / 100, cap) with cap defaulting to unbounded.
// Flat: min(flat, cap) with cap defaulting to the base itself, so a flat
// discount can never push the eligible base negative.
func Compute(c *Coupon, items []Item) (decimal.Decimal, error) {
	base := EligibleBase(c, items)

	var amount decimal.Decimal
	switch c.Discount.kind {
	case KindPercentage:
		amount = base.Mul(c.Discount.value).Div(hundred)
		if c.MaxDiscount != nil {
			amount = decimal.Min(amount, *c.MaxDiscount)
		}
	case KindFlat:
		limit := base
		if c.MaxDiscount != nil {
			limit = *c.MaxDiscount
		}
		amount = decimal.Min(c.Discount.value, limit)
	default:
		return decimal.Zero, ErrDiscountShape
	}

	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount.Round(2), nil
}

// FinalAmount subtracts the discount from the order subtotal, floored at
// zero so a discount never produces a negative total.
func FinalAmount(subtotal, discount decimal.Decimal) decimal.Decimal {
	final := subtotal.Sub(discount)
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}
