// Package checkout assembles a user's slot-bound cart selection, an
// optional coupon, and a delivery address into one priced, persisted order.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/cart"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/coupon"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/order"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/product"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/slot"
)

var (
	// ErrEmptySelection is returned when the bindings name no purchasable
	// items.
	ErrEmptySelection = errors.New("no items selected for checkout")
	// ErrAddressRequired is returned when no delivery address is supplied.
	ErrAddressRequired = errors.New("delivery address is required")
	// ErrInvalidPaymentMode is returned for unknown payment modes.
	ErrInvalidPaymentMode = errors.New("payment mode must be cod or online")
	// ErrMixedSlots is returned when one checkout call binds items to more
	// than one delivery slot. An order references exactly one slot; items
	// bound elsewhere stay in the cart for a later checkout.
	ErrMixedSlots = errors.New("all items in one order must share a delivery slot")
)

// ProductNotOfferedError indicates a cart item's product is not sold in the
// chosen slot. Callers validate this upstream; the core re-checks anyway.
type ProductNotOfferedError struct {
	ProductID string
	SlotID    string
}

func (e *ProductNotOfferedError) Error() string {
	return fmt.Sprintf("product %s is not offered in slot %s", e.ProductID, e.SlotID)
}

// Bindings maps cart item id to the delivery slot chosen for it. Cart items
// absent from the map are deliberately left out of the order.
type Bindings map[string]string

// Quote is the priced preview of a checkout.
type Quote struct {
	Subtotal        decimal.Decimal
	EligibleCoupons []coupon.Coupon
	Discount        decimal.Decimal
	FinalAmount     decimal.Decimal
}

// Writer persists a fully assembled order atomically: the order row, its
// item snapshots, the coupon usage (when present), and removal of the
// consumed cart items all commit together or not at all. The implementation
// assigns ReadableID and CreatedAt.
type Writer interface {
	CreateOrder(ctx context.Context, o *order.Order, usage *coupon.Usage, consumedCartItemIDs []string) error
}

// Service is the order assembler.
type Service struct {
	products product.Repository
	slots    slot.Repository
	carts    cart.Repository
	coupons  coupon.Repository
	writer   Writer
	now      func() time.Time
}

// NewService creates a checkout Service.
func NewService(
	products product.Repository,
	slots slot.Repository,
	carts cart.Repository,
	coupons coupon.Repository,
	writer Writer,
) *Service {
	return &Service{
		products: products,
		slots:    slots,
		carts:    carts,
		coupons:  coupons,
		writer:   writer,
		now:      time.Now,
	}
}

// selection is the frozen intermediate state of a checkout: the slot, the
// item snapshots, and the ids of the cart rows being consumed.
type selection struct {
	slot        *slot.Slot
	items       []order.Item
	couponItems []coupon.Item
	cartItemIDs []string
	subtotal    decimal.Decimal
}

// Quote prices the selection and lists the coupons the user may apply. When
// candidateCouponID is set, the quoted discount is for that coupon; a
// candidate outside the eligible set is rejected, never silently dropped.
func (s *Service) Quote(ctx context.Context, userID string, bindings Bindings, candidateCouponID *string) (*Quote, error) {
	sel, err := s.buildSelection(ctx, userID, bindings)
	if err != nil {
		return nil, err
	}
	if !sel.slot.IsOrderable(s.now()) {
		return nil, &slot.FrozenError{SlotID: sel.slot.ID}
	}

	eligible, err := s.eligibleCoupons(ctx, userID, sel.couponItems)
	if err != nil {
		return nil, err
	}

	discount := decimal.Zero
	if candidateCouponID != nil {
		chosen, err := s.pickEligible(ctx, eligible, *candidateCouponID)
		if err != nil {
			return nil, err
		}
		discount, err = coupon.Compute(chosen, sel.couponItems)
		if err != nil {
			return nil, err
		}
	}

	return &Quote{
		Subtotal:        sel.subtotal,
		EligibleCoupons: eligible,
		Discount:        discount,
		FinalAmount:     coupon.FinalAmount(sel.subtotal, discount),
	}, nil
}

// PlaceOrder assembles and persists one order. All validation runs against
// state read inside this call: the slot freeze check uses a fresh clock
// value and coupon eligibility is re-established from current usage counts,
// so a stale quote cannot smuggle an order past a cutoff or a usage limit.
func (s *Service) PlaceOrder(
	ctx context.Context,
	userID string,
	bindings Bindings,
	address order.Address,
	mode order.PaymentMode,
	couponID *string,
) (*order.Order, error) {
	if address.IsZero() {
		return nil, ErrAddressRequired
	}
	if !mode.Valid() {
		return nil, ErrInvalidPaymentMode
	}

	sel, err := s.buildSelection(ctx, userID, bindings)
	if err != nil {
		return nil, err
	}

	// Freeze boundary is checked at commit time, not quote time.
	now := s.now()
	if !sel.slot.IsOrderable(now) {
		return nil, &slot.FrozenError{SlotID: sel.slot.ID}
	}

	discount := decimal.Zero
	if couponID != nil {
		eligible, err := s.eligibleCoupons(ctx, userID, sel.couponItems)
		if err != nil {
			return nil, err
		}
		chosen, err := s.pickEligible(ctx, eligible, *couponID)
		if err != nil {
			return nil, err
		}
		discount, err = coupon.Compute(chosen, sel.couponItems)
		if err != nil {
			return nil, err
		}
	}

	o := &order.Order{
		ID:          newOrderID(),
		UserID:      userID,
		SlotID:      sel.slot.ID,
		Address:     address,
		Items:       sel.items,
		Subtotal:    sel.subtotal,
		CouponID:    couponID,
		Discount:    discount,
		FinalAmount: coupon.FinalAmount(sel.subtotal, discount),
		PaymentMode: mode,
		Status:      order.StatusPending,
	}

	var usage *coupon.Usage
	if couponID != nil {
		usage = &coupon.Usage{
			CouponID: *couponID,
			UserID:   userID,
			OrderID:  o.ID,
			UsedAt:   now,
		}
	}

	if err := s.writer.CreateOrder(ctx, o, usage, sel.cartItemIDs); err != nil {
		return nil, errors.Wrap(err, "persist order")
	}
	return o, nil
}

func newOrderID() string { return uuid.New().String() }

// buildSelection resolves bindings into frozen item snapshots. Out-of-stock
// products are dropped with zero contribution; a selection with nothing
// purchasable left is empty.
func (s *Service) buildSelection(ctx context.Context, userID string, bindings Bindings) (*selection, error) {
	if len(bindings) == 0 {
		return nil, ErrEmptySelection
	}

	slotID := ""
	itemIDs := make([]string, 0, len(bindings))
	for itemID, sID := range bindings {
		if slotID == "" {
			slotID = sID
		} else if slotID != sID {
			return nil, ErrMixedSlots
		}
		itemIDs = append(itemIDs, itemID)
	}

	sl, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}

	cartItems, err := s.carts.GetByIDs(ctx, userID, itemIDs)
	if err != nil {
		return nil, err
	}
	if len(cartItems) != len(itemIDs) {
		return nil, cart.ErrNotFound
	}

	productIDs := make([]string, len(cartItems))
	for i, it := range cartItems {
		if it.Quantity <= 0 {
			return nil, cart.ErrInvalidQuantity
		}
		productIDs[i] = it.ProductID
	}
	fetched, err := s.products.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	productMap := product.MapByID(fetched)

	offered, err := s.slots.ProductsOffered(ctx, slotID)
	if err != nil {
		return nil, errors.Wrap(err, "products offered")
	}
	offeredSet := make(map[string]struct{}, len(offered))
	for _, id := range offered {
		offeredSet[id] = struct{}{}
	}

	sel := &selection{slot: sl, subtotal: decimal.Zero}
	for _, it := range cartItems {
		p, ok := productMap[it.ProductID]
		if !ok {
			return nil, product.ErrNotFound
		}
		if _, ok := offeredSet[p.ID]; !ok {
			return nil, &ProductNotOfferedError{ProductID: p.ID, SlotID: slotID}
		}
		if p.OutOfStock {
			continue
		}

		amount := p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		sel.items = append(sel.items, order.Item{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    it.Quantity,
			Amount:      amount,
		})
		sel.couponItems = append(sel.couponItems, coupon.Item{
			ProductID: p.ID,
			UnitPrice: p.Price,
			Quantity:  it.Quantity,
		})
		sel.cartItemIDs = append(sel.cartItemIDs, it.ID)
		sel.subtotal = sel.subtotal.Add(amount)
	}

	if len(sel.items) == 0 {
		return nil, ErrEmptySelection
	}
	return sel, nil
}

// eligibleCoupons filters the user's candidate coupons against the frozen
// item snapshot using current usage counts.
func (s *Service) eligibleCoupons(ctx context.Context, userID string, items []coupon.Item) ([]coupon.Coupon, error) {
	candidates, err := s.coupons.ListCandidates(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list coupon candidates")
	}
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	usage, err := s.coupons.UsageCounts(ctx, userID, ids)
	if err != nil {
		return nil, errors.Wrap(err, "usage counts")
	}
	return coupon.Eligible(candidates, usage, userID, items, s.now()), nil
}

// pickEligible returns the chosen coupon from the eligible set, or the
// reason it cannot be applied: unknown ids surface as not-found, known but
// filtered ids as not-eligible.
func (s *Service) pickEligible(ctx context.Context, eligible []coupon.Coupon, couponID string) (*coupon.Coupon, error) {
	for i := range eligible {
		if eligible[i].ID == couponID {
			return &eligible[i], nil
		}
	}
	if _, err := s.coupons.GetByID(ctx, couponID); err != nil {
		return nil, err
	}
	return nil, coupon.ErrNotEligible
}
