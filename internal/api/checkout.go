package api

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/checkout"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/order"
)

func decodeBindings(d *jx.Decoder) (checkout.Bindings, error) {
	bindings := checkout.Bindings{}
	err := d.Obj(func(d *jx.Decoder, itemID string) error {
		slotID, err := d.Str()
		if err != nil {
			return err
		}
		bindings[itemID] = slotID
		return nil
	})
	return bindings, err
}

func decodeAddress(d *jx.Decoder) (order.Address, error) {
	var a order.Address
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var (
			dst *string
			err error
		)
		switch key {
		case "name":
			dst = &a.Name
		case "line1":
			dst = &a.Line1
		case "line2":
			dst = &a.Line2
		case "city":
			dst = &a.City
		case "pincode":
			dst = &a.Pincode
		case "phone":
			dst = &a.Phone
		default:
			return d.Skip()
		}
		*dst, err = d.Str()
		return err
	})
	return a, err
}

// quote prices the selection without committing anything.
func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	account, _ := accountFrom(r.Context())

	var (
		bindings checkout.Bindings
		couponID *string
	)
	err := decodeBody(r, func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "bindings":
				var err error
				bindings, err = decodeBindings(d)
				return err
			case "couponId":
				if d.Next() == jx.Null {
					return d.Null()
				}
				v, err := d.Str()
				couponID = &v
				return err
			default:
				return d.Skip()
			}
		})
	})
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}

	q, err := h.checkout.Quote(r.Context(), account.UserID, bindings, couponID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("subtotal", func(e *jx.Encoder) { encodeDecimal(e, q.Subtotal) })
			e.Field("discount", func(e *jx.Encoder) { encodeDecimal(e, q.Discount) })
			e.Field("finalAmount", func(e *jx.Encoder) { encodeDecimal(e, q.FinalAmount) })
			e.Field("eligibleCoupons", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for i := range q.EligibleCoupons {
						encodeCoupon(e, &q.EligibleCoupons[i])
					}
				})
			})
		})
	})
}

// placeOrder runs the full checkout: validation, freeze check, coupon
// re-validation and the atomic write.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	account, _ := accountFrom(r.Context())

	var (
		bindings checkout.Bindings
		address  order.Address
		mode     order.PaymentMode
		couponID *string
	)
	err := decodeBody(r, func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "bindings":
				var err error
				bindings, err = decodeBindings(d)
				return err
			case "address":
				var err error
				address, err = decodeAddress(d)
				return err
			case "paymentMode":
				v, err := d.Str()
				mode = order.PaymentMode(v)
				return err
			case "couponId":
				if d.Next() == jx.Null {
					return d.Null()
				}
				v, err := d.Str()
				couponID = &v
				return err
			default:
				return d.Skip()
			}
		})
	})
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}

	o, err := h.checkout.PlaceOrder(r.Context(), account.UserID, bindings, address, mode, couponID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeOrder(e, o) })
}
