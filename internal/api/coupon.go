package api

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/coupon"
)

func encodeCoupon(e *jx.Encoder, c *coupon.Coupon) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(c.ID) })
		e.Field("code", func(e *jx.Encoder) { e.Str(c.Code) })
		kind := "percentage"
		if c.Discount.Kind() == coupon.KindFlat {
			kind = "flat"
		}
		e.Field("kind", func(e *jx.Encoder) { e.Str(kind) })
		e.Field("value", func(e *jx.Encoder) { encodeDecimal(e, c.Discount.Value()) })
		if c.MaxDiscount != nil {
			e.Field("maxDiscount", func(e *jx.Encoder) { encodeDecimal(e, *c.MaxDiscount) })
		}
		if c.MinOrder != nil {
			e.Field("minOrder", func(e *jx.Encoder) { encodeDecimal(e, *c.MinOrder) })
		}
		if c.ValidTill != nil {
			e.Field("validTill", func(e *jx.Encoder) { encodeTime(e, *c.ValidTill) })
		}
		if ids := c.Scope.ProductIDs(); ids != nil {
			e.Field("scope", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, id := range ids {
						e.Str(id)
					}
				})
			})
		}
		e.Field("invalidated", func(e *jx.Encoder) { e.Bool(c.Invalidated) })
	})
}

// validateCouponCode resolves a human-entered coupon code. The bloom
// prescreen answers for garbage codes without touching the database; codes
// it passes through are looked up authoritatively.
func (h *Handler) validateCouponCode(w http.ResponseWriter, r *http.Request) {
	var code string
	err := decodeBody(r, func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key == "code" {
				v, err := d.Str()
				code = v
				return err
			}
			return d.Skip()
		})
	})
	if err != nil || code == "" {
		writeMessage(w, http.StatusBadRequest, "coupon code is required")
		return
	}

	if !h.codes.Contains(code) {
		writeMessage(w, http.StatusNotFound, coupon.ErrNotFound.Error())
		return
	}

	c, err := h.coupons.GetByCode(r.Context(), code)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCoupon(e, c) })
}

func (h *Handler) createCoupon(w http.ResponseWriter, r *http.Request) {
	var (
		code       string
		percentOff *decimal.Decimal
		flatOff    *decimal.Decimal
		c          = coupon.Coupon{ID: uuid.New().String(), Exclusive: true}
		scopeIDs   []string
	)
	err := decodeBody(r, func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "code":
				v, err := d.Str()
				code = v
				return err
			case "percentOff":
				v, err := decodeDecimalField(d)
				percentOff = v
				return err
			case "flatOff":
				v, err := decodeDecimalField(d)
				flatOff = v
				return err
			case "maxDiscount":
				v, err := decodeDecimalField(d)
				c.MaxDiscount = v
				return err
			case "minOrder":
				v, err := decodeDecimalField(d)
				c.MinOrder = v
				return err
			case "targetUser":
				v, err := d.Str()
				if err != nil {
					return err
				}
				c.TargetUser = &v
				return nil
			case "maxPerUser":
				v, err := d.Int()
				if err != nil {
					return err
				}
				c.MaxPerUser = &v
				return nil
			case "validTill":
				s, err := d.Str()
				if err != nil {
					return err
				}
				t, err := time.Parse(time.RFC3339, s)
				if err != nil {
					return err
				}
				c.ValidTill = &t
				return nil
			case "scope":
				return d.Arr(func(d *jx.Decoder) error {
					id, err := d.Str()
					if err != nil {
						return err
					}
					scopeIDs = append(scopeIDs, id)
					return nil
				})
			default:
				return d.Skip()
			}
		})
	})
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if code == "" {
		writeMessage(w, http.StatusBadRequest, "coupon code is required")
		return
	}

	discount, err := coupon.DiscountFromColumns(percentOff, flatOff)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	c.Code = code
	c.Discount = discount
	c.Scope = coupon.Products(scopeIDs...)

	if err := h.coupons.Create(r.Context(), &c); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.codes.Add(code)

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeCoupon(e, &c) })
}

func (h *Handler) invalidateCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.coupons.Invalidate(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}

	c, err := h.coupons.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCoupon(e, c) })
}

func decodeDecimalField(d *jx.Decoder) (*decimal.Decimal, error) {
	s, err := d.Str()
	if err != nil {
		return nil, err
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
