package api

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/order"
)

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("readableId", func(e *jx.Encoder) { e.Int64(o.ReadableID) })
		e.Field("slotId", func(e *jx.Encoder) { e.Str(o.SlotID) })
		e.Field("address", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("name", func(e *jx.Encoder) { e.Str(o.Address.Name) })
				e.Field("line1", func(e *jx.Encoder) { e.Str(o.Address.Line1) })
				e.Field("line2", func(e *jx.Encoder) { e.Str(o.Address.Line2) })
				e.Field("city", func(e *jx.Encoder) { e.Str(o.Address.City) })
				e.Field("pincode", func(e *jx.Encoder) { e.Str(o.Address.Pincode) })
				e.Field("phone", func(e *jx.Encoder) { e.Str(o.Address.Phone) })
			})
		})
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, it := range o.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("productId", func(e *jx.Encoder) { e.Str(it.ProductID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(it.ProductName) })
						e.Field("unitPrice", func(e *jx.Encoder) { encodeDecimal(e, it.UnitPrice) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
						e.Field("amount", func(e *jx.Encoder) { encodeDecimal(e, it.Amount) })
					})
				}
			})
		})
		e.Field("subtotal", func(e *jx.Encoder) { encodeDecimal(e, o.Subtotal) })
		e.Field("couponId", func(e *jx.Encoder) { encodeOptStr(e, o.CouponID) })
		e.Field("discount", func(e *jx.Encoder) { encodeDecimal(e, o.Discount) })
		e.Field("finalAmount", func(e *jx.Encoder) { encodeDecimal(e, o.FinalAmount) })
		e.Field("paymentMode", func(e *jx.Encoder) { e.Str(string(o.PaymentMode)) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
		e.Field("isPackaged", func(e *jx.Encoder) { e.Bool(o.IsPackaged) })
		e.Field("isDelivered", func(e *jx.Encoder) { e.Bool(o.IsDelivered) })
		e.Field("cancelReason", func(e *jx.Encoder) { e.Str(o.CancelReason) })
		e.Field("refundDone", func(e *jx.Encoder) { e.Bool(o.RefundDone) })
		e.Field("createdAt", func(e *jx.Encoder) { encodeTime(e, o.CreatedAt) })
	})
}

func writeOrderList(w http.ResponseWriter, orders []order.Order) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for i := range orders {
				encodeOrder(e, &orders[i])
			}
		})
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	account, _ := accountFrom(r.Context())

	orders, err := h.lifecycle.ListByUser(r.Context(), account.UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeOrderList(w, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	account, _ := accountFrom(r.Context())

	o, err := h.lifecycle.Get(r.Context(), r.PathValue("id"), account.UserID, account.Admin)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	account, _ := accountFrom(r.Context())

	var reason string
	err := decodeBody(r, func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key == "reason" {
				v, err := d.Str()
				reason = v
				return err
			}
			return d.Skip()
		})
	})
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}

	o, err := h.lifecycle.Cancel(r.Context(), r.PathValue("id"), account.UserID, reason)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

func (h *Handler) listAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.lifecycle.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeOrderList(w, orders)
}

func (h *Handler) markPackaged(w http.ResponseWriter, r *http.Request) {
	o, err := h.lifecycle.MarkPackaged(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

func (h *Handler) markDelivered(w http.ResponseWriter, r *http.Request) {
	o, err := h.lifecycle.MarkDelivered(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

func (h *Handler) markRefunded(w http.ResponseWriter, r *http.Request) {
	o, err := h.lifecycle.MarkRefunded(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}
