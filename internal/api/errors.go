package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/cart"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/checkout"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/complaint"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/coupon"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/order"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/product"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/slot"
)

// writeDomainError maps domain errors onto the HTTP error taxonomy:
// validation 400, ownership 403, missing resources 404, illegal state
// transitions 409, business-rule rejections 422. Anything unmapped is a 500
// with the cause logged but not leaked.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptySelection),
		errors.Is(err, checkout.ErrAddressRequired),
		errors.Is(err, checkout.ErrInvalidPaymentMode),
		errors.Is(err, checkout.ErrMixedSlots),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, order.ErrReasonRequired),
		errors.Is(err, complaint.ErrBodyRequired),
		errors.Is(err, slot.ErrInvalidWindow),
		errors.Is(err, coupon.ErrDiscountShape):
		writeMessage(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, order.ErrNotOwner):
		writeMessage(w, http.StatusForbidden, err.Error())

	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, slot.ErrNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, complaint.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())

	case errors.Is(err, order.ErrNotPending),
		errors.Is(err, order.ErrNotCancelled),
		errors.Is(err, complaint.ErrAlreadyResolved):
		writeMessage(w, http.StatusConflict, err.Error())

	case errors.Is(err, coupon.ErrNotEligible):
		writeMessage(w, http.StatusUnprocessableEntity, err.Error())

	default:
		var frozen *slot.FrozenError
		if errors.As(err, &frozen) {
			writeMessage(w, http.StatusUnprocessableEntity, frozen.Error())
			return
		}
		var notOffered *checkout.ProductNotOfferedError
		if errors.As(err, &notOffered) {
			writeMessage(w, http.StatusUnprocessableEntity, notOffered.Error())
			return
		}

		zctx.From(r.Context()).Error("internal error", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}
