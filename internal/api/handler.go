// Package api exposes the ordering platform over HTTP: catalog and slot
// browsing, cart management, checkout, order lifecycle, coupon
// administration and complaints. All money values are serialized as decimal
// strings.
package api

import (
	"net/http"
	"time"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/codecache"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/auth"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/cart"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/checkout"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/complaint"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/coupon"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/order"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/product"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/slot"
)

// Handler serves the HTTP API, delegating business logic to the domain
// services and repositories.
type Handler struct {
	products   product.Repository
	slots      slot.Repository
	carts      cart.Repository
	coupons    coupon.Repository
	checkout   *checkout.Service
	lifecycle  *order.Lifecycle
	complaints *complaint.Service
	codes      *codecache.Cache
	apikeys    auth.Repository
	pepper     []byte
	now        func() time.Time
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(
	products product.Repository,
	slots slot.Repository,
	carts cart.Repository,
	coupons coupon.Repository,
	checkoutSvc *checkout.Service,
	lifecycle *order.Lifecycle,
	complaints *complaint.Service,
	codes *codecache.Cache,
	apikeys auth.Repository,
	pepper []byte,
) *Handler {
	return &Handler{
		products:   products,
		slots:      slots,
		carts:      carts,
		coupons:    coupons,
		checkout:   checkoutSvc,
		lifecycle:  lifecycle,
		complaints: complaints,
		codes:      codes,
		apikeys:    apikeys,
		pepper:     pepper,
		now:        time.Now,
	}
}

// Register mounts every API route on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	// Catalog and slots.
	mux.HandleFunc("GET /api/products", h.authenticate(h.listProducts))
	mux.HandleFunc("GET /api/products/{id}", h.authenticate(h.getProduct))
	mux.HandleFunc("GET /api/slots", h.authenticate(h.listSlots))

	// Cart.
	mux.HandleFunc("GET /api/cart", h.authenticate(h.getCart))
	mux.HandleFunc("PUT /api/cart", h.authenticate(h.putCartItem))
	mux.HandleFunc("DELETE /api/cart/{id}", h.authenticate(h.removeCartItem))

	// Checkout and orders.
	mux.HandleFunc("POST /api/checkout/quote", h.authenticate(h.quote))
	mux.HandleFunc("POST /api/orders", h.authenticate(h.placeOrder))
	mux.HandleFunc("GET /api/orders", h.authenticate(h.listOrders))
	mux.HandleFunc("GET /api/orders/{id}", h.authenticate(h.getOrder))
	mux.HandleFunc("POST /api/orders/{id}/cancel", h.authenticate(h.cancelOrder))

	// Coupons.
	mux.HandleFunc("POST /api/coupons/validate", h.authenticate(h.validateCouponCode))

	// Complaints.
	mux.HandleFunc("POST /api/complaints", h.authenticate(h.fileComplaint))
	mux.HandleFunc("GET /api/complaints", h.authenticate(h.listComplaints))

	// Admin: fulfilment, catalog, coupons, complaints.
	mux.HandleFunc("GET /api/admin/orders", h.adminOnly(h.listAllOrders))
	mux.HandleFunc("POST /api/admin/orders/{id}/packaged", h.adminOnly(h.markPackaged))
	mux.HandleFunc("POST /api/admin/orders/{id}/delivered", h.adminOnly(h.markDelivered))
	mux.HandleFunc("POST /api/admin/orders/{id}/refund", h.adminOnly(h.markRefunded))
	mux.HandleFunc("POST /api/admin/products/{id}/stock", h.adminOnly(h.setProductStock))
	mux.HandleFunc("POST /api/admin/slots", h.adminOnly(h.createSlot))
	mux.HandleFunc("POST /api/admin/slots/{id}/active", h.adminOnly(h.setSlotActive))
	mux.HandleFunc("POST /api/admin/coupons", h.adminOnly(h.createCoupon))
	mux.HandleFunc("POST /api/admin/coupons/{id}/invalidate", h.adminOnly(h.invalidateCoupon))
	mux.HandleFunc("GET /api/admin/complaints", h.adminOnly(h.listOpenComplaints))
	mux.HandleFunc("POST /api/admin/complaints/{id}/resolve", h.adminOnly(h.resolveComplaint))
}
