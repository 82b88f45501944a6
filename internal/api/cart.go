package api

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/google/uuid"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/cart"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/product"
)

// getCart returns the user's cart priced against live product data. Out of
// stock items are shown but contribute nothing to the subtotal.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	account, _ := accountFrom(r.Context())

	items, err := h.carts.ListByUser(r.Context(), account.UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	productIDs := make([]string, len(items))
	for i, it := range items {
		productIDs[i] = it.ProductID
	}
	products := map[string]product.Product{}
	if len(productIDs) > 0 {
		fetched, err := h.products.GetByIDs(r.Context(), productIDs)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		products = product.MapByID(fetched)
	}

	subtotal := cart.Subtotal(items, products)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("items", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, it := range items {
						p := products[it.ProductID]
						e.Obj(func(e *jx.Encoder) {
							e.Field("id", func(e *jx.Encoder) { e.Str(it.ID) })
							e.Field("productId", func(e *jx.Encoder) { e.Str(it.ProductID) })
							e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
							e.Field("unitPrice", func(e *jx.Encoder) { encodeDecimal(e, p.Price) })
							e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
							e.Field("outOfStock", func(e *jx.Encoder) { e.Bool(p.OutOfStock) })
							e.Field("addedAt", func(e *jx.Encoder) { encodeTime(e, it.AddedAt) })
						})
					}
				})
			})
			e.Field("subtotal", func(e *jx.Encoder) { encodeDecimal(e, subtotal) })
		})
	})
}

// putCartItem adds a product to the cart or replaces its quantity.
func (h *Handler) putCartItem(w http.ResponseWriter, r *http.Request) {
	account, _ := accountFrom(r.Context())

	var (
		productID string
		quantity  int
	)
	err := decodeBody(r, func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "productId":
				v, err := d.Str()
				productID = v
				return err
			case "quantity":
				v, err := d.Int()
				quantity = v
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
	if quantity <= 0 {
		writeDomainError(w, r, cart.ErrInvalidQuantity)
		return
	}

	// Unknown products are rejected up front instead of failing on the
	// foreign key.
	if _, err := h.products.GetByID(r.Context(), productID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	item := &cart.Item{
		ID:        uuid.New().String(),
		UserID:    account.UserID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   h.now(),
	}
	if err := h.carts.Upsert(r.Context(), item); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("id", func(e *jx.Encoder) { e.Str(item.ID) })
			e.Field("productId", func(e *jx.Encoder) { e.Str(item.ProductID) })
			e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
		})
	})
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	account, _ := accountFrom(r.Context())

	if err := h.carts.Remove(r.Context(), account.UserID, r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
