package api

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/product"
)

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { encodeDecimal(e, p.Price) })
		e.Field("unit", func(e *jx.Encoder) { e.Str(p.Unit) })
		e.Field("outOfStock", func(e *jx.Encoder) { e.Bool(p.OutOfStock) })
		e.Field("image", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("thumbnail", func(e *jx.Encoder) { e.Str(p.Image.Thumbnail) })
				e.Field("full", func(e *jx.Encoder) { e.Str(p.Image.Full) })
			})
		})
		e.Field("storeName", func(e *jx.Encoder) { e.Str(p.StoreName) })
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, p := range products {
				encodeProduct(e, p)
			}
		})
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, *p) })
}

func (h *Handler) setProductStock(w http.ResponseWriter, r *http.Request) {
	var outOfStock bool
	err := decodeBody(r, func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key == "outOfStock" {
				v, err := d.Bool()
				outOfStock = v
				return err
			}
			return d.Skip()
		})
	})
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := h.products.SetOutOfStock(r.Context(), r.PathValue("id"), outOfStock); err != nil {
		writeDomainError(w, r, err)
		return
	}

	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, *p) })
}
