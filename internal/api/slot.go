package api

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"
	"github.com/google/uuid"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/slot"
)

func encodeSlot(e *jx.Encoder, s slot.Slot) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(s.ID) })
		e.Field("deliveryAt", func(e *jx.Encoder) { encodeTime(e, s.DeliveryAt) })
		e.Field("freezeAt", func(e *jx.Encoder) { encodeTime(e, s.FreezeAt) })
		e.Field("active", func(e *jx.Encoder) { e.Bool(s.Active) })
	})
}

// listSlots returns active slots whose order cutoff has not passed.
func (h *Handler) listSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.slots.ListUpcoming(r.Context(), h.now())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, s := range slots {
				encodeSlot(e, s)
			}
		})
	})
}

func (h *Handler) createSlot(w http.ResponseWriter, r *http.Request) {
	var (
		deliveryAt time.Time
		freezeAt   time.Time
		productIDs []string
	)
	err := decodeBody(r, func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "deliveryAt":
				s, err := d.Str()
				if err != nil {
					return err
				}
				deliveryAt, err = time.Parse(time.RFC3339, s)
				return err
			case "freezeAt":
				s, err := d.Str()
				if err != nil {
					return err
				}
				freezeAt, err = time.Parse(time.RFC3339, s)
				return err
			case "productIds":
				return d.Arr(func(d *jx.Decoder) error {
					id, err := d.Str()
					if err != nil {
						return err
					}
					productIDs = append(productIDs, id)
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

	s, err := slot.New(uuid.New().String(), deliveryAt, freezeAt, true)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := h.slots.Create(r.Context(), s, productIDs); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeSlot(e, *s) })
}

func (h *Handler) setSlotActive(w http.ResponseWriter, r *http.Request) {
	var active bool
	err := decodeBody(r, func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key == "active" {
				v, err := d.Bool()
				active = v
				return err
			}
			return d.Skip()
		})
	})
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := h.slots.SetActive(r.Context(), r.PathValue("id"), active); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s, err := h.slots.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeSlot(e, *s) })
}
