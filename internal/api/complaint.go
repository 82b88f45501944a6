package api

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/complaint"
)

func encodeComplaint(e *jx.Encoder, c *complaint.Complaint) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(c.ID) })
		e.Field("orderId", func(e *jx.Encoder) { encodeOptStr(e, c.OrderID) })
		e.Field("body", func(e *jx.Encoder) { e.Str(c.Body) })
		e.Field("resolved", func(e *jx.Encoder) { e.Bool(c.Resolved) })
		e.Field("response", func(e *jx.Encoder) { e.Str(c.Response) })
		e.Field("createdAt", func(e *jx.Encoder) { encodeTime(e, c.CreatedAt) })
	})
}

func writeComplaintList(w http.ResponseWriter, complaints []complaint.Complaint) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for i := range complaints {
				encodeComplaint(e, &complaints[i])
			}
		})
	})
}

// fileComplaint records a servicing request, optionally tied to an order.
func (h *Handler) fileComplaint(w http.ResponseWriter, r *http.Request) {
	account, _ := accountFrom(r.Context())

	var (
		orderID *string
		body    string
	)
	err := decodeBody(r, func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "orderId":
				if d.Next() == jx.Null {
					return d.Null()
				}
				v, err := d.Str()
				orderID = &v
				return err
			case "body":
				v, err := d.Str()
				body = v
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

	c, err := h.complaints.File(r.Context(), account.UserID, orderID, body)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeComplaint(e, c) })
}

func (h *Handler) listComplaints(w http.ResponseWriter, r *http.Request) {
	account, _ := accountFrom(r.Context())

	complaints, err := h.complaints.ListByUser(r.Context(), account.UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeComplaintList(w, complaints)
}

func (h *Handler) listOpenComplaints(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.complaints.ListOpen(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeComplaintList(w, complaints)
}

func (h *Handler) resolveComplaint(w http.ResponseWriter, r *http.Request) {
	var response string
	err := decodeBody(r, func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key == "response" {
				v, err := d.Str()
				response = v
				return err
			}
			return d.Skip()
		})
	})
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}

	c, err := h.complaints.Resolve(r.Context(), r.PathValue("id"), response)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeComplaint(e, c) })
}
