package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/sentinel-sec/storefront/internal/domain/checkout"
	"github.com/sentinel-sec/storefront/internal/domain/order"
)

// submitCheckout validates the payment form and persists an order for the
// authenticated user. Validation failures carry the exact form message; a
// storage failure keeps the basket so the user can retry.
func (h *Handler) submitCheckout(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)

	var payment checkout.PaymentDetails
	if err := decodeBody(r, &payment); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req := checkout.Request{
		Session: session,
		Payment: payment,
	}
	if u := h.currentUser(r); u != nil {
		req.UserID = u.ID
	}

	result, err := h.checkout.Submit(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, result.Order)
	case errors.Is(err, checkout.ErrAuthRequired):
		writeError(w, http.StatusUnauthorized, "sign in to complete checkout")
	case errors.Is(err, checkout.ErrEmptyBasket):
		writeError(w, http.StatusBadRequest, "basket is empty")
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		writeError(w, http.StatusConflict, "checkout already in progress")
	default:
		var invalid *checkout.ValidationError
		if errors.As(err, &invalid) {
			writeError(w, http.StatusBadRequest, invalid.Message)
			return
		}
		var persist *checkout.PersistError
		if errors.As(err, &persist) {
			writeInternal(r.Context(), w, persist)
			return
		}
		writeInternal(r.Context(), w, errors.Wrap(err, "checkout"))
	}
}

// listOrders returns the authenticated user's order history, most recent
// first.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	u := h.currentUser(r)
	if u == nil {
		writeError(w, http.StatusUnauthorized, "sign in to view orders")
		return
	}

	list, err := h.orders.ListByUser(r.Context(), u.ID)
	if err != nil {
		writeInternal(r.Context(), w, errors.Wrap(err, "list orders"))
		return
	}
	if list == nil {
		list = []order.Order{}
	}
	writeJSON(w, http.StatusOK, list)
}
