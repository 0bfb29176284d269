package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/sentinel-sec/storefront/internal/domain/basket"
)

// watchInterval is the keepalive period for basket count streams.
const watchInterval = 15 * time.Second

type basketResponse struct {
	Items           []basket.LineItem `json:"items"`
	Count           int               `json:"count"`
	Total           string            `json:"total"`
	Discount        int               `json:"discount"`
	DiscountedTotal string            `json:"discountedTotal"`
}

func (h *Handler) basketState(w http.ResponseWriter, r *http.Request, session string) {
	ctx := r.Context()
	b, err := h.baskets.Load(ctx, session)
	if err != nil {
		writeInternal(ctx, w, errors.Wrap(err, "load basket"))
		return
	}
	discount, err := h.baskets.Discount(ctx, session)
	if err != nil {
		writeInternal(ctx, w, errors.Wrap(err, "load discount"))
		return
	}

	items := b.Items
	if items == nil {
		items = []basket.LineItem{}
	}
	total := basket.Total(items)
	writeJSON(w, http.StatusOK, basketResponse{
		Items:           items,
		Count:           b.ItemCount(),
		Total:           total.StringFixed(2),
		Discount:        discount,
		DiscountedTotal: basket.DiscountedTotal(total, discount).StringFixed(2),
	})
}

func (h *Handler) getBasket(w http.ResponseWriter, r *http.Request) {
	h.basketState(w, r, h.session(w, r))
}

// watchBasket streams the item count as server-sent events so the basket
// badge updates without polling. One event fires immediately, then on every
// change and on a keepalive tick. The stream ends when the client disconnects.
func (h *Handler) watchBasket(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)

	fl, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	for count := range h.baskets.Watch(r.Context(), session, watchInterval) {
		_, _ = fmt.Fprintf(w, "data: %d\n\n", count)
		fl.Flush()
	}
}

func (h *Handler) addBasketItem(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)

	var item basket.LineItem
	if err := decodeBody(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if item.ID == "" {
		writeError(w, http.StatusBadRequest, "item id is required")
		return
	}

	if err := h.baskets.Add(r.Context(), session, item); err != nil {
		writeInternal(r.Context(), w, errors.Wrap(err, "add item"))
		return
	}
	h.basketState(w, r, session)
}

func (h *Handler) updateBasketItem(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.baskets.SetQuantity(r.Context(), session, r.PathValue("id"), body.Quantity); err != nil {
		writeInternal(r.Context(), w, errors.Wrap(err, "update quantity"))
		return
	}
	h.basketState(w, r, session)
}

func (h *Handler) removeBasketItem(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)

	if err := h.baskets.Remove(r.Context(), session, r.PathValue("id")); err != nil {
		writeInternal(r.Context(), w, errors.Wrap(err, "remove item"))
		return
	}
	h.basketState(w, r, session)
}

func (h *Handler) clearBasket(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)

	if err := h.baskets.Clear(r.Context(), session); err != nil {
		writeInternal(r.Context(), w, errors.Wrap(err, "clear basket"))
		return
	}
	h.basketState(w, r, session)
}

// applyVoucher applies a discount code to the session. An unrecognized code
// clears any previously applied discount rather than failing, so the response
// always reflects the resulting state.
func (h *Handler) applyVoucher(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)

	var body struct {
		Code string `json:"code"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.baskets.ApplyVoucher(r.Context(), session, body.Code); err != nil {
		writeInternal(r.Context(), w, errors.Wrap(err, "apply voucher"))
		return
	}
	h.basketState(w, r, session)
}
