package basket

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-faster/errors"
)

// DefaultTTL is how long a persisted basket stays valid after a write.
const DefaultTTL = 24 * time.Hour

// storedBasket is the persisted representation: line items plus an expiry
// timestamp in unix milliseconds.
type storedBasket struct {
	Items  []LineItem `json:"items"`
	Expiry int64      `json:"expiry"`
}

// Manager maintains per-session basket and discount state in a Store.
//
// Unreadable or expired persisted state is treated as an empty basket and
// purged; it is never surfaced to the caller. The active discount has a
// lifecycle independent of the basket expiry: it is cleared only by a
// non-matching voucher or by an explicit Clear after checkout.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time

	notifier notifier
}

// NewManager creates a Manager over the given store with the default expiry
// window.
func NewManager(store Store) *Manager {
	return &Manager{
		store: store,
		ttl:   DefaultTTL,
		now:   time.Now,
	}
}

// NewManagerTTL creates a Manager with a custom expiry window.
func NewManagerTTL(store Store, ttl time.Duration) *Manager {
	m := NewManager(store)
	m.ttl = ttl
	return m
}

// Load reads the persisted basket for the session. An absent, unreadable, or
// expired entry yields an empty basket, and the persisted entry is purged.
func (m *Manager) Load(ctx context.Context, session string) (Basket, error) {
	raw, ok, err := m.store.Get(ctx, session, keyBasket)
	if err != nil {
		return Basket{}, errors.Wrap(err, "read basket")
	}
	if !ok {
		return Basket{}, nil
	}

	b, ok := m.decode(raw)
	if !ok || (!b.Expiry.IsZero() && m.now().After(b.Expiry)) {
		if err := m.store.Delete(ctx, session, keyBasket); err != nil {
			return Basket{}, errors.Wrap(err, "purge basket")
		}
		return Basket{}, nil
	}
	return b, nil
}

// decode parses a persisted payload. Two formats are accepted: the current
// {items, expiry} object, and the legacy bare item array which carried no
// expiry. Items persisted without a quantity load as quantity 1.
func (m *Manager) decode(raw []byte) (Basket, bool) {
	var stored storedBasket
	if err := json.Unmarshal(raw, &stored); err != nil {
		var legacy []LineItem
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return Basket{}, false
		}
		stored = storedBasket{Items: legacy, Expiry: m.now().Add(m.ttl).UnixMilli()}
	}

	for i := range stored.Items {
		if stored.Items[i].Quantity < 1 {
			stored.Items[i].Quantity = 1
		}
	}
	return Basket{
		Items:  stored.Items,
		Expiry: time.UnixMilli(stored.Expiry),
	}, true
}

// Add merges the item into the session basket. An existing line item with the
// same ID has its quantity incremented by the item's quantity; otherwise the
// item is appended. The expiry is refreshed to a full window from now.
func (m *Manager) Add(ctx context.Context, session string, item LineItem) error {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	b, err := m.Load(ctx, session)
	if err != nil {
		return err
	}

	merged := false
	for i := range b.Items {
		if b.Items[i].ID == item.ID {
			b.Items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		b.Items = append(b.Items, item)
	}

	return m.persist(ctx, session, b.Items, m.now().Add(m.ttl))
}

// Remove deletes the line item with the given ID. The remaining items keep
// the basket's current expiry; Load has already purged expired state, so a
// stale basket can not come back through here.
func (m *Manager) Remove(ctx context.Context, session, id string) error {
	b, err := m.Load(ctx, session)
	if err != nil {
		return err
	}

	items := b.Items[:0]
	for _, it := range b.Items {
		if it.ID != id {
			items = append(items, it)
		}
	}
	return m.persist(ctx, session, items, m.expiryOf(b))
}

// SetQuantity overwrites the quantity for the line item with the given ID.
// Values below 1 are a no-op, as is an ID with no matching line item.
func (m *Manager) SetQuantity(ctx context.Context, session, id string, n int) error {
	if n < 1 {
		return nil
	}

	b, err := m.Load(ctx, session)
	if err != nil {
		return err
	}

	changed := false
	for i := range b.Items {
		if b.Items[i].ID == id {
			b.Items[i].Quantity = n
			changed = true
			break
		}
	}
	if !changed {
		return nil
	}
	return m.persist(ctx, session, b.Items, m.expiryOf(b))
}

// ApplyVoucher matches the code and persists the resulting percentage for the
// session, independent of the basket expiry. A code outside the accepted form
// or range clears any active discount; the returned percentage is 0 then.
func (m *Manager) ApplyVoucher(ctx context.Context, session, code string) (int, error) {
	percent := ParseVoucher(code)
	if percent == 0 {
		if err := m.store.Delete(ctx, session, keyDiscount); err != nil {
			return 0, errors.Wrap(err, "clear discount")
		}
		return 0, nil
	}

	if err := m.store.Set(ctx, session, keyDiscount, []byte(strconv.Itoa(percent))); err != nil {
		return 0, errors.Wrap(err, "persist discount")
	}
	return percent, nil
}

// Discount returns the active discount percentage for the session, or 0.
// An unreadable or out-of-range persisted value reads as no discount.
func (m *Manager) Discount(ctx context.Context, session string) (int, error) {
	raw, ok, err := m.store.Get(ctx, session, keyDiscount)
	if err != nil {
		return 0, errors.Wrap(err, "read discount")
	}
	if !ok {
		return 0, nil
	}

	percent, err := strconv.Atoi(string(raw))
	if err != nil || percent <= 0 || percent > 99 {
		return 0, nil
	}
	return percent, nil
}

// Clear removes both the basket and the active discount for the session.
// Checkout calls this once an order has been persisted.
func (m *Manager) Clear(ctx context.Context, session string) error {
	if err := m.store.Delete(ctx, session, keyBasket); err != nil {
		return errors.Wrap(err, "clear basket")
	}
	if err := m.store.Delete(ctx, session, keyDiscount); err != nil {
		return errors.Wrap(err, "clear discount")
	}
	m.notifier.notify()
	return nil
}

func (m *Manager) persist(ctx context.Context, session string, items []LineItem, expiry time.Time) error {
	raw, err := json.Marshal(storedBasket{Items: items, Expiry: expiry.UnixMilli()})
	if err != nil {
		return errors.Wrap(err, "encode basket")
	}
	if err := m.store.Set(ctx, session, keyBasket, raw); err != nil {
		return errors.Wrap(err, "persist basket")
	}
	m.notifier.notify()
	return nil
}

// expiryOf keeps the loaded basket's expiry for writes that must not extend
// it, falling back to a fresh window when none was recorded.
func (m *Manager) expiryOf(b Basket) time.Time {
	if b.Expiry.IsZero() || b.Expiry.UnixMilli() == 0 {
		return m.now().Add(m.ttl)
	}
	return b.Expiry
}
