package basket

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const session = "sess-1"

func newTestManager() (*Manager, *MemoryStore) {
	store := NewMemoryStore()
	m := NewManager(store)
	m.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return m, store
}

func TestManager_LoadEmpty(t *testing.T) {
	m, _ := newTestManager()

	b, err := m.Load(context.Background(), session)
	require.NoError(t, err)
	assert.True(t, b.Empty())
}

func TestManager_AddAccumulatesQuantity(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.Add(ctx, session, LineItem{ID: "X", Name: "CEH", UnitPrice: "950.00", Quantity: 2}))
	require.NoError(t, m.Add(ctx, session, LineItem{ID: "X", Name: "CEH", UnitPrice: "950.00", Quantity: 3}))

	b, err := m.Load(ctx, session)
	require.NoError(t, err)
	require.Len(t, b.Items, 1)
	assert.Equal(t, 5, b.Items[0].Quantity)
}

func TestManager_AddAppendsNewItem(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.Add(ctx, session, LineItem{ID: "X", UnitPrice: "10.00", Quantity: 1}))
	require.NoError(t, m.Add(ctx, session, LineItem{ID: "Y", UnitPrice: "20.00", Quantity: 1}))

	b, err := m.Load(ctx, session)
	require.NoError(t, err)
	require.Len(t, b.Items, 2)
	assert.Equal(t, "X", b.Items[0].ID)
	assert.Equal(t, "Y", b.Items[1].ID)
}

func TestManager_AddRefreshesExpiry(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.Add(ctx, session, LineItem{ID: "X", UnitPrice: "10.00", Quantity: 1}))

	b, err := m.Load(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, m.now().Add(DefaultTTL), b.Expiry.UTC())
}

func TestManager_Remove(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.Add(ctx, session, LineItem{ID: "X", UnitPrice: "10.00", Quantity: 1}))
	require.NoError(t, m.Add(ctx, session, LineItem{ID: "Y", UnitPrice: "20.00", Quantity: 1}))
	require.NoError(t, m.Remove(ctx, session, "X"))

	b, err := m.Load(ctx, session)
	require.NoError(t, err)
	require.Len(t, b.Items, 1)
	assert.Equal(t, "Y", b.Items[0].ID)
}

func TestManager_SetQuantity(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.Add(ctx, session, LineItem{ID: "X", UnitPrice: "10.00", Quantity: 2}))

	t.Run("overwrites", func(t *testing.T) {
		require.NoError(t, m.SetQuantity(ctx, session, "X", 7))
		b, err := m.Load(ctx, session)
		require.NoError(t, err)
		assert.Equal(t, 7, b.Items[0].Quantity)
	})

	t.Run("zero is a no-op", func(t *testing.T) {
		require.NoError(t, m.SetQuantity(ctx, session, "X", 0))
		b, err := m.Load(ctx, session)
		require.NoError(t, err)
		assert.Equal(t, 7, b.Items[0].Quantity)
	})

	t.Run("negative is a no-op", func(t *testing.T) {
		require.NoError(t, m.SetQuantity(ctx, session, "X", -3))
		b, err := m.Load(ctx, session)
		require.NoError(t, err)
		assert.Equal(t, 7, b.Items[0].Quantity)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		require.NoError(t, m.SetQuantity(ctx, session, "missing", 4))
		b, err := m.Load(ctx, session)
		require.NoError(t, err)
		require.Len(t, b.Items, 1)
	})
}

func TestManager_ExpiredBasketPurged(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.Add(ctx, session, LineItem{ID: "X", UnitPrice: "10.00", Quantity: 1}))

	// Jump past the expiry window.
	m.now = func() time.Time { return time.Date(2025, 6, 17, 12, 0, 0, 0, time.UTC) }

	b, err := m.Load(ctx, session)
	require.NoError(t, err)
	assert.True(t, b.Empty())

	_, ok, err := store.Get(ctx, session, keyBasket)
	require.NoError(t, err)
	assert.False(t, ok, "expired entry should be purged")
}

func TestManager_CorruptBasketReadsEmpty(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, session, keyBasket, []byte("{not json")))

	b, err := m.Load(ctx, session)
	require.NoError(t, err)
	assert.True(t, b.Empty())

	_, ok, err := store.Get(ctx, session, keyBasket)
	require.NoError(t, err)
	assert.False(t, ok, "corrupt entry should be purged")
}

func TestManager_LegacyPayloads(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	t.Run("bare array without expiry", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, session, keyBasket, []byte(`[{"id":"X","name":"CEH","price":"10.00","quantity":2}]`)))

		b, err := m.Load(ctx, session)
		require.NoError(t, err)
		require.Len(t, b.Items, 1)
		assert.Equal(t, 2, b.Items[0].Quantity)
	})

	t.Run("missing quantity upgrades to one", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, session, keyBasket, []byte(`{"items":[{"id":"X","name":"CEH","price":"10.00"}],"expiry":4102444800000}`)))

		b, err := m.Load(ctx, session)
		require.NoError(t, err)
		require.Len(t, b.Items, 1)
		assert.Equal(t, 1, b.Items[0].Quantity)
	})
}

func TestManager_ApplyVoucher(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	percent, err := m.ApplyVoucher(ctx, session, "discount10")
	require.NoError(t, err)
	assert.Equal(t, 10, percent)

	got, err := m.Discount(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 10, got)

	// A non-matching code clears the active discount.
	percent, err = m.ApplyVoucher(ctx, session, "bogus")
	require.NoError(t, err)
	assert.Equal(t, 0, percent)

	got, err = m.Discount(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestManager_DiscountSurvivesBasketExpiry(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.Add(ctx, session, LineItem{ID: "X", UnitPrice: "10.00", Quantity: 1}))
	_, err := m.ApplyVoucher(ctx, session, "discount15")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC) }

	b, err := m.Load(ctx, session)
	require.NoError(t, err)
	assert.True(t, b.Empty())

	got, err := m.Discount(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 15, got)
}

func TestManager_CorruptDiscountReadsZero(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, session, keyDiscount, []byte("lots")))

	got, err := m.Discount(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestManager_Clear(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.Add(ctx, session, LineItem{ID: "X", UnitPrice: "10.00", Quantity: 1}))
	_, err := m.ApplyVoucher(ctx, session, "discount10")
	require.NoError(t, err)

	require.NoError(t, m.Clear(ctx, session))

	b, err := m.Load(ctx, session)
	require.NoError(t, err)
	assert.True(t, b.Empty())

	got, err := m.Discount(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestManager_TotalExample(t *testing.T) {
	// basket = [{A 10.00 x2}, {B 5.00 x1}], discount 10% -> 25.00 / 22.50.
	items := []LineItem{
		{ID: "A", UnitPrice: "10.00", Quantity: 2},
		{ID: "B", UnitPrice: "5.00", Quantity: 1},
	}

	total := Total(items)
	assert.True(t, total.Equal(decimal.RequireFromString("25.00")))
	assert.True(t, DiscountedTotal(total, 10).Equal(decimal.RequireFromString("22.50")))
}

func TestManager_WatchEmitsOnWrite(t *testing.T) {
	m, _ := newTestManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	counts := m.Watch(ctx, session, time.Hour)

	// Initial emit for the empty basket.
	assert.Equal(t, 0, <-counts)

	require.NoError(t, m.Add(ctx, session, LineItem{ID: "X", UnitPrice: "10.00", Quantity: 3}))
	assert.Equal(t, 3, <-counts)

	cancel()
	for range counts {
	}
}
