package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestSessionStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, ok, err := store.Get(context.Background(), "sess-1", "basket")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSessionStore_SetGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "sess-1", "basket", []byte(`{"items":[]}`)))

	value, ok, err := store.Get(ctx, "sess-1", "basket")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"items":[]}`, string(value))
}

func TestSessionStore_Upsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "sess-1", "basket_discount", []byte("10")))
	require.NoError(t, store.Set(ctx, "sess-1", "basket_discount", []byte("25")))

	value, ok, err := store.Get(ctx, "sess-1", "basket_discount")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "25", string(value))
}

func TestSessionStore_SessionsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "sess-1", "basket", []byte("a")))
	require.NoError(t, store.Set(ctx, "sess-2", "basket", []byte("b")))

	value, ok, err := store.Get(ctx, "sess-2", "basket")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "b", string(value))
}

func TestSessionStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "sess-1", "basket", []byte("a")))
	require.NoError(t, store.Delete(ctx, "sess-1", "basket"))

	_, ok, err := store.Get(ctx, "sess-1", "basket")
	require.NoError(t, err)
	require.False(t, ok)

	// Deleting an absent key is not an error.
	require.NoError(t, store.Delete(ctx, "sess-1", "basket"))
}
