package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 11, 9, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Put(ctx, "short", []byte("a"), time.Minute))
	require.NoError(t, store.Put(ctx, "forever", []byte("b"), 0))

	value, err := store.Get(ctx, "short")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), value)

	now = now.Add(2 * time.Minute)

	_, err = store.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	value, err = store.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), value)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	value := []byte("abc")
	require.NoError(t, store.Put(ctx, "k", value, 0))
	value[0] = 'x'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}
