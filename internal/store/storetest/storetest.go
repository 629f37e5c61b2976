// Package storetest provides a conformance suite for store.Store backends.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewecart/internal/store"
)

// Run exercises s against the store.Store contract.
// The store must be empty when Run starts.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		_, err := s.Get(ctx, store.Mappings, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("PutAndGet", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, store.Mappings, "milch", []byte(`{"name":"Vollmilch"}`)))

		got, err := s.Get(ctx, store.Mappings, "milch")
		require.NoError(t, err)
		assert.Equal(t, `{"name":"Vollmilch"}`, string(got))
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, store.Mappings, "brot", []byte("a")))
		require.NoError(t, s.Put(ctx, store.Mappings, "brot", []byte("b")))

		got, err := s.Get(ctx, store.Mappings, "brot")
		require.NoError(t, err)
		assert.Equal(t, "b", string(got))
	})

	t.Run("NamespacesAreIsolated", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, store.Settings, "milch", []byte("settings")))

		got, err := s.Get(ctx, store.Mappings, "milch")
		require.NoError(t, err)
		assert.Equal(t, `{"name":"Vollmilch"}`, string(got))

		_, err = s.Get(ctx, store.Session, "milch")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("List", func(t *testing.T) {
		all, err := s.List(ctx, store.Mappings)
		require.NoError(t, err)
		assert.Len(t, all, 2)
		assert.Equal(t, "b", string(all["brot"]))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, store.Mappings, "brot"))
		require.NoError(t, s.Delete(ctx, store.Mappings, "brot"))

		_, err := s.Get(ctx, store.Mappings, "brot")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, s.Clear(ctx, store.Mappings))

		all, err := s.List(ctx, store.Mappings)
		require.NoError(t, err)
		assert.Empty(t, all)

		got, err := s.Get(ctx, store.Settings, "milch")
		require.NoError(t, err)
		assert.Equal(t, "settings", string(got))
	})
}
