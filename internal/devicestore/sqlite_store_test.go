package devicestore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fandomia/internal/devicestore"
)

func TestSQLiteStore_RoundTripAndReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := t.Context()

	s, err := devicestore.OpenDir(dir)
	require.NoError(t, err)

	_, ok, err := s.Get(ctx, devicestore.KeyCart)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, devicestore.KeyCart, `[{"product_id":1,"variant_id":null,"quantity":2}]`))
	require.NoError(t, s.Set(ctx, devicestore.KeyCart, `[]`))
	require.NoError(t, s.Set(ctx, devicestore.KeySessionID, "sid-1"))
	require.NoError(t, s.Close())

	s, err = devicestore.OpenDir(dir)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, devicestore.KeyCart)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, v)

	require.NoError(t, s.Delete(ctx, devicestore.KeySessionID))
	_, ok, err = s.Get(ctx, devicestore.KeySessionID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemStore_FailWrites(t *testing.T) {
	s := devicestore.NewMemStore()
	s.FailWrites = true
	err := s.Set(t.Context(), devicestore.KeyCart, "[]")
	assert.ErrorIs(t, err, devicestore.ErrWriteFailed)
}
