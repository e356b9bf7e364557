package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPreferences(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "nested", "folio.db"))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	_, ok, err := db.Get(ctx, "nav-order")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Set(ctx, "nav-order", `["/","/notes"]`))
	require.NoError(t, db.Set(ctx, "nav-order", `["/notes","/"]`))

	v, ok, err := db.Get(ctx, "nav-order")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["/notes","/"]`, v)

	require.NoError(t, db.Delete(ctx, "nav-order"))
	_, ok, err = db.Get(ctx, "nav-order")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting a missing key is not an error.
	assert.NoError(t, db.Delete(ctx, "nav-order"))
}
