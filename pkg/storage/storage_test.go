package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAdapter(t *testing.T) {
	a := NewMemoryAdapter()

	// Missing keys are empty, not errors
	value, err := a.GetItem("missing")
	require.NoError(t, err)
	assert.Equal(t, "", value)

	require.NoError(t, a.SetItem("key", "hello"))
	value, err = a.GetItem("key")
	require.NoError(t, err)
	assert.Equal(t, "hello", value)

	require.NoError(t, a.RemoveItem("key"))
	value, err = a.GetItem("key")
	require.NoError(t, err)
	assert.Equal(t, "", value)

	// Removing twice is fine
	require.NoError(t, a.RemoveItem("key"))
}

func TestFileAdapter(t *testing.T) {
	a, err := NewFileAdapter(t.TempDir())
	require.NoError(t, err)

	value, err := a.GetItem("missing")
	require.NoError(t, err)
	assert.Equal(t, "", value)

	// Keys with characters unsafe for file names still round-trip
	key := "moments-store:user/123"
	require.NoError(t, a.SetItem(key, `{"version":1}`))

	value, err = a.GetItem(key)
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, value)

	require.NoError(t, a.SetItem(key, "overwritten"))
	value, err = a.GetItem(key)
	require.NoError(t, err)
	assert.Equal(t, "overwritten", value)

	require.NoError(t, a.RemoveItem(key))
	value, err = a.GetItem(key)
	require.NoError(t, err)
	assert.Equal(t, "", value)

	require.NoError(t, a.RemoveItem(key))
}
