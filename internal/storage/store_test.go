package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndFetch(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	data := []byte("Policy No,Premium\nPOL-001,100.50\n")
	hash, duplicate, err := store.Save(data)
	require.NoError(t, err)
	assert.False(t, duplicate)
	assert.Len(t, hash, 64)

	got, err := store.Fetch(hash)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestStore_SaveDetectsDuplicate(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	data := []byte("same bytes")
	first, _, err := store.Save(data)
	require.NoError(t, err)

	second, duplicate, err := store.Save(data)
	require.NoError(t, err)
	assert.True(t, duplicate)
	assert.Equal(t, first, second)
}

func TestStore_FetchUnknownHash(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Fetch("0000000000000000000000000000000000000000000000000000000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Exists(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	hash, _, err := store.Save([]byte("x"))
	require.NoError(t, err)
	assert.True(t, store.Exists(hash))
	assert.False(t, store.Exists("missing"))
}
