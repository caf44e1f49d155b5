package filestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("abc_feed.csv", []byte("data")))

	data, err := store.Load("abc_feed.csv")
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestSaveIsWriteOnce(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("key", []byte("first")))
	assert.ErrorIs(t, store.Save("key", []byte("second")), ErrKeyExists)

	data, err := store.Load("key")
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestLoadMissingKey(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestDeleteMissingKeyIsNoop(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete("missing"))
}

func TestKeysAreConfinedToDirectory(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("../escape", []byte("x")))

	data, err := store.Load("../escape")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}
