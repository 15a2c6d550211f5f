package storage

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	path, written, err := store.SaveStream("samples/a/img.png", bytes.NewReader([]byte("png-bytes")))
	require.NoError(t, err)
	assert.Equal(t, "samples/a/img.png", path)
	assert.Equal(t, int64(9), written)

	file, err := store.Open(path)
	require.NoError(t, err)
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(path))
	require.NoError(t, store.Delete(path))
	_, err = store.Open(path)
	assert.Error(t, err)
}

func TestLocalStorageStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStorage(root)
	require.NoError(t, err)

	resolved, err := store.resolve("../../etc/passwd")
	require.NoError(t, err)
	assert.Contains(t, resolved, root)
}
