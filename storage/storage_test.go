package storage

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalWriteRead(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewLocal(dir)
	require.NoError(t, err)

	data := []byte("snapshot payload")
	require.NoError(t, backend.Write("snap.bin", bytes.NewReader(data), int64(len(data))))

	r, err := backend.Read("snap.bin")
	require.NoError(t, err)
	defer r.Close()
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLocalReadMissing(t *testing.T) {
	backend, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	_, err = backend.Read("missing.bin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNoopDiscardsWritesAndNeverReads(t *testing.T) {
	var n Noop
	require.NoError(t, n.Write("anything", bytes.NewReader([]byte("x")), 1))
	_, err := n.Read("anything")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalWriteCreatesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewLocal(dir)
	require.NoError(t, err)
	require.NoError(t, backend.Write("nested/file.bin", bytes.NewReader([]byte("a")), 1))
	r, err := backend.Read("nested/file.bin")
	require.NoError(t, err)
	defer r.Close()
	assert.FileExists(t, filepath.Join(dir, "nested", "file.bin"))
}
