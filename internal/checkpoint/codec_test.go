package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLoad_RoundTripsString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result")
	require.NoError(t, Store(path, "foo\n"))

	assert.True(t, Exists(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "foo\n", got)
}

func TestStoreLoad_RoundTripsMapAndSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result")
	value := map[string]any{
		"count": 3,
		"items": []any{"a", "b", "c"},
	}
	require.NoError(t, Store(path, value))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, got.(map[string]any)["count"])
	assert.Equal(t, []any{"a", "b", "c"}, got.(map[string]any)["items"])
}

func TestExists_FalseForMissingFile(t *testing.T) {
	assert.False(t, Exists(filepath.Join(t.TempDir(), "nope")))
}

func TestExists_FalseForEmptyPath(t *testing.T) {
	assert.False(t, Exists(""))
}

func TestLoad_MissingFileReturnsPathError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestLoad_UndecodableFileReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad")
	require.NoError(t, os.WriteFile(path, []byte("[unterminated"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.False(t, os.IsNotExist(err))
}

func TestStore_CreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "result")
	require.NoError(t, Store(path, 42))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}
