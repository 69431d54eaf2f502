package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStoreSetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("embedding.model", "all-MiniLM-L6-v2"))
	require.NoError(t, store.Set("retrieval.top_n", 3))
	require.NoError(t, store.Set("search.min_similarity", 0.25))
	require.NoError(t, store.Set("verbose", true))

	assert.Equal(t, "all-MiniLM-L6-v2", store.GetString("embedding.model"))
	assert.Equal(t, 3, store.GetInt("retrieval.top_n"))
	assert.Equal(t, 0.25, store.GetFloat("search.min_similarity"))
	assert.True(t, store.GetBool("verbose"))
}

func TestConfigStoreMissingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_, ok := store.Get("nope")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("nope"))
	assert.Zero(t, store.GetInt("nope"))
	assert.Zero(t, store.GetFloat("nope"))
	assert.False(t, store.GetBool("nope"))
}

func TestConfigStoreTypeMismatches(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("key", "a string"))
	assert.Zero(t, store.GetInt("key"))
	assert.Zero(t, store.GetFloat("key"))
	assert.False(t, store.GetBool("key"))
}

func TestConfigStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("generation.model", "llama-3.3-70b-versatile"))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "llama-3.3-70b-versatile", reloaded.GetString("generation.model"))
}

func TestConfigStoreFlattensNestedTOML(t *testing.T) {
	dir := t.TempDir()

	toml := "[embedding]\nmodel = \"bge-base\"\ndimensions = 768\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "bge-base", store.GetString("embedding.model"))
	assert.Equal(t, 768, store.GetInt("embedding.dimensions"))
}

func TestConfigStorePath(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}
