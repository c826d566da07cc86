package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/integration/storage/file"
)

func openedStore(t *testing.T) (*file.Store, string) {
	t.Helper()

	root := t.TempDir()
	store := file.NewStore()
	require.NoError(t, store.Open(context.Background(), root, "app"))
	return store, filepath.Join(root, "app")
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store, _ := openedStore(t)
	ctx := context.Background()

	data, err := store.Read(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, data)

	require.NoError(t, store.Write(ctx, "k1", `{"payload":1}`))

	data, err = store.Read(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, `{"payload":1}`, data)

	// Overwrite.
	require.NoError(t, store.Write(ctx, "k1", `{"payload":2}`))
	data, err = store.Read(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, `{"payload":2}`, data)

	destroyed, err := store.Destroy(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, destroyed)

	destroyed, err = store.Destroy(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, destroyed)
}

func TestStore_Permissions(t *testing.T) {
	t.Parallel()

	store, dir := openedStore(t)
	require.NoError(t, store.Write(context.Background(), "k1", "data"))

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())

	fileInfo, err := os.Stat(filepath.Join(dir, "sess_k1"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fileInfo.Mode().Perm())
}

func TestStore_RejectsHostileKeys(t *testing.T) {
	t.Parallel()

	store, _ := openedStore(t)
	ctx := context.Background()

	for _, key := range []string{"", "../escape", "a/b", "a\x00b", "k.1"} {
		err := store.Write(ctx, key, "data")
		assert.ErrorIs(t, err, file.ErrInvalidKey, "key %q", key)

		_, err = store.Read(ctx, key)
		assert.ErrorIs(t, err, file.ErrInvalidKey, "key %q", key)
	}
}

func TestStore_RequiresOpen(t *testing.T) {
	t.Parallel()

	store := file.NewStore()
	ctx := context.Background()

	_, err := store.Read(ctx, "k1")
	assert.ErrorIs(t, err, file.ErrNotOpened)

	_, err = store.GC(ctx, time.Hour)
	assert.ErrorIs(t, err, file.ErrNotOpened)
}

func TestStore_GC(t *testing.T) {
	t.Parallel()

	store, dir := openedStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "old", "stale"))
	require.NoError(t, store.Write(ctx, "fresh", "live"))

	// Age one payload past the cutoff by rewinding its mtime.
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "sess_old"), past, past))

	n, err := store.GC(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	data, err := store.Read(ctx, "old")
	require.NoError(t, err)
	assert.Empty(t, data)

	data, err = store.Read(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "live", data)
}

func TestStore_GCIgnoresForeignFiles(t *testing.T) {
	t.Parallel()

	store, dir := openedStore(t)
	ctx := context.Background()

	past := time.Now().Add(-2 * time.Hour)
	foreign := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(foreign, []byte("keep"), 0o600))
	require.NoError(t, os.Chtimes(foreign, past, past))

	n, err := store.GC(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = os.Stat(foreign)
	assert.NoError(t, err)
}
