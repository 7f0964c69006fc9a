package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoragePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "storage.json")

	fs, err := NewFileStorage(path)
	require.NoError(t, err)

	require.NoError(t, fs.Set(ctx, KeyToken, "abc"))
	require.NoError(t, fs.Set(ctx, KeyUser, `{"id":"u-1"}`))
	require.NoError(t, fs.Remove(ctx, KeyUser))
	require.NoError(t, fs.Remove(ctx, "missing"))

	reopened, err := NewFileStorage(path)
	require.NoError(t, err)

	token, err := reopened.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	user, err := reopened.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.Empty(t, user)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStorageRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStorage(path)
	assert.Error(t, err)
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStorage()

	value, err := ms.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, ms.Set(ctx, KeyToken, "t"))
	value, _ = ms.Get(ctx, KeyToken)
	assert.Equal(t, "t", value)

	require.NoError(t, ms.Remove(ctx, KeyToken))
	value, _ = ms.Get(ctx, KeyToken)
	assert.Empty(t, value)
}
