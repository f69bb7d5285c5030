package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TRIPPLANNER_BACK-END/internal/config"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	key := "attachments/ticket.pdf"
	require.NoError(t, store.Save(ctx, key, "application/pdf", strings.NewReader("boarding pass")))

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "boarding pass", string(data))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, key), "deleting twice is fine")
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalStore(filepath.Join(root, "media"))
	require.NoError(t, err)

	for _, key := range []string{"../escape.txt", "photos/../../escape.txt", "/etc/passwd", `..\escape.txt`, ""} {
		err := store.Save(ctx, key, "text/plain", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}

	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestNewKeyKeepsExtension(t *testing.T) {
	key := NewKey("photos", `C:\Users\me\Beach.JPG`)

	assert.True(t, strings.HasPrefix(key, "photos/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, NewKey("photos", "Beach.JPG"))
}

func TestNewSelectsLocal(t *testing.T) {
	s, err := New(context.Background(), config.StorageConfig{Provider: "local", LocalRoot: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, s)

	_, err = New(context.Background(), config.StorageConfig{Provider: "ftp"})
	assert.Error(t, err)
}
