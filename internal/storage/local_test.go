package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	t.Run("should report size and sniffed type after put", func(t *testing.T) {
		req := require.New(t)
		info, err := store.Put(ctx, "chat_files/a/b/image.bin", bytes.NewReader(pngHeader), int64(len(pngHeader)), "application/octet-stream")
		req.NoError(err)
		req.Equal(int64(len(pngHeader)), info.Size)
		req.Equal("image/png", info.ContentType)

		rc, got, err := store.Get(ctx, "chat_files/a/b/image.bin")
		req.NoError(err)
		defer rc.Close()
		body, err := io.ReadAll(rc)
		req.NoError(err)
		req.Equal(pngHeader, body)
		req.Equal(info, got)
	})

	t.Run("should overwrite existing objects", func(t *testing.T) {
		req := require.New(t)
		_, err := store.Put(ctx, "k/notes.txt", bytes.NewReader([]byte("first")), 5, "")
		req.NoError(err)
		info, err := store.Put(ctx, "k/notes.txt", bytes.NewReader([]byte("second version")), -1, "")
		req.NoError(err)
		req.EqualValues(14, info.Size)
		req.Contains(info.ContentType, "text/plain")
	})

	t.Run("should map missing keys to ErrObjectNotFound", func(t *testing.T) {
		req := require.New(t)
		_, err := store.Stat(ctx, "missing/key")
		req.ErrorIs(err, ErrObjectNotFound)
		_, _, err = store.Get(ctx, "missing/key")
		req.ErrorIs(err, ErrObjectNotFound)
	})

	t.Run("should delete idempotently", func(t *testing.T) {
		req := require.New(t)
		_, err := store.Put(ctx, "gone.txt", bytes.NewReader([]byte("x")), 1, "")
		req.NoError(err)
		req.NoError(store.Delete(ctx, "gone.txt"))
		req.NoError(store.Delete(ctx, "gone.txt"))
		_, err = store.Stat(ctx, "gone.txt")
		req.ErrorIs(err, ErrObjectNotFound)
	})

	t.Run("should reject keys outside the root", func(t *testing.T) {
		req := require.New(t)
		_, err := store.Put(ctx, "../escape.txt", bytes.NewReader([]byte("x")), 1, "")
		req.Error(err)
	})
}
