package blob

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	buf := bytes.NewBuffer(nil)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestDiskStoreSave(t *testing.T) {
	t.Run("persists original and thumbnail", func(t *testing.T) {
		root := t.TempDir()
		store := NewDiskStore(root, "/media", 5*1024*1024)

		stored, err := store.Save(context.Background(), Upload{
			Filename: "shot.png",
			Content:  pngBytes(t, 32, 32),
		})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(stored.PublicID, ".png"))
		assert.True(t, strings.HasPrefix(stored.URL, "/media/"))
		assert.Contains(t, stored.ThumbnailURL, "_thumb.webp")

		_, statErr := os.Stat(filepath.Join(root, stored.PublicID))
		assert.NoError(t, statErr)
		thumb := strings.TrimSuffix(stored.PublicID, ".png") + "_thumb.webp"
		_, statErr = os.Stat(filepath.Join(root, thumb))
		assert.NoError(t, statErr)
	})

	t.Run("rejects oversized uploads", func(t *testing.T) {
		store := NewDiskStore(t.TempDir(), "/media", 16)
		_, err := store.Save(context.Background(), Upload{Content: pngBytes(t, 8, 8)})
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("rejects non-image payloads", func(t *testing.T) {
		store := NewDiskStore(t.TempDir(), "/media", 5*1024*1024)
		_, err := store.Save(context.Background(), Upload{Content: []byte("plain text, not an image")})
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("rejects empty uploads", func(t *testing.T) {
		store := NewDiskStore(t.TempDir(), "/media", 5*1024*1024)
		_, err := store.Save(context.Background(), Upload{})
		assert.ErrorIs(t, err, ErrEmptyFile)
	})
}

func TestDiskStoreDelete(t *testing.T) {
	t.Run("removes original and thumbnail", func(t *testing.T) {
		root := t.TempDir()
		store := NewDiskStore(root, "/media", 5*1024*1024)

		stored, err := store.Save(context.Background(), Upload{Content: pngBytes(t, 16, 16)})
		require.NoError(t, err)

		require.NoError(t, store.Delete(context.Background(), stored.PublicID))
		_, statErr := os.Stat(filepath.Join(root, stored.PublicID))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("unknown public ID is not an error", func(t *testing.T) {
		store := NewDiskStore(t.TempDir(), "/media", 5*1024*1024)
		assert.NoError(t, store.Delete(context.Background(), "nope.png"))
	})

	t.Run("path separators never reach the filesystem", func(t *testing.T) {
		store := NewDiskStore(t.TempDir(), "/media", 5*1024*1024)
		assert.NoError(t, store.Delete(context.Background(), "../escape.png"))
	})
}
