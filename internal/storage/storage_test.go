package storage

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
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestLocalStoragePutDelete(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocalStorage(root, "/media")
	require.NoError(t, err)

	key, err := s.Put(ctx, "posts_photo/a.jpg", []byte("data"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "posts_photo/a.jpg", key)
	assert.Equal(t, "/media/posts_photo/a.jpg", s.URL(key))

	got, err := os.ReadFile(filepath.Join(root, "posts_photo", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))

	require.NoError(t, s.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(root, "posts_photo", "a.jpg"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, key))
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/media/")
	require.NoError(t, err)

	key, err := s.Put(context.Background(), "../../etc/passwd", []byte("x"), "")
	require.NoError(t, err)
	assert.Equal(t, "etc/passwd", key)

	_, err = s.Put(context.Background(), "", []byte("x"), "")
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.Equal(t, "", s.URL(""))
}

func TestNewKey(t *testing.T) {
	key := NewKey(ProfilePhotosFolder, ".jpg")
	assert.True(t, strings.HasPrefix(key, "profiles_photo/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, NewKey(ProfilePhotosFolder, ".jpg"))
}

func TestPrepareImage(t *testing.T) {
	out, err := PrepareImage(pngBytes(t, 800, 200), 400)
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())

	small, err := PrepareImage(pngBytes(t, 50, 40), 400)
	require.NoError(t, err)
	img, _, err = image.Decode(bytes.NewReader(small))
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())

	_, err = PrepareImage([]byte("not an image"), 400)
	assert.Error(t, err)
}

func TestPrepareImageRejectsHugeDimensions(t *testing.T) {
	// A flat 7000x7000 image compresses to well under the byte limit.
	img := image.NewGray(image.Rect(0, 0, 7000, 7000))
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	require.Less(t, buf.Len(), MaxUploadSize)

	_, err := PrepareImage(buf.Bytes(), PostImageBound)
	assert.ErrorIs(t, err, ErrImageTooManyPixels)
}
