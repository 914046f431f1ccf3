package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
)

const (
	MaxUploadSize     = 5 << 20
	PostImageBound    = 1200
	ProfilePhotoBound = 400
	// MaxImagePixels caps decoded size; compressed files can be tiny and still decode huge.
	MaxImagePixels = 40_000_000
)

var (
	ErrImageTooLarge      = errors.New("image exceeds 5MB")
	ErrImageTooManyPixels = errors.New("image dimensions are too large")
)

// PrepareImage decodes an upload, fits it into a bound x bound box and re-encodes it as JPEG.
// Images already inside the box keep their size.
func PrepareImage(data []byte, bound int) ([]byte, error) {
	if len(data) > MaxUploadSize {
		return nil, ErrImageTooLarge
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("not an image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, ErrImageTooManyPixels
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("not an image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > bound || b.Dy() > bound {
		img = imaging.Fit(img, bound, bound, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
