package encoder

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

// JPEGEncoder encodes images to JPEG. It is always available.
type JPEGEncoder struct{}

func (e *JPEGEncoder) Format() string    { return "jpeg" }
func (e *JPEGEncoder) Extension() string { return "jpg" }
func (e *JPEGEncoder) Available() bool   { return true }

// Encode writes img as baseline JPEG. JPEG has no quality 0, so the floor
// maps to 1. Transparent pixels are composited onto white first.
func (e *JPEGEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	quality = clampQuality(quality, 1)

	if HasAlpha(img) {
		img = Flatten(img)
	}

	var buf bytes.Buffer
	buf.Grow(64 * 1024)

	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func clampQuality(q, min int) int {
	if q < min {
		return min
	}
	if q > 100 {
		return 100
	}
	return q
}
