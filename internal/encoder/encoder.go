package encoder

import (
	"image"
)

// Encoder encodes an image to a lossy format.
type Encoder interface {
	// Format returns the output format name (e.g. "jpeg", "webp", "avif").
	Format() string

	// Encode converts the image to bytes at the given quality (0-100).
	// Encoders clamp the value into whatever range their codec accepts.
	Encode(img image.Image, quality int) ([]byte, error)

	// Available returns true if the encoder is ready to use.
	// External encoders (cwebp, avifenc) may not be installed.
	Available() bool

	// Extension returns the file extension without dot.
	Extension() string
}

// Codec pairs the shared decoder with one Encoder, which is the shape the
// size-bounded loop in package fit consumes.
type Codec struct {
	Encoder
}

// NewCodec wraps enc.
func NewCodec(enc Encoder) Codec { return Codec{Encoder: enc} }
