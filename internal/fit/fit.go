// Package fit re-encodes an image at decreasing quality until the encoded
// size fits under a ceiling.
//
// Sizes are compared in whole kilobytes (len/1024), so a 100 KB ceiling
// accepts anything up to 103423 bytes. The bound is best-effort: once the
// quality floor is reached the last encoding is returned even if it is still
// too large.
package fit

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/AnyUserName/imgfit-cli/internal/logger"
)

const (
	DefaultStartQuality = 100
	DefaultStep         = 10

	// FloorQuality is the last quality attempted.
	FloorQuality = 0
)

var (
	// ErrInvalidInput is returned before any encode when the image or the
	// options are unusable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCodec wraps decode failures and failures of the first encode.
	ErrCodec = errors.New("codec failure")
)

// Codec is the decode/encode capability the loop runs on.
type Codec interface {
	Decode(r io.Reader) (image.Image, error)
	// Encode returns img encoded at quality in [0,100].
	Encode(img image.Image, quality int) ([]byte, error)
}

// Options controls a single Compress call.
type Options struct {
	CeilingKB    int
	StartQuality int // 0 = DefaultStartQuality
	Step         int // 0 = DefaultStep
}

func (o Options) withDefaults() Options {
	if o.StartQuality == 0 {
		o.StartQuality = DefaultStartQuality
	}
	if o.Step == 0 {
		o.Step = DefaultStep
	}
	return o
}

// Validate checks the option preconditions after defaults are applied.
func (o Options) Validate() error {
	o = o.withDefaults()
	switch {
	case o.CeilingKB <= 0:
		return fmt.Errorf("%w: ceiling must be positive, got %d KB", ErrInvalidInput, o.CeilingKB)
	case o.StartQuality < 0 || o.StartQuality > 100:
		return fmt.Errorf("%w: start quality must be in 1..100, got %d", ErrInvalidInput, o.StartQuality)
	case o.Step < 0:
		return fmt.Errorf("%w: step must be positive, got %d", ErrInvalidInput, o.Step)
	}
	return nil
}

// MaxAttempts is the upper bound on encodes for these options.
func (o Options) MaxAttempts() int {
	o = o.withDefaults()
	return (o.StartQuality+o.Step-1)/o.Step + 1
}

// Result is the outcome of a Compress call.
type Result struct {
	Data     []byte
	Quality  int // quality of Data
	Attempts int // number of encodes performed
}

// SizeKB is the encoded size in whole kilobytes.
func (r Result) SizeKB() int { return sizeKB(r.Data) }

// Fits reports whether the result is within ceilingKB.
func (r Result) Fits(ceilingKB int) bool { return r.SizeKB() <= ceilingKB }

func sizeKB(b []byte) int { return len(b) / 1024 }

// Encoder runs the size-bounded loop over a Codec.
// It holds no per-call state and may be shared between goroutines.
type Encoder struct {
	codec Codec
	log   *logger.Logger
}

// New creates an Encoder. A nil log discards output.
func New(codec Codec, log *logger.Logger) *Encoder {
	if log == nil {
		log = logger.Nop()
	}
	return &Encoder{codec: codec, log: log}
}

// Compress encodes img at opts.StartQuality and keeps lowering the quality
// by opts.Step until the encoding fits opts.CeilingKB or the floor quality
// has been tried. img is only read.
func (e *Encoder) Compress(img image.Image, opts Options) (Result, error) {
	if img == nil || img.Bounds().Empty() {
		return Result{}, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	opts = opts.withDefaults()

	q := opts.StartQuality
	data, err := e.codec.Encode(img, q)
	if err != nil {
		return Result{}, fmt.Errorf("%w: encode at quality %d: %v", ErrCodec, q, err)
	}
	res := Result{Data: data, Quality: q, Attempts: 1}
	e.log.Debug().Int("quality", q).Int("bytes", len(data)).Msg("encoded")

	for sizeKB(res.Data) > opts.CeilingKB && q > FloorQuality {
		q -= opts.Step
		if q < FloorQuality {
			q = FloorQuality
		}
		data, err := e.codec.Encode(img, q)
		if err != nil {
			e.log.Warn().Err(err).Int("quality", q).Msg("re-encode failed, keeping previous result")
			break
		}
		res = Result{Data: data, Quality: q, Attempts: res.Attempts + 1}
		e.log.Debug().Int("quality", q).Int("bytes", len(data)).Msg("encoded")
	}

	if !res.Fits(opts.CeilingKB) {
		e.log.Debug().
			Int("ceiling_kb", opts.CeilingKB).
			Int("size_kb", res.SizeKB()).
			Msg("quality floor reached above ceiling")
	}
	return res, nil
}

// Decode turns raw bytes into an image through the codec.
func (e *Encoder) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: zero-byte image", ErrInvalidInput)
	}
	img, err := e.codec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrCodec, err)
	}
	return img, nil
}
