package encoder

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand"
	"testing"

	"github.com/AnyUserName/imgfit-cli/internal/fit"
)

func noisyImage(w, h int, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

func TestJPEGEncoder_RoundTrip(t *testing.T) {
	enc := &JPEGEncoder{}
	data, err := enc.Encode(noisyImage(64, 48, 1), 80)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 48 {
		t.Errorf("dimensions: got %dx%d, want 64x48", cfg.Width, cfg.Height)
	}
}

func TestJPEGEncoder_QualityFloor(t *testing.T) {
	enc := &JPEGEncoder{}
	img := noisyImage(64, 64, 2)

	zero, err := enc.Encode(img, 0)
	if err != nil {
		t.Fatalf("encode q=0: %v", err)
	}
	one, err := enc.Encode(img, 1)
	if err != nil {
		t.Fatalf("encode q=1: %v", err)
	}
	if !bytes.Equal(zero, one) {
		t.Error("quality 0 should encode the same as quality 1")
	}

	high, err := enc.Encode(img, 100)
	if err != nil {
		t.Fatalf("encode q=100: %v", err)
	}
	if len(high) <= len(one) {
		t.Errorf("q=100 (%d bytes) not larger than q=1 (%d bytes)", len(high), len(one))
	}
}

func TestJPEGEncoder_FlattensAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	// Fully transparent black must come out white, not black.
	data, err := (&JPEGEncoder{}).Encode(img, 95)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	r, g, b, _ := out.At(8, 8).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("expected near-white pixel, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestHasAlpha(t *testing.T) {
	opaque := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			opaque.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	translucent := image.NewRGBA(image.Rect(0, 0, 4, 4))
	translucent.SetRGBA(1, 1, color.RGBA{R: 128, A: 128})

	cases := []struct {
		name string
		img  image.Image
		want bool
	}{
		{"opaque nrgba", opaque, false},
		{"translucent rgba", translucent, true},
		{"ycbcr", image.NewYCbCr(image.Rect(0, 0, 8, 8), image.YCbCrSubsampleRatio420), false},
		{"gray", image.NewGray(image.Rect(0, 0, 8, 8)), false},
		{"empty nrgba", image.NewNRGBA(image.Rect(0, 0, 4, 4)), true},
	}
	for _, c := range cases {
		if got := HasAlpha(c.img); got != c.want {
			t.Errorf("%s: HasAlpha = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestCodec_FitsRealJPEG(t *testing.T) {
	img := noisyImage(256, 256, 3)
	codec := NewCodec(&JPEGEncoder{})

	first, err := codec.Encode(img, 100)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	ceiling := len(first) / 1024 / 4
	if ceiling < 1 {
		t.Fatalf("fixture too small: %d bytes", len(first))
	}

	res, err := fit.New(codec, nil).Compress(img, fit.Options{CeilingKB: ceiling})
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if res.Attempts < 2 {
		t.Errorf("expected at least one re-encode, got %d attempts", res.Attempts)
	}
	if !res.Fits(ceiling) && res.Quality != fit.FloorQuality {
		t.Errorf("result %d KB over ceiling %d KB at quality %d", res.SizeKB(), ceiling, res.Quality)
	}
	if _, err := codec.Decode(bytes.NewReader(res.Data)); err != nil {
		t.Errorf("output does not decode: %v", err)
	}
}

type stubEncoder struct {
	format    string
	available bool
}

func (s *stubEncoder) Format() string                          { return s.format }
func (s *stubEncoder) Extension() string                       { return s.format }
func (s *stubEncoder) Available() bool                         { return s.available }
func (s *stubEncoder) Encode(image.Image, int) ([]byte, error) { return []byte(s.format), nil }

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistryWith(
		&stubEncoder{format: "webp", available: false},
		&stubEncoder{format: "avif", available: true},
		&JPEGEncoder{},
	)

	if got := r.Available(); len(got) != 2 || got[0] != "avif" || got[1] != "jpeg" {
		t.Errorf("available: got %v", got)
	}

	enc, exact, err := r.Resolve("webp")
	if err != nil || exact || enc.Format() != "jpeg" {
		t.Errorf("webp should fall back to jpeg, got %v exact=%v err=%v", enc, exact, err)
	}

	enc, exact, err = r.Resolve("JPG")
	if err != nil || !exact || enc.Format() != "jpeg" {
		t.Errorf("JPG alias: got %v exact=%v err=%v", enc, exact, err)
	}

	empty := NewRegistryWith()
	if _, _, err := empty.Resolve("webp"); err == nil {
		t.Error("expected error from empty registry")
	}
	if empty.String() != "no encoders available" {
		t.Errorf("string: %q", empty.String())
	}
}

func TestToolEncoder_Unavailable(t *testing.T) {
	enc := NewWebPEncoder()
	enc.tool = "imgfit-definitely-missing-tool"
	if enc.Available() {
		t.Skip("tool unexpectedly present")
	}
	if _, err := enc.Encode(noisyImage(4, 4, 4), 50); err == nil {
		t.Error("expected error when tool is missing")
	}
}
