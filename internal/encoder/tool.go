package encoder

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
)

// Atomic counter for unique temp file names across goroutines.
var tempCounter atomic.Int64

// ToolEncoder encodes by shelling out to an external command-line encoder.
// The source is handed over as a lossless PNG temp file. This avoids CGO
// while still getting real WebP/AVIF output.
type ToolEncoder struct {
	format string
	ext    string
	tool   string
	hint   string
	args   func(quality int, src, dst string) []string

	once sync.Once
	path string
}

// NewWebPEncoder uses cwebp. Install: brew install webp / apt install webp
func NewWebPEncoder() *ToolEncoder {
	return &ToolEncoder{
		format: "webp",
		ext:    "webp",
		tool:   "cwebp",
		hint:   "brew install webp",
		args: func(q int, src, dst string) []string {
			return []string{"-q", strconv.Itoa(q), "-m", "6", "-mt", "-quiet", src, "-o", dst}
		},
	}
}

// NewAVIFEncoder uses avifenc. Install: brew install libavif / apt install libavif-bin
func NewAVIFEncoder() *ToolEncoder {
	return &ToolEncoder{
		format: "avif",
		ext:    "avif",
		tool:   "avifenc",
		hint:   "brew install libavif",
		args: func(q int, src, dst string) []string {
			// avifenc quantizer: 0 = best, 63 = worst.
			quant := strconv.Itoa(63 - q*63/100)
			return []string{"--min", quant, "--max", quant, "--speed", "6", "-j", "all", src, dst}
		},
	}
}

func (e *ToolEncoder) Format() string    { return e.format }
func (e *ToolEncoder) Extension() string { return e.ext }

func (e *ToolEncoder) Available() bool {
	e.once.Do(func() {
		if path, err := exec.LookPath(e.tool); err == nil {
			e.path = path
		}
	})
	return e.path != ""
}

func (e *ToolEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	if !e.Available() {
		return nil, fmt.Errorf("%s not found in PATH; install with: %s", e.tool, e.hint)
	}
	quality = clampQuality(quality, 0)

	id := tempCounter.Add(1)
	srcPath, err := writeTempPNG(img, fmt.Sprintf("imgfit_%s_src_%d_*.png", e.format, id))
	if err != nil {
		return nil, err
	}
	defer os.Remove(srcPath)

	dstFile, err := os.CreateTemp("", fmt.Sprintf("imgfit_%s_dst_%d_*.%s", e.format, id, e.ext))
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}
	dstPath := dstFile.Name()
	dstFile.Close()
	defer os.Remove(dstPath)

	cmd := exec.Command(e.path, e.args(quality, srcPath, dstPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", e.tool, err, string(out))
	}
	return os.ReadFile(dstPath)
}

func writeTempPNG(img image.Image, pattern string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("encode temp png: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp: %w", err)
	}
	return f.Name(), nil
}
