//go:build ignore

// gen_fixtures creates test images for the imgfit smoke test: a camera-sized
// noisy photo that must be downsampled and stepped down, a screenshot, a
// transparent logo and a thumbnail that is already under budget.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	must(os.MkdirAll(filepath.Join(dir, "DCIM"), 0o755))

	writeJPEG(filepath.Join(dir, "DCIM", "IMG_0001.jpg"), photo(3264, 2448, 1), 95)
	writeJPEG(filepath.Join(dir, "DCIM", "IMG_0002.jpg"), photo(2448, 3264, 2), 95)
	writePNG(filepath.Join(dir, "screenshot.png"), photo(1080, 1920, 3))
	writePNG(filepath.Join(dir, "logo.png"), alphaGradient(256, 256))
	writeJPEG(filepath.Join(dir, "thumb.jpg"), photo(96, 96, 4), 30)

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 5 fixtures in %s\n", dir)
}

// photo is a gradient with per-pixel noise, which JPEG cannot compress well.
func photo(w, h int, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := uint8(rng.Intn(48))
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x*200/w) + n,
				G: uint8(y*200/h) + n,
				B: 96 + n,
				A: 255,
			})
		}
	}
	return img
}

func alphaGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: 220, G: 60, B: 30,
				A: uint8(x * 255 / w),
			})
		}
	}
	return img
}

func writePNG(path string, img image.Image) {
	f, err := os.Create(path)
	must(err)
	defer f.Close()
	must(png.Encode(f, img))
}

func writeJPEG(path string, img image.Image, quality int) {
	f, err := os.Create(path)
	must(err)
	defer f.Close()
	must(jpeg.Encode(f, img, &jpeg.Options{Quality: quality}))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
