// Package sample shrinks images by an integer rate derived from their
// shortest side, so large camera shots are reduced before quality stepping.
package sample

import (
	"image"

	"github.com/disintegration/imaging"
)

// Base sizes for the shortest side. An image is only reduced once its
// shortest side is at least twice the base.
const (
	Base160 = 160
	Base320 = 320
	Base480 = 480
)

// Rate returns the integer divisor for a w×h image: min(w,h)/base, never
// below 1. A non-positive base disables sampling.
func Rate(w, h, base int) int {
	if base <= 0 {
		return 1
	}
	short := w
	if h < short {
		short = h
	}
	rate := short / base
	if rate <= 0 {
		rate = 1
	}
	return rate
}

// Size returns the dimensions after dividing by rate, each at least 1.
func Size(w, h, rate int) (int, int) {
	if rate <= 1 {
		return w, h
	}
	return max(w/rate, 1), max(h/rate, 1)
}

// Downsample returns img reduced by Rate. When the rate is 1 the original
// image is returned as is, never copied.
func Downsample(img image.Image, base int) image.Image {
	b := img.Bounds()
	rate := Rate(b.Dx(), b.Dy(), base)
	if rate == 1 {
		return img
	}
	w, h := Size(b.Dx(), b.Dy(), rate)
	return imaging.Resize(img, w, h, imaging.Box)
}
