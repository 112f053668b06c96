// Package preprocess normalizes page images before recognition.
//
// The chain is grayscale, then sharpen, then contrast boost. It is
// deterministic: the same input always yields the same output. It is not
// idempotent; running it twice sharpens and boosts twice, so callers must
// apply it exactly once per page.
package preprocess

import (
	"image"

	"github.com/disintegration/imaging"
)

// Pipeline holds the preprocessing parameters.
type Pipeline struct {
	// Enabled short-circuits Apply when false.
	Enabled bool
	// SharpenSigma controls the sharpening radius.
	SharpenSigma float64
	// Contrast is a percentage in (-100, 100]; 50 multiplies contrast 1.5x.
	Contrast float64
}

// Default returns the standard document pipeline.
func Default() Pipeline {
	return Pipeline{
		Enabled:      true,
		SharpenSigma: 1.0,
		Contrast:     50,
	}
}

// Disabled returns a pipeline whose Apply is the identity.
func Disabled() Pipeline {
	return Pipeline{}
}

// Apply runs the chain on img and returns a new image. The input is never
// modified.
func (p Pipeline) Apply(img image.Image) image.Image {
	if !p.Enabled {
		return img
	}
	out := imaging.Grayscale(img)
	out = imaging.Sharpen(out, p.SharpenSigma)
	out = imaging.AdjustContrast(out, p.Contrast)
	return out
}
