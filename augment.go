package braintumor

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/disintegration/imaging"
)

// Augmentation pipeline defaults. Rotation is a fraction of a full turn,
// zoom a fraction of the image size, contrast a percentage.
const (
	DefaultRotationFactor = 0.1
	DefaultZoomFactor     = 0.1
	DefaultContrastFactor = 20.0

	// DarkArtifactThreshold: channel values below this are clamped to zero
	// after augmentation, to suppress interpolation artifacts near the
	// constant-fill borders.
	DarkArtifactThreshold = 5
)

// fillColor is used for the regions rotation and zoom expose outside the
// original frame.
var fillColor = color.NRGBA{R: 0, G: 0, B: 0, A: 0xFF}

// Pipeline applies a fixed, ordered composition of randomized transforms to
// normalized images: horizontal/vertical flip, rotation, zoom and contrast
// perturbation, followed by dark-artifact suppression.
//
// Every Apply call draws fresh randomness from the pipeline's generator, so
// repeated calls on the same image yield independently augmented copies.
// A Pipeline is not safe for concurrent use; create one per goroutine.
type Pipeline struct {
	size           int
	rotationFactor float64
	zoomFactor     float64
	contrastFactor float64
	rng            *rand.Rand
}

// NewPipeline creates an augmentation Pipeline for size x size images, with
// the default transform amounts, drawing randomness from rng.
func NewPipeline(size int, rng *rand.Rand) *Pipeline {
	return &Pipeline{
		size:           size,
		rotationFactor: DefaultRotationFactor,
		zoomFactor:     DefaultZoomFactor,
		contrastFactor: DefaultContrastFactor,
		rng:            rng,
	}
}

// Apply runs the augmentation pipeline once and returns a new image of the
// same size. The input is not modified.
func (p *Pipeline) Apply(img image.Image) *image.NRGBA {
	out := p.flip(img)
	out = p.rotate(out)
	out = p.zoom(out)
	out = p.contrast(out)
	SuppressDarkArtifacts(out, DarkArtifactThreshold)
	return out
}

// flip mirrors the image horizontally and vertically, each axis
// independently with probability 1/2.
func (p *Pipeline) flip(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	if p.rng.Intn(2) == 1 {
		out = imaging.FlipH(out)
	}
	if p.rng.Intn(2) == 1 {
		out = imaging.FlipV(out)
	}
	return out
}

// rotate applies a uniform random rotation within ±rotationFactor of a full
// turn. The rotated image is rendered on a larger canvas with constant black
// fill and center-cropped back to the original frame, which is equivalent to
// rotating about the image center.
func (p *Pipeline) rotate(img *image.NRGBA) *image.NRGBA {
	if p.rotationFactor <= 0 {
		return img
	}
	angle := (2*p.rng.Float64() - 1) * p.rotationFactor * 360
	out := imaging.Rotate(img, angle, fillColor)
	return imaging.CropCenter(out, p.size, p.size)
}

// zoom scales the image by a uniform random factor within ±zoomFactor.
// Zooming in crops the center back to size; zooming out pastes the smaller
// image centered on a constant black canvas.
func (p *Pipeline) zoom(img *image.NRGBA) *image.NRGBA {
	if p.zoomFactor <= 0 {
		return img
	}
	factor := 1 + (2*p.rng.Float64()-1)*p.zoomFactor
	scaled := int(math.Round(float64(p.size) * factor))
	if scaled == p.size {
		return img
	}
	if scaled < 1 {
		scaled = 1
	}
	out := imaging.Resize(img, scaled, scaled, imaging.Linear)
	if scaled > p.size {
		return imaging.CropCenter(out, p.size, p.size)
	}
	background := imaging.New(p.size, p.size, fillColor)
	return imaging.PasteCenter(background, out)
}

// contrast perturbs the contrast by a uniform random percentage within
// ±contrastFactor.
func (p *Pipeline) contrast(img *image.NRGBA) *image.NRGBA {
	if p.contrastFactor <= 0 {
		return img
	}
	percentage := (2*p.rng.Float64() - 1) * p.contrastFactor
	return imaging.AdjustContrast(img, percentage)
}

// SuppressDarkArtifacts clamps every R, G and B value below threshold to
// zero, in place. The alpha channel is left untouched.
func SuppressDarkArtifacts(img *image.NRGBA, threshold uint8) {
	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			if img.Pix[i+c] < threshold {
				img.Pix[i+c] = 0
			}
		}
	}
}
