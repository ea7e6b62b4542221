// Package braintumor prepares a brain-tumor MRI classification dataset for
// training: it loads labeled images from a `<dir>/<label>/<file>` tree,
// normalizes them to a fixed size and channel layout, and generates randomly
// augmented copies into a mirrored output tree.
package braintumor

import (
	"image"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// DefaultImageSize is the width and height images are normalized to.
const DefaultImageSize = 256

// imageExtensions are the file extensions recognized as dataset images.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Example is one image file of the dataset. Its label is the name of the
// immediate parent directory.
type Example struct {
	// Path to the image file.
	Path string

	// Label is the classification category, taken from the parent directory.
	Label string

	// Name is the file name, without directories.
	Name string
}

// IsImageFile reports whether name has a recognized image extension.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// ListImages walks dataDir and returns one Example per recognized image file,
// in lexical walk order. Files with other extensions are ignored.
func ListImages(dataDir string) ([]Example, error) {
	var examples []Example
	err := filepath.WalkDir(dataDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			return nil
		}
		examples = append(examples, Example{
			Path:  path,
			Label: filepath.Base(filepath.Dir(path)),
			Name:  entry.Name(),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk source data directory %q", dataDir)
	}
	return examples, nil
}

// CountByLabel returns the number of examples per label.
func CountByLabel(examples []Example) map[string]int {
	counts := make(map[string]int)
	for _, example := range examples {
		counts[example.Label]++
	}
	return counts
}

// LoadImage reads and decodes the image at path.
func LoadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load image %q", path)
	}
	return img, nil
}

// Normalize resizes img to size x size and coerces it to an opaque 3-channel
// layout: grayscale sources get their gray value replicated over R, G and B,
// and any alpha channel is dropped by forcing every pixel fully opaque.
//
// Normalizing an image that is already size x size and opaque is a no-op at
// the pixel level.
func Normalize(img image.Image, size int) *image.NRGBA {
	var normalized *image.NRGBA
	bounds := img.Bounds()
	if bounds.Dx() == size && bounds.Dy() == size {
		normalized = imaging.Clone(img)
	} else {
		normalized = imaging.Resize(img, size, size, imaging.Lanczos)
	}
	forceOpaque(normalized)
	return normalized
}

// forceOpaque drops the alpha channel in place.
func forceOpaque(img *image.NRGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xFF
	}
}
