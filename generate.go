package braintumor

import (
	"fmt"
	"image"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

// AugmentedFileName returns the output file name of the i-th augmented copy
// of name.
func AugmentedFileName(i int, name string) string {
	return fmt.Sprintf("aug_%d_%s", i, name)
}

// Configuration of a Generate run.
type Configuration struct {
	// DataDir holds the source tree, one sub-directory per label.
	DataDir string

	// OutputDir receives the label-mirrored output tree. Created if absent.
	OutputDir string

	// ImageSize is the width and height every output image is normalized to.
	ImageSize int

	// AugmentationFactor is the number of augmented copies generated per
	// source image, in addition to the normalized original.
	AugmentationFactor int

	// Seed for the random transforms. 0 seeds from the current time, so
	// every run is different.
	Seed int64

	// Parallelism is the number of worker goroutines processing images.
	// 1 processes files strictly sequentially.
	Parallelism int

	// Verbose displays a progress bar while generating.
	Verbose bool
}

// DefaultConfig generates two augmented copies per 256x256 image,
// sequentially.
var DefaultConfig = &Configuration{
	ImageSize:          DefaultImageSize,
	AugmentationFactor: 2,
	Parallelism:        1,
}

func (config *Configuration) check() error {
	if config.ImageSize <= 0 {
		return errors.Errorf("invalid image size %d", config.ImageSize)
	}
	if config.AugmentationFactor < 0 {
		return errors.Errorf("invalid augmentation factor %d", config.AugmentationFactor)
	}
	info, err := os.Stat(config.DataDir)
	if err != nil {
		return errors.Wrapf(err, "source data directory %q does not exist", config.DataDir)
	}
	if !info.IsDir() {
		return errors.Errorf("source data path %q is not a directory", config.DataDir)
	}
	return nil
}

// Summary of a completed Generate run.
type Summary struct {
	// Inputs is the number of source images processed.
	Inputs int

	// InputsPerLabel breaks Inputs down by label.
	InputsPerLabel map[string]int

	// FilesWritten counts originals plus augmented copies.
	FilesWritten int

	// BytesWritten is the total size of the files written.
	BytesWritten int64

	// Elapsed wall time of the run.
	Elapsed time.Duration
}

// Generate walks the source tree and, for every image, writes the normalized
// original under its own name plus AugmentationFactor augmented copies named
// `aug_<i>_<name>` into the mirrored label directory of the output tree.
//
// Any unreadable or undecodable image aborts the run with an error; already
// written files are left in place.
func Generate(config *Configuration) (*Summary, error) {
	if err := config.check(); err != nil {
		return nil, err
	}
	start := time.Now()
	examples, err := ListImages(config.DataDir)
	if err != nil {
		return nil, err
	}
	summary := &Summary{
		Inputs:         len(examples),
		InputsPerLabel: CountByLabel(examples),
	}

	// Create the output label directories up-front, so the workers below
	// never race on MkdirAll.
	if err = os.MkdirAll(config.OutputDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %q", config.OutputDir)
	}
	for label := range summary.InputsPerLabel {
		labelDir := filepath.Join(config.OutputDir, label)
		if err = os.MkdirAll(labelDir, 0755); err != nil {
			return nil, errors.Wrapf(err, "failed to create label directory %q", labelDir)
		}
	}

	var pBar *progressbar.ProgressBar
	if config.Verbose {
		pBar = progressbar.NewOptions(len(examples),
			progressbar.OptionSetDescription("Augmenting"),
			progressbar.OptionUseANSICodes(true),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("images"),
			progressbar.OptionSetTheme(progressbar.ThemeUnicode),
		)
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UTC().UnixNano()
	}
	seeds := rand.New(rand.NewSource(seed))

	parallelism := config.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	jobs := make(chan Example, len(examples))
	for _, example := range examples {
		jobs <- example
	}
	close(jobs)

	var wg sync.WaitGroup
	var muSummary sync.Mutex
	errChan := make(chan error, parallelism)
	for ii := 0; ii < parallelism; ii++ {
		wg.Add(1)
		// Each worker owns its augmentation pipeline, seeded from the run seed.
		pipeline := NewPipeline(config.ImageSize, rand.New(rand.NewSource(seeds.Int63())))
		go func(pipeline *Pipeline) {
			defer wg.Done()
			for example := range jobs {
				files, bytes, err := writeExample(config, pipeline, example)
				if err != nil {
					errChan <- err
					return
				}
				muSummary.Lock()
				summary.FilesWritten += files
				summary.BytesWritten += bytes
				if pBar != nil {
					_ = pBar.Add(1)
				}
				muSummary.Unlock()
			}
		}(pipeline)
	}
	wg.Wait()
	close(errChan)
	for err = range errChan {
		return nil, err
	}
	if pBar != nil {
		_ = pBar.Close()
		fmt.Println()
	}
	summary.Elapsed = time.Since(start)
	return summary, nil
}

// writeExample normalizes one source image and writes it plus its augmented
// copies. Returns the number of files and bytes written.
func writeExample(config *Configuration, pipeline *Pipeline, example Example) (files int, bytes int64, err error) {
	img, err := LoadImage(example.Path)
	if err != nil {
		return
	}
	normalized := Normalize(img, config.ImageSize)

	labelDir := filepath.Join(config.OutputDir, example.Label)
	size, err := saveImage(normalized, filepath.Join(labelDir, example.Name))
	if err != nil {
		return
	}
	files++
	bytes += size

	for i := 0; i < config.AugmentationFactor; i++ {
		augmented := pipeline.Apply(normalized)
		size, err = saveImage(augmented, filepath.Join(labelDir, AugmentedFileName(i, example.Name)))
		if err != nil {
			return
		}
		files++
		bytes += size
	}
	return
}

func saveImage(img *image.NRGBA, path string) (int64, error) {
	if err := imaging.Save(img, path); err != nil {
		return 0, errors.Wrapf(err, "failed to save image %q", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to stat written image %q", path)
	}
	return info.Size(), nil
}
