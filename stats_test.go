package braintumor

import (
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixelStats(t *testing.T) {
	const size = 32
	dataDir := t.TempDir()
	saveTestImage(t, newSolidNRGBA(size, color.NRGBA{R: 100, G: 100, B: 100, A: 255}),
		filepath.Join(dataDir, "glioma", "a.png"))
	saveTestImage(t, newSolidNRGBA(size, color.NRGBA{R: 200, G: 200, B: 200, A: 255}),
		filepath.Join(dataDir, "glioma", "b.png"))

	examples, err := ListImages(dataDir)
	require.NoError(t, err)
	stats, err := PixelStats(examples, size)
	require.NoError(t, err)

	wantStdDev := 100 / math.Sqrt2 // sample standard deviation of {100, 200}
	for c := 0; c < 3; c++ {
		assert.InDelta(t, 150, stats.Mean[c], 1e-9)
		assert.InDelta(t, wantStdDev, stats.StdDev[c], 1e-9)
	}
}

func TestPixelStatsLoadError(t *testing.T) {
	examples := []Example{{Path: filepath.Join(t.TempDir(), "missing.png"), Label: "glioma", Name: "missing.png"}}
	_, err := PixelStats(examples, 32)
	require.Error(t, err)
}
