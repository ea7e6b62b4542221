package braintumor

import (
	"gonum.org/v1/gonum/stat"
)

// ChannelStats holds per-channel pixel statistics of a set of normalized
// images, on the 0..255 scale. Mean and StdDev are computed over the
// per-image channel means, so memory stays bounded regardless of dataset
// size.
type ChannelStats struct {
	Mean   [3]float64
	StdDev [3]float64
}

// PixelStats loads and normalizes every example and returns per-channel
// statistics. Useful to pick normalization constants for training, and for
// sanity-checking that augmented data stays in the same range as the source.
func PixelStats(examples []Example, size int) (ChannelStats, error) {
	var stats ChannelStats
	means := [3][]float64{}
	for _, example := range examples {
		img, err := LoadImage(example.Path)
		if err != nil {
			return stats, err
		}
		normalized := Normalize(img, size)
		var sums [3]float64
		numPixels := len(normalized.Pix) / 4
		for i := 0; i < len(normalized.Pix); i += 4 {
			for c := 0; c < 3; c++ {
				sums[c] += float64(normalized.Pix[i+c])
			}
		}
		for c := 0; c < 3; c++ {
			means[c] = append(means[c], sums[c]/float64(numPixels))
		}
	}
	for c := 0; c < 3; c++ {
		stats.Mean[c], stats.StdDev[c] = stat.MeanStdDev(means[c], nil)
	}
	return stats, nil
}
