// tumor_augment generates an augmented copy of a brain-tumor image
// classification dataset.
//
// It reads labeled images from `<data>/<label>/<image>`, normalizes each to
// a fixed size and 3-channel layout, and writes the original plus a number
// of randomly perturbed copies (flip, rotation, zoom, contrast) into a
// label-mirrored output tree. Run with no arguments it uses the conventional
// `data/base_data` source tree and writes to its sibling
// `data_augmente_data`.
package main

import (
	"flag"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"

	"github.com/medimaging/braintumor"
	"github.com/medimaging/braintumor/downloader"
	"github.com/medimaging/braintumor/fsutil"
)

var (
	flagDataDir = flag.String("data", filepath.Join("data", "base_data"),
		"Directory with the source images, one sub-directory per label.")
	flagOutputDir = flag.String("out", "",
		"Output directory for the augmented dataset. Defaults to \"data_augmente_data\" next to the source directory.")
	flagImageSize = flag.Int("size", braintumor.DefaultConfig.ImageSize,
		"Width and height images are normalized to.")
	flagFactor = flag.Int("factor", braintumor.DefaultConfig.AugmentationFactor,
		"Number of augmented copies generated per source image.")
	flagSeed = flag.Int64("seed", 0,
		"Seed for the random transforms. 0 seeds from the current time, making every run different.")
	flagParallelism = flag.Int("parallelism", braintumor.DefaultConfig.Parallelism,
		"Number of images processed concurrently. 1 processes files strictly sequentially.")
	flagQuiet = flag.Bool("quiet", false, "Disable the progress bar.")
	flagStats = flag.Bool("stats", false, "Print a summary table of the run, including per-label counts and pixel statistics.")

	flagDownloadURL = flag.String("download_url", "",
		"If set and the source directory is missing, download this zip archive and unpack it next to the source directory first.")
	flagDownloadChecksum = flag.String("download_checksum", "",
		"Optional sha256 checksum (hex) of the archive given in -download_url.")
)

func main() {
	flag.Parse()
	if flag.NArg() > 0 {
		klog.Errorf("Unexpected arguments %q. See 'tumor_augment -help'.", flag.Args())
		os.Exit(1)
	}

	dataDir := fsutil.MustReplaceTildeInDir(*flagDataDir)
	if *flagDownloadURL != "" {
		baseDir := filepath.Dir(dataDir)
		zipFile := filepath.Join(baseDir, path.Base(*flagDownloadURL))
		must.M(downloader.DownloadAndUnzipIfMissing(
			*flagDownloadURL, zipFile, baseDir, dataDir, *flagDownloadChecksum))
	}
	if !fsutil.MustFileExists(dataDir) {
		klog.Errorf("Source data directory %q does not exist -- populate it with one sub-directory per label, or pass -download_url.", dataDir)
		os.Exit(1)
	}

	outputDir := fsutil.MustReplaceTildeInDir(*flagOutputDir)
	if outputDir == "" {
		outputDir = filepath.Join(filepath.Dir(dataDir), "data_augmente_data")
	}

	config := &braintumor.Configuration{}
	*config = *braintumor.DefaultConfig
	config.DataDir = dataDir
	config.OutputDir = outputDir
	config.ImageSize = *flagImageSize
	config.AugmentationFactor = *flagFactor
	config.Seed = *flagSeed
	config.Parallelism = *flagParallelism
	config.Verbose = !*flagQuiet

	summary := must.M1(braintumor.Generate(config))
	if *flagStats {
		printSummary(config, summary)
	}
	fmt.Printf("Augmented images have been saved in: %s\n", outputDir)
}

var (
	oddRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).PaddingRight(1)
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)
)

func newPlainTable() *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if row%2 == 0 {
				s = oddRowStyle
			} else {
				s = evenRowStyle
			}
			if col == 0 {
				s = s.Align(lipgloss.Right)
			} else {
				s = s.Align(lipgloss.Left)
			}
			return
		})
}

func printSummary(config *braintumor.Configuration, summary *braintumor.Summary) {
	fmt.Println(titleStyle.Render("Augmentation Summary"))
	table := newPlainTable()
	table.Row("source", config.DataDir)
	table.Row("output", config.OutputDir)
	table.Row("image size", fmt.Sprintf("%dx%d", config.ImageSize, config.ImageSize))
	table.Row("augmentation factor", humanize.Comma(int64(config.AugmentationFactor)))
	labels := make([]string, 0, len(summary.InputsPerLabel))
	for label := range summary.InputsPerLabel {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	for _, label := range labels {
		table.Row("# "+label, humanize.Comma(int64(summary.InputsPerLabel[label])))
	}
	table.Row("# source images", humanize.Comma(int64(summary.Inputs)))
	table.Row("# files written", humanize.Comma(int64(summary.FilesWritten)))
	table.Row("bytes written", humanize.Bytes(uint64(summary.BytesWritten)))
	table.Row("elapsed", summary.Elapsed.Round(0).String())

	examples := must.M1(braintumor.ListImages(config.DataDir))
	stats := must.M1(braintumor.PixelStats(examples, config.ImageSize))
	table.Row("channel mean (RGB)", fmt.Sprintf("%.1f %.1f %.1f",
		stats.Mean[0], stats.Mean[1], stats.Mean[2]))
	table.Row("channel std dev (RGB)", fmt.Sprintf("%.1f %.1f %.1f",
		stats.StdDev[0], stats.StdDev[1], stats.StdDev[2]))
	fmt.Println(table.Render())
}
