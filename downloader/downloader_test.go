package downloader

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Network downloads are not exercised here; these tests cover the
// already-present short-circuit paths.

func TestDownloadIfMissingAlreadyPresent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.zip")
	contents := []byte("zip contents")
	require.NoError(t, os.WriteFile(path, contents, 0644))

	sum := sha256.Sum256(contents)
	require.NoError(t, DownloadIfMissing("http://invalid.invalid/dataset.zip", path, hex.EncodeToString(sum[:])))
	require.NoError(t, DownloadIfMissing("http://invalid.invalid/dataset.zip", path, ""))
	require.Error(t, DownloadIfMissing("http://invalid.invalid/dataset.zip", path, "deadbeef"))
}

func TestDownloadAndUnzipIfMissingTargetPresent(t *testing.T) {
	baseDir := t.TempDir()
	targetDir := filepath.Join(baseDir, "base_data")
	require.NoError(t, os.MkdirAll(targetDir, 0755))
	require.NoError(t, DownloadAndUnzipIfMissing("http://invalid.invalid/dataset.zip",
		filepath.Join(baseDir, "dataset.zip"), baseDir, targetDir, ""))
}
