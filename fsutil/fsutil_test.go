package fsutil

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	exists, err := FileExists(path)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	exists, err = FileExists(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.True(t, MustFileExists(dir))
}

func TestReplaceTildeInDir(t *testing.T) {
	for _, dir := range []string{"", "/abs/path", "rel/path"} {
		got, err := ReplaceTildeInDir(dir)
		require.NoError(t, err)
		assert.Equal(t, dir, got)
	}

	got, err := ReplaceTildeInDir("~/data")
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(got, "~"))
	assert.True(t, strings.HasSuffix(got, "/data"))
}

func TestValidateChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.zip")
	contents := []byte("dataset archive contents")
	require.NoError(t, os.WriteFile(path, contents, 0644))

	sum := sha256.Sum256(contents)
	require.NoError(t, ValidateChecksum(path, hex.EncodeToString(sum[:])))
	require.NoError(t, ValidateChecksum(path, strings.ToUpper(hex.EncodeToString(sum[:]))))

	err := ValidateChecksum(path, strings.Repeat("0", 64))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum")

	require.Error(t, ValidateChecksum(filepath.Join(t.TempDir(), "missing"), "00"))
}
