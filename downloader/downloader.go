// Package downloader fetches and unpacks the base dataset archive.
package downloader

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path"

	"github.com/medimaging/braintumor/fsutil"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

// progressWriter updates a progress bar while bytes pass through to w.
// It requires knowing the content length up-front.
type progressWriter struct {
	w                   io.Writer
	bar                 *progressbar.ProgressBar
	barUnit             int64
	numUnits, addedUnit int64
	written             int64
}

func newProgressWriter(w io.Writer, contentLength int64) *progressWriter {
	pw := &progressWriter{w: w, barUnit: 1}
	for contentLength > pw.barUnit*1024*1024 {
		pw.barUnit *= 1024
	}
	pw.numUnits = (contentLength + pw.barUnit - 1) / pw.barUnit
	pw.bar = progressbar.NewOptions(int(pw.numUnits),
		progressbar.OptionSetDescription("Downloading"),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeUnicode),
	)
	return pw
}

// Write implements io.Writer, while updating the progress bar.
func (pw *progressWriter) Write(p []byte) (n int, err error) {
	n, err = pw.w.Write(p)
	pw.written += int64(n)
	toUnits := pw.written / pw.barUnit
	if toUnits > pw.addedUnit {
		_ = pw.bar.Add(int(toUnits - pw.addedUnit))
		pw.addedUnit = toUnits
	}
	return
}

func (pw *progressWriter) close() {
	if pw.addedUnit < pw.numUnits {
		_ = pw.bar.Add(int(pw.numUnits - pw.addedUnit))
	}
	_ = pw.bar.Close()
	fmt.Println()
}

// Download fetches url and saves it at filePath, creating the parent
// directory if needed. It displays a progress bar if showProgressBar.
func Download(url, filePath string, showProgressBar bool) error {
	if err := os.MkdirAll(path.Dir(filePath), 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %q", filePath)
	}
	file, err := os.Create(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed creating file %q", filePath)
	}
	client := http.Client{
		CheckRedirect: func(r *http.Request, via []*http.Request) error {
			r.URL.Opaque = r.URL.Path
			return nil
		},
	}
	resp, err := client.Get(url)
	if err != nil {
		return errors.Wrapf(err, "failed downloading %q", url)
	}
	if showProgressBar && resp.ContentLength > 0 {
		pw := newProgressWriter(file, resp.ContentLength)
		_, err = io.Copy(pw, resp.Body)
		pw.close()
	} else {
		_, err = io.Copy(file, resp.Body)
	}
	if err != nil {
		return errors.Wrapf(err, "downloading %q to %q", url, filePath)
	}
	if err = file.Close(); err != nil {
		return errors.Wrapf(err, "failed closing %q", filePath)
	}
	if err = resp.Body.Close(); err != nil {
		return errors.Wrapf(err, "failed closing connection to %q", url)
	}
	return nil
}

// DownloadIfMissing downloads url to filePath unless the file already exists.
//
// If checkHash is not empty, it validates the file's sha256 checksum.
func DownloadIfMissing(url, filePath, checkHash string) error {
	exists, err := fsutil.FileExists(filePath)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Printf("Downloading %s ...\n", url)
		if err = Download(url, filePath, true); err != nil {
			return err
		}
	}
	if checkHash == "" {
		return nil
	}
	return fsutil.ValidateChecksum(filePath, checkHash)
}

// Unzip extracts zipFile under zipBaseDir, using the system unzip.
func Unzip(zipFile, zipBaseDir string) error {
	cmd := exec.Command("unzip", "-u", zipFile)
	cmd.Dir = zipBaseDir
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "failed to run %q", cmd)
	}
	return nil
}

// DownloadAndUnzipIfMissing downloads zipFile from url if absent, and unzips
// it under unzipBaseDir if targetUnzipDir is missing. It's recommended that
// all paths be absolute.
//
// If checkHash is not empty, it validates the archive's sha256 checksum.
func DownloadAndUnzipIfMissing(url, zipFile, unzipBaseDir, targetUnzipDir, checkHash string) error {
	exists, err := fsutil.FileExists(targetUnzipDir)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err = DownloadIfMissing(url, zipFile, checkHash); err != nil {
		return err
	}
	if err = Unzip(zipFile, unzipBaseDir); err != nil {
		return err
	}
	exists, err = fsutil.FileExists(targetUnzipDir)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Errorf("downloaded from %q and unzip'ed %q, but didn't get directory %q",
			url, zipFile, targetUnzipDir)
	}
	return nil
}
