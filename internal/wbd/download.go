package wbd

import (
	"archive/zip"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Downloader fetches WBD archives. The limiter keeps concurrent region loads
// polite against the National Map S3 bucket.
type Downloader struct {
	Client  *http.Client
	Limiter *rate.Limiter
}

// NewDownloader returns a Downloader allowing ratePerSec requests per second.
func NewDownloader(ratePerSec float64) *Downloader {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	return &Downloader{
		Client:  &http.Client{Timeout: 30 * time.Minute},
		Limiter: rate.NewLimiter(rate.Limit(ratePerSec), 1),
	}
}

// Fetch downloads a WBD ZIP archive and extracts it, returning the path to
// the WBDHU12 shapefile inside.
func (d *Downloader) Fetch(ctx context.Context, url, destDir string) (string, error) {
	log := zap.L().With(
		zap.String("component", "wbd.download"),
		zap.String("url", url),
	)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", eris.Wrap(err, "wbd: create dest dir")
	}

	parts := strings.Split(url, "/")
	zipName := parts[len(parts)-1]
	zipPath := filepath.Join(destDir, zipName)

	// Skip download if the ZIP already exists with content.
	if info, err := os.Stat(zipPath); err == nil && info.Size() > 0 {
		log.Debug("zip already exists, skipping download", zap.String("path", zipPath))
	} else {
		if err := d.Limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "wbd: rate limit wait")
		}
		log.Info("downloading WBD archive")
		if err := d.downloadFile(ctx, url, zipPath); err != nil {
			return "", eris.Wrap(err, "wbd: download archive")
		}
	}

	extractDir := filepath.Join(destDir, strings.TrimSuffix(zipName, ".zip"))
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return "", eris.Wrap(err, "wbd: create extract dir")
	}

	if err := extractZIP(zipPath, extractDir); err != nil {
		return "", eris.Wrap(err, "wbd: extract ZIP")
	}

	shpPath, err := findHUC12Shapefile(extractDir)
	if err != nil {
		return "", err
	}
	return shpPath, nil
}

// downloadFile downloads a URL to a local file.
func (d *Downloader) downloadFile(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrap(err, "build request")
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return eris.Wrap(err, "download")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("download returned status %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return eris.Wrap(err, "create file")
	}
	defer f.Close() //nolint:errcheck

	if _, err := io.Copy(f, resp.Body); err != nil {
		return eris.Wrap(err, "write file")
	}

	return nil
}

// extractZIP extracts a ZIP archive to the destination directory, flattening
// any internal directory layout.
func extractZIP(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return eris.Wrap(err, "open zip")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		destPath := filepath.Join(destDir, filepath.Base(f.Name))

		rc, err := f.Open()
		if err != nil {
			return eris.Wrapf(err, "open zip entry %s", f.Name)
		}

		outFile, err := os.Create(destPath)
		if err != nil {
			_ = rc.Close()
			return eris.Wrapf(err, "create %s", destPath)
		}

		if _, err := io.Copy(outFile, rc); err != nil {
			_ = outFile.Close()
			_ = rc.Close()
			return eris.Wrapf(err, "extract %s", f.Name)
		}
		_ = outFile.Close()
		_ = rc.Close()
	}

	return nil
}

// findHUC12Shapefile locates the WBDHU12 .shp file under dir.
func findHUC12Shapefile(dir string) (string, error) {
	var found string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		name := strings.ToLower(info.Name())
		if name == "wbdhu12.shp" {
			found = path
		}
		return nil
	})
	if err != nil {
		return "", eris.Wrapf(err, "wbd: scan %s", dir)
	}
	if found == "" {
		return "", eris.Errorf("wbd: no WBDHU12.shp found under %s", dir)
	}
	return found, nil
}
