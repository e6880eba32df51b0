// scraper/csv_downloader.go
package scraper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gewnthar/airroutes/config"
)

// ErrNotConfigured is returned for a data source without a URL or index page.
var ErrNotConfigured = errors.New("data source is not configured")

// Downloader fetches dataset files over HTTP.
type Downloader struct {
	client *http.Client
}

func NewDownloader(timeout time.Duration) *Downloader {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Downloader{client: &http.Client{Timeout: timeout}}
}

// Download describes one file saved to disk.
type Download struct {
	URL    string
	Path   string
	Bytes  int64
	SHA256 string
}

// DownloadFile saves url to localSavePath. The body is written to a
// temporary file first so a failed transfer never replaces a good copy.
func (d *Downloader) DownloadFile(ctx context.Context, url, localSavePath string) (*Download, error) {
	slog.Info("Downloading file", "url", url, "path", localSavePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file from %s: received status code %d", url, resp.StatusCode)
	}

	dir := filepath.Dir(localSavePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(localSavePath)+".*.part")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	hash := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, hash), resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to copy downloaded content to %s: %w", localSavePath, err)
	}
	if err := os.Rename(tmp.Name(), localSavePath); err != nil {
		return nil, fmt.Errorf("failed to move download into %s: %w", localSavePath, err)
	}

	slog.Info("Downloaded file", "url", url, "path", localSavePath, "bytes", n)
	return &Download{
		URL:    url,
		Path:   localSavePath,
		Bytes:  n,
		SHA256: hex.EncodeToString(hash.Sum(nil)),
	}, nil
}

// DownloadSource fetches the CSV configured for one dataset: the direct URL
// when set, otherwise the first matching link found on the index page.
func (d *Downloader) DownloadSource(ctx context.Context, name string, src config.DataSourceConfig) (*Download, error) {
	if src.LocalPath == "" {
		return nil, fmt.Errorf("%w: local path for %s is empty", ErrNotConfigured, name)
	}
	url := src.URL
	if url == "" {
		if src.IndexURL == "" {
			return nil, fmt.Errorf("%w: no url or index_url for %s", ErrNotConfigured, name)
		}
		link, err := d.FindCSVLink(ctx, src.IndexURL, src.LinkMatch)
		if err != nil {
			return nil, fmt.Errorf("failed to discover %s csv: %w", name, err)
		}
		url = link
	}

	dl, err := d.DownloadFile(ctx, url, src.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s csv: %w", name, err)
	}
	return dl, nil
}
