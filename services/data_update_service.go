// services/data_update_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gewnthar/airroutes/config"
	"github.com/gewnthar/airroutes/models"
	"github.com/gewnthar/airroutes/scraper"
)

const (
	SourceAirlines = "airlines"
	SourceAirports = "airports"
	SourceRoutes   = "routes"
)

// ErrUnknownSource is returned for a data source name other than airlines,
// airports or routes.
var ErrUnknownSource = errors.New("unknown data source")

// SourceDownloader fetches the configured CSV of one data source.
type SourceDownloader interface {
	DownloadSource(ctx context.Context, name string, src config.DataSourceConfig) (*scraper.Download, error)
}

// VersionStore keeps the last refresh of each data source.
type VersionStore interface {
	RecordDataSourceVersion(ctx context.Context, v models.DataSourceVersion) error
	GetDataSourceVersions(ctx context.Context) ([]models.DataSourceVersion, error)
}

// RefreshResult reports one refresh. Summary is nil when the download was
// identical to the last ingested file and the refresh was not forced.
type RefreshResult struct {
	Source    string `json:"source"`
	SourceURL string `json:"source_url"`
	Bytes     int64  `json:"bytes"`
	SHA256    string `json:"sha256"`
	Unchanged bool   `json:"unchanged"`
	Summary   any    `json:"summary,omitempty"`
}

// Refresher downloads a data source and feeds it through ingestion.
type Refresher struct {
	ingest     *IngestService
	downloader SourceDownloader
	versions   VersionStore
	sources    config.DataSourcesConfig
	now        func() time.Time
}

func NewRefresher(svc *IngestService, d SourceDownloader, versions VersionStore, sources config.DataSourcesConfig) *Refresher {
	return &Refresher{
		ingest:     svc,
		downloader: d,
		versions:   versions,
		sources:    sources,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Refresh downloads the named source and ingests it. Unless force is set, a
// file whose hash matches the last recorded version is not ingested again.
func (r *Refresher) Refresh(ctx context.Context, name string, force bool) (*RefreshResult, error) {
	src, ok := r.sources.Source(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	slog.Info("Service: refreshing data source", "source", name, "force", force)

	dl, err := r.downloader.DownloadSource(ctx, name, src)
	if err != nil {
		return nil, err
	}
	result := &RefreshResult{Source: name, SourceURL: dl.URL, Bytes: dl.Bytes, SHA256: dl.SHA256}

	if !force {
		last, err := r.lastHash(ctx, name)
		if err != nil {
			slog.Warn("Service: could not read previous data source version", "source", name, "error", err)
		} else if last != "" && last == dl.SHA256 {
			slog.Info("Service: data source unchanged, skipping ingestion", "source", name, "sha256", dl.SHA256)
			result.Unchanged = true
			return result, nil
		}
	}

	file, err := os.Open(dl.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open downloaded file %s: %w", dl.Path, err)
	}
	defer file.Close()

	var accepted, skipped int
	switch name {
	case SourceAirlines:
		sum, err := r.ingest.IngestAirlines(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("failed to ingest %s: %w", name, err)
		}
		accepted, skipped, result.Summary = sum.InsertedOrExisting, sum.Skipped, sum
	case SourceAirports:
		sum, err := r.ingest.IngestAirports(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("failed to ingest %s: %w", name, err)
		}
		accepted, skipped, result.Summary = sum.InsertedOrExisting, sum.Skipped, sum
	case SourceRoutes:
		sum, err := r.ingest.IngestRoutes(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("failed to ingest %s: %w", name, err)
		}
		accepted, skipped, result.Summary = sum.Inserted, sum.Skipped, sum
	}

	err = r.versions.RecordDataSourceVersion(ctx, models.DataSourceVersion{
		SourceName:       name,
		SourceURL:        dl.URL,
		Filename:         filepath.Base(dl.Path),
		DataHash:         dl.SHA256,
		Bytes:            dl.Bytes,
		RowsAccepted:     accepted,
		RowsSkipped:      skipped,
		LastDownloadedAt: r.now(),
	})
	if err != nil {
		// The data is already stored; only the bookkeeping is lost.
		slog.Error("Service: failed to record data source version", "source", name, "error", err)
	}

	slog.Info("Service: refreshed data source", "source", name, "accepted", accepted, "skipped", skipped)
	return result, nil
}

// RefreshAll refreshes airlines, airports and routes in that order, so
// routes resolve against freshly loaded reference data. It stops at the
// first failure.
func (r *Refresher) RefreshAll(ctx context.Context, force bool) ([]*RefreshResult, error) {
	var results []*RefreshResult
	for _, name := range []string{SourceAirlines, SourceAirports, SourceRoutes} {
		res, err := r.Refresh(ctx, name, force)
		if err != nil {
			return results, fmt.Errorf("failed to refresh %s: %w", name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// Versions lists the recorded refreshes.
func (r *Refresher) Versions(ctx context.Context) ([]models.DataSourceVersion, error) {
	return r.versions.GetDataSourceVersions(ctx)
}

func (r *Refresher) lastHash(ctx context.Context, name string) (string, error) {
	versions, err := r.versions.GetDataSourceVersions(ctx)
	if err != nil {
		return "", err
	}
	for _, v := range versions {
		if v.SourceName == name {
			return v.DataHash, nil
		}
	}
	return "", nil
}
