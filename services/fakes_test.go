package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/gewnthar/airroutes/config"
	"github.com/gewnthar/airroutes/models"
	"github.com/gewnthar/airroutes/scraper"
)

// memStore is an in-memory IngestStore keyed the same way as the SQL store.
type memStore struct {
	mu          sync.Mutex
	nextID      int64
	airlines    []models.Airline
	airports    []models.Airport
	routes      []models.Route
	airlineErr  error
	bulkErr     error
	getOrCreate int
}

func (m *memStore) GetOrCreateAirline(_ context.Context, a models.Airline) (models.Airline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getOrCreate++
	if m.airlineErr != nil {
		return models.Airline{}, m.airlineErr
	}
	for _, existing := range m.airlines {
		if sameCode(existing.IATA, a.IATA) || sameCode(existing.ICAO, a.ICAO) {
			return existing, nil
		}
	}
	m.nextID++
	a.ID = m.nextID
	m.airlines = append(m.airlines, a)
	return a, nil
}

func (m *memStore) GetOrCreateAirport(_ context.Context, a models.Airport) (models.Airport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getOrCreate++
	for _, existing := range m.airports {
		if (a.ExtID != nil && existing.ExtID != nil && *a.ExtID == *existing.ExtID) ||
			sameCode(existing.IATA, a.IATA) || sameCode(existing.ICAO, a.ICAO) {
			return existing, nil
		}
	}
	m.nextID++
	a.ID = m.nextID
	m.airports = append(m.airports, a)
	return a, nil
}

func (m *memStore) LoadAirportRefs(context.Context) ([]models.RefEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	refs := make([]models.RefEntry, 0, len(m.airports))
	for _, a := range m.airports {
		refs = append(refs, models.RefEntry{ID: a.ID, IATA: a.IATA, ICAO: a.ICAO, ExtID: a.ExtID})
	}
	return refs, nil
}

func (m *memStore) LoadAirlineRefs(context.Context) ([]models.RefEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	refs := make([]models.RefEntry, 0, len(m.airlines))
	for _, a := range m.airlines {
		refs = append(refs, models.RefEntry{ID: a.ID, IATA: a.IATA, ICAO: a.ICAO, ExtID: a.ExtID})
	}
	return refs, nil
}

func (m *memStore) BulkInsertRoutes(_ context.Context, routes []models.Route) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bulkErr != nil {
		return 0, m.bulkErr
	}
	m.routes = append(m.routes, routes...)
	return len(routes), nil
}

func sameCode(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}

// fileDownloader "downloads" fixed content into the configured local path.
type fileDownloader struct {
	content string
	err     error
	calls   int
}

func (f *fileDownloader) DownloadSource(_ context.Context, name string, src config.DataSourceConfig) (*scraper.Download, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if err := os.MkdirAll(filepath.Dir(src.LocalPath), 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(src.LocalPath, []byte(f.content), 0644); err != nil {
		return nil, err
	}
	return &scraper.Download{
		URL:    "https://example.org/" + name + ".csv",
		Path:   src.LocalPath,
		Bytes:  int64(len(f.content)),
		SHA256: "hash-" + f.content,
	}, nil
}

type memVersions struct {
	versions  map[string]models.DataSourceVersion
	recordErr error
	readErr   error
}

func (m *memVersions) RecordDataSourceVersion(_ context.Context, v models.DataSourceVersion) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	if m.versions == nil {
		m.versions = map[string]models.DataSourceVersion{}
	}
	m.versions[v.SourceName] = v
	return nil
}

func (m *memVersions) GetDataSourceVersions(context.Context) ([]models.DataSourceVersion, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	out := make([]models.DataSourceVersion, 0, len(m.versions))
	for _, v := range m.versions {
		out = append(out, v)
	}
	return out, nil
}

var errBoom = errors.New("boom")
