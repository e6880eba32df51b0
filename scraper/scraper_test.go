package scraper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/airroutes/config"
)

const indexPage = `<html><body>
<ul>
  <li><a href="/docs/readme.txt">Readme</a></li>
  <li><a href="files/aerolineas.csv">Aerolíneas</a></li>
  <li><a href="files/export.CSV?v=2">Aeropuertos del mundo</a></li>
  <li><a href="https://cdn.example.org/vuelos.csv">Vuelos</a></li>
</ul>
</body></html>`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/datasets/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(indexPage))
	})
	mux.HandleFunc("/data/airlines.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("name|iata\nAerolineas Argentinas|ARG\n"))
	})
	mux.HandleFunc("/datasets/files/export.CSV", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("name,country,lat,lon\nEzeiza,Argentina,-34.8,-58.5\n"))
	})
	mux.HandleFunc("/missing.csv", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadFile(t *testing.T) {
	srv := newTestServer(t)
	d := NewDownloader(5 * time.Second)
	dest := filepath.Join(t.TempDir(), "nested", "airlines.csv")

	dl, err := d.DownloadFile(context.Background(), srv.URL+"/data/airlines.csv", dest)
	require.NoError(t, err)

	body := "name|iata\nAerolineas Argentinas|ARG\n"
	sum := sha256.Sum256([]byte(body))
	assert.Equal(t, int64(len(body)), dl.Bytes)
	assert.Equal(t, hex.EncodeToString(sum[:]), dl.SHA256)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(dest), "*.part"))
	assert.Empty(t, leftovers)
}

func TestDownloadFileKeepsPreviousCopyOnFailure(t *testing.T) {
	srv := newTestServer(t)
	d := NewDownloader(5 * time.Second)
	dest := filepath.Join(t.TempDir(), "airlines.csv")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0644))

	_, err := d.DownloadFile(context.Background(), srv.URL+"/missing.csv", dest)
	assert.ErrorContains(t, err, "status code 404")

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))
}

func TestFindCSVLink(t *testing.T) {
	srv := newTestServer(t)
	d := NewDownloader(5 * time.Second)
	ctx := context.Background()

	link, err := d.FindCSVLink(ctx, srv.URL+"/datasets/", "aeropuertos")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/datasets/files/export.CSV?v=2", link)

	link, err = d.FindCSVLink(ctx, srv.URL+"/datasets/", "VUELOS")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.org/vuelos.csv", link)

	link, err = d.FindCSVLink(ctx, srv.URL+"/datasets/", "")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/datasets/files/aerolineas.csv", link)

	_, err = d.FindCSVLink(ctx, srv.URL+"/datasets/", "readme")
	assert.ErrorContains(t, err, "no csv link")
}

func TestDownloadSource(t *testing.T) {
	srv := newTestServer(t)
	d := NewDownloader(5 * time.Second)
	ctx := context.Background()
	dir := t.TempDir()

	dl, err := d.DownloadSource(ctx, "airports", config.DataSourceConfig{
		IndexURL:  srv.URL + "/datasets/",
		LinkMatch: "aeropuertos",
		LocalPath: filepath.Join(dir, "airports.csv"),
	})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/datasets/files/export.CSV?v=2", dl.URL)
	assert.FileExists(t, dl.Path)

	dl, err = d.DownloadSource(ctx, "airlines", config.DataSourceConfig{
		URL:       srv.URL + "/data/airlines.csv",
		LocalPath: filepath.Join(dir, "airlines.csv"),
	})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/data/airlines.csv", dl.URL)

	_, err = d.DownloadSource(ctx, "routes", config.DataSourceConfig{LocalPath: filepath.Join(dir, "r.csv")})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = d.DownloadSource(ctx, "routes", config.DataSourceConfig{URL: srv.URL + "/data/airlines.csv"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
