package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/airroutes/ingest"
	"github.com/gewnthar/airroutes/models"
	"github.com/gewnthar/airroutes/scraper"
	"github.com/gewnthar/airroutes/services"
)

type fakeIngester struct {
	got string
	err error
}

func (f *fakeIngester) read(r io.Reader) error {
	b, err := io.ReadAll(r)
	f.got = string(b)
	return err
}

func (f *fakeIngester) IngestAirlines(_ context.Context, r io.Reader) (models.EntityIngestSummary, error) {
	if err := f.read(r); err != nil {
		return models.EntityIngestSummary{}, err
	}
	if f.err != nil {
		return models.EntityIngestSummary{}, f.err
	}
	return models.EntityIngestSummary{
		InsertedOrExisting: 2,
		Skipped:            1,
		SkippedPreview: []models.SkipEntry{{
			Row: 3, Reason: models.SkipValidationError,
			Errors:   []models.FieldError{{Field: "name", Message: "required"}},
			Original: map[string]string{"name": ""},
		}},
	}, nil
}

func (f *fakeIngester) IngestAirports(ctx context.Context, r io.Reader) (models.EntityIngestSummary, error) {
	return f.IngestAirlines(ctx, r)
}

func (f *fakeIngester) IngestRoutes(_ context.Context, r io.Reader) (models.RouteIngestSummary, error) {
	if err := f.read(r); err != nil {
		return models.RouteIngestSummary{}, err
	}
	if f.err != nil {
		return models.RouteIngestSummary{}, f.err
	}
	return models.RouteIngestSummary{Inserted: 5, SkippedPreview: []models.SkipEntry{}}, nil
}

type fakeRefresher struct {
	name  string
	force bool
	err   error
}

func (f *fakeRefresher) Refresh(_ context.Context, name string, force bool) (*services.RefreshResult, error) {
	f.name, f.force = name, force
	if f.err != nil {
		return nil, f.err
	}
	return &services.RefreshResult{Source: name, SHA256: "abc"}, nil
}

func (f *fakeRefresher) RefreshAll(ctx context.Context, force bool) ([]*services.RefreshResult, error) {
	res, err := f.Refresh(ctx, "all", force)
	if err != nil {
		return nil, err
	}
	return []*services.RefreshResult{res}, nil
}

func (f *fakeRefresher) Versions(context.Context) ([]models.DataSourceVersion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.DataSourceVersion{{SourceName: "airports", DataHash: "abc"}}, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestRouter(ing *fakeIngester, ref *fakeRefresher, db Pinger, maxUpload int64) http.Handler {
	return SetupRoutes(Handlers{
		Ingest: NewIngestHandler(ing, maxUpload),
		Admin:  NewAdminHandler(ref),
		DB:     db,
	}, []string{"http://localhost:5173"})
}

func multipartBody(t *testing.T, field, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "upload.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func upload(t *testing.T, h http.Handler, path, field, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, ctype := multipartBody(t, field, content)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestUploadAirlines(t *testing.T) {
	ing := &fakeIngester{}
	h := newTestRouter(ing, &fakeRefresher{}, fakePinger{}, 1<<20)

	rec := upload(t, h, "/api/ingest/airlines", "file", "name|iata\nFoo|FOO\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "name|iata\nFoo|FOO\n", ing.got)

	out := decode(t, rec)
	assert.Equal(t, float64(2), out["inserted_or_existing"])
	assert.Equal(t, float64(1), out["skipped"])
	preview := out["skipped_preview"].([]any)
	require.Len(t, preview, 1)
	entry := preview[0].(map[string]any)
	assert.Equal(t, "validation_error", entry["reason"])
	assert.Equal(t, float64(3), entry["row"])
}

func TestUploadRoutesShape(t *testing.T) {
	h := newTestRouter(&fakeIngester{}, &fakeRefresher{}, fakePinger{}, 1<<20)

	rec := upload(t, h, "/api/ingest/routes", "file", "origin,destination,flight_date\n")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, float64(5), out["inserted"])
	assert.Equal(t, float64(0), out["skipped"])
	assert.Equal(t, []any{}, out["skipped_preview"])
}

func TestUploadAirportsRejectsBadRequests(t *testing.T) {
	h := newTestRouter(&fakeIngester{}, &fakeRefresher{}, fakePinger{}, 1<<20)

	rec := upload(t, h, "/api/ingest/airports", "document", "x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "'file'")

	req := httptest.NewRequest(http.MethodPost, "/api/ingest/airports", strings.NewReader("name,country"))
	req.Header.Set("Content-Type", "text/csv")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/ingest/airports", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestUploadTooLarge(t *testing.T) {
	h := newTestRouter(&fakeIngester{}, &fakeRefresher{}, fakePinger{}, 1024)

	rec := upload(t, h, "/api/ingest/routes", "file", strings.Repeat("JFK,LAX,2024-01-01\n", 500))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "exceeds")
}

func TestIsTooLarge(t *testing.T) {
	wrapped := fmt.Errorf("read body: %w", &http.MaxBytesError{Limit: 1024})
	assert.True(t, isTooLarge(wrapped))
	assert.True(t, isTooLarge(errors.New("multipart: NextPart: http: request body too large")))
	assert.False(t, isTooLarge(errors.New("unexpected EOF")))
}

func TestUploadErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid upload", fmt.Errorf("%w: %w", services.ErrInvalidUpload, ingest.ErrEmptyFile), http.StatusBadRequest},
		{"persistence", errors.New("deadlock"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestRouter(&fakeIngester{err: tc.err}, &fakeRefresher{}, fakePinger{}, 1<<20)
			rec := upload(t, h, "/api/ingest/airlines", "file", "x")
			assert.Equal(t, tc.code, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestRefreshDataSource(t *testing.T) {
	ref := &fakeRefresher{}
	h := newTestRouter(&fakeIngester{}, ref, fakePinger{}, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/refresh/Airports?force=true", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "airports", ref.name)
	assert.True(t, ref.force)
	assert.Equal(t, "abc", decode(t, rec)["sha256"])

	req = httptest.NewRequest(http.MethodPost, "/api/admin/refresh/all", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "all", ref.name)
	assert.False(t, ref.force)

	req = httptest.NewRequest(http.MethodPost, "/api/admin/refresh/routes?force=maybe", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshDataSourceErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: %q", services.ErrUnknownSource, "cdr"), http.StatusBadRequest},
		{fmt.Errorf("%w: no url", scraper.ErrNotConfigured), http.StatusBadRequest},
		{fmt.Errorf("failed to refresh airports: failed to ingest airports: %w: %w", services.ErrInvalidUpload, ingest.ErrUnrecognizedHeader), http.StatusUnprocessableEntity},
		{errors.New("timeout"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		h := newTestRouter(&fakeIngester{}, &fakeRefresher{err: tc.err}, fakePinger{}, 1<<20)
		req := httptest.NewRequest(http.MethodPost, "/api/admin/refresh/cdr", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
	}
}

func TestListDataSources(t *testing.T) {
	h := newTestRouter(&fakeIngester{}, &fakeRefresher{}, fakePinger{}, 1<<20)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/sources", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var versions []models.DataSourceVersion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &versions))
	require.Len(t, versions, 1)
	assert.Equal(t, "airports", versions[0].SourceName)
}

func TestHealth(t *testing.T) {
	h := newTestRouter(&fakeIngester{}, &fakeRefresher{}, fakePinger{}, 1<<20)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])

	h = newTestRouter(&fakeIngester{}, &fakeRefresher{}, fakePinger{err: errors.New("down")}, 1<<20)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", decode(t, rec)["status"])
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(&fakeIngester{}, &fakeRefresher{}, fakePinger{}, 1<<20)
	req := httptest.NewRequest(http.MethodOptions, "/api/ingest/routes", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
