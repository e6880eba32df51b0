// handlers/ingest_handler.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gewnthar/airroutes/models"
	"github.com/gewnthar/airroutes/services"
)

const multipartMemory = 32 << 20

// Ingester is the ingestion surface the upload endpoints need.
type Ingester interface {
	IngestAirlines(ctx context.Context, r io.Reader) (models.EntityIngestSummary, error)
	IngestAirports(ctx context.Context, r io.Reader) (models.EntityIngestSummary, error)
	IngestRoutes(ctx context.Context, r io.Reader) (models.RouteIngestSummary, error)
}

// IngestHandler serves the CSV upload endpoints. Each expects a multipart
// form with the CSV in the "file" field.
type IngestHandler struct {
	svc            Ingester
	maxUploadBytes int64
}

func NewIngestHandler(svc Ingester, maxUploadBytes int64) *IngestHandler {
	return &IngestHandler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// UploadAirlines handles POST /api/ingest/airlines.
func (h *IngestHandler) UploadAirlines(w http.ResponseWriter, r *http.Request) {
	file, ok := h.openUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	summary, err := h.svc.IngestAirlines(r.Context(), file)
	if err != nil {
		respondWithIngestError(w, "airlines", err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// UploadAirports handles POST /api/ingest/airports.
func (h *IngestHandler) UploadAirports(w http.ResponseWriter, r *http.Request) {
	file, ok := h.openUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	summary, err := h.svc.IngestAirports(r.Context(), file)
	if err != nil {
		respondWithIngestError(w, "airports", err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// UploadRoutes handles POST /api/ingest/routes.
func (h *IngestHandler) UploadRoutes(w http.ResponseWriter, r *http.Request) {
	file, ok := h.openUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	summary, err := h.svc.IngestRoutes(r.Context(), file)
	if err != nil {
		respondWithIngestError(w, "routes", err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// openUpload enforces the size limit and returns the uploaded file. On
// failure the error response has been written.
func (h *IngestHandler) openUpload(w http.ResponseWriter, r *http.Request) (multipart.File, bool) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", h.maxUploadBytes))
			return nil, false
		}
		respondWithError(w, http.StatusBadRequest, "Expected a multipart form with a 'file' field: "+err.Error())
		return nil, false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing 'file' field in upload")
		return nil, false
	}
	return file, true
}

func respondWithIngestError(w http.ResponseWriter, kind string, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidUpload):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case isTooLarge(err):
		respondWithError(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to ingest %s: %v", kind, err))
	}
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	// multipart does not always wrap the reader error
	return strings.Contains(err.Error(), "request body too large")
}
