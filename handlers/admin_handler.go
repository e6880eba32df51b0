// handlers/admin_handler.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gewnthar/airroutes/models"
	"github.com/gewnthar/airroutes/scraper"
	"github.com/gewnthar/airroutes/services"
)

// Refresher is the data-source refresh surface of the admin endpoints.
type Refresher interface {
	Refresh(ctx context.Context, name string, force bool) (*services.RefreshResult, error)
	RefreshAll(ctx context.Context, force bool) ([]*services.RefreshResult, error)
	Versions(ctx context.Context) ([]models.DataSourceVersion, error)
}

type AdminHandler struct {
	refresher Refresher
}

func NewAdminHandler(r Refresher) *AdminHandler {
	return &AdminHandler{refresher: r}
}

// RefreshDataSource handles POST /api/admin/refresh/{source}, where source
// is airlines, airports, routes or all. ?force=true ingests the download
// even when it matches the last recorded file.
func (h *AdminHandler) RefreshDataSource(w http.ResponseWriter, r *http.Request) {
	source := strings.ToLower(chi.URLParam(r, "source"))
	force := false
	if v := r.URL.Query().Get("force"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid force value '%s'", v))
			return
		}
		force = b
	}

	if source == "all" {
		results, err := h.refresher.RefreshAll(r.Context(), force)
		if err != nil {
			respondWithRefreshError(w, source, err)
			return
		}
		respondWithJSON(w, http.StatusOK, results)
		return
	}

	result, err := h.refresher.Refresh(r.Context(), source, force)
	if err != nil {
		respondWithRefreshError(w, source, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// ListDataSources handles GET /api/admin/sources.
func (h *AdminHandler) ListDataSources(w http.ResponseWriter, r *http.Request) {
	versions, err := h.refresher.Versions(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list data sources: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, versions)
}

func respondWithRefreshError(w http.ResponseWriter, source string, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownSource):
		respondWithError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid source '%s'. Use 'airlines', 'airports', 'routes', or 'all'.", source))
	case errors.Is(err, scraper.ErrNotConfigured):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidUpload):
		respondWithError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Downloaded %s data is not usable: %v", source, err))
	default:
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to refresh %s data: %v", source, err))
	}
}
