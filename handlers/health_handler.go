// handlers/health_handler.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the database answers a ping.
func HealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			slog.Error("Health check failed", "error", err)
			respondWithJSON(w, http.StatusInternalServerError, map[string]string{
				"status": "error", "message": "database connection error",
			})
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]string{
			"status": "ok", "message": "airroutes backend is healthy",
		})
	}
}
