// database/route_store.go
package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/gewnthar/airroutes/models"
)

var routeInsertColumns = []string{
	"airline_id", "origin_id", "destination_id", "capacity", "tickets_sold", "occupancy",
	"price_ticket", "total_km", "flight_date", "operated_carrier", "stops", "equipment",
}

// routeInsertQuery binds one models.Route by its db tags. sqlx expands the
// VALUES group once per element when bound to a slice.
var routeInsertQuery = "INSERT INTO routes (" + strings.Join(routeInsertColumns, ", ") +
	") VALUES (:" + strings.Join(routeInsertColumns, ", :") + ")"

// BulkInsertRoutes saves routes in a single transaction using multi-row
// INSERTs of at most chunkSize rows. Any failure rolls the whole batch
// back; nothing is committed partially.
func (s *Store) BulkInsertRoutes(ctx context.Context, routes []models.Route) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database connection is not initialized")
	}
	if len(routes) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction for routes: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for start := 0; start < len(routes); start += s.chunkSize {
		chunk := routes[start:min(start+s.chunkSize, len(routes))]
		query, args, err := sqlx.Named(routeInsertQuery, chunk)
		if err != nil {
			return 0, fmt.Errorf("failed to bind routes %d-%d: %w", start+1, start+len(chunk), err)
		}
		if _, err := tx.ExecContext(ctx, s.dialect.Rebind(query), args...); err != nil {
			return 0, fmt.Errorf("failed to insert routes %d-%d: %w", start+1, start+len(chunk), err)
		}
		inserted += len(chunk)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction for routes: %w", err)
	}
	slog.Debug("Saved routes", "count", inserted, "chunk_size", s.chunkSize)
	return inserted, nil
}
