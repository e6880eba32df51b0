// database/refs_store.go
package database

import (
	"context"
	"fmt"

	"github.com/gewnthar/airroutes/models"
)

// LoadAirportRefs reads the identity columns of every stored airport.
func (s *Store) LoadAirportRefs(ctx context.Context) ([]models.RefEntry, error) {
	return s.loadRefs(ctx, "airports")
}

// LoadAirlineRefs reads the identity columns of every stored airline.
func (s *Store) LoadAirlineRefs(ctx context.Context) ([]models.RefEntry, error) {
	return s.loadRefs(ctx, "airlines")
}

func (s *Store) loadRefs(ctx context.Context, table string) ([]models.RefEntry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, iata, icao, ext_id FROM "+table)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s refs: %w", table, err)
	}
	defer rows.Close()

	var refs []models.RefEntry
	for rows.Next() {
		var e models.RefEntry
		if err := rows.Scan(&e.ID, &e.IATA, &e.ICAO, &e.ExtID); err != nil {
			return nil, fmt.Errorf("failed to scan %s ref: %w", table, err)
		}
		refs = append(refs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s refs: %w", table, err)
	}
	return refs, nil
}
