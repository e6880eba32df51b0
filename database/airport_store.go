// database/airport_store.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gewnthar/airroutes/models"
)

const airportSelect = `SELECT id, ext_id, name, city, country, iata, icao, latitude, longitude,
		altitude_ft, utc_offset, continent_code, timezone FROM airports`

const airportInsert = `INSERT INTO airports (ext_id, name, city, country, iata, icao, latitude, longitude,
		altitude_ft, utc_offset, continent_code, timezone)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func scanAirport(row rowScanner) (models.Airport, error) {
	var a models.Airport
	err := row.Scan(&a.ID, &a.ExtID, &a.Name, &a.City, &a.Country, &a.IATA, &a.ICAO,
		&a.Latitude, &a.Longitude, &a.AltitudeFt, &a.UTCOffset, &a.ContinentCode, &a.Timezone)
	return a, err
}

// FindAirport looks an airport up by external id first, then by either
// code. It returns nil when nothing matches.
func (s *Store) FindAirport(ctx context.Context, extID *int64, iata, icao *string) (*models.Airport, error) {
	if extID != nil {
		a, err := s.findAirport(ctx, "ext_id = ?", []any{*extID})
		if err != nil || a != nil {
			return a, err
		}
	}
	where, args := codeFilter(iata, icao)
	if where == "" {
		return nil, nil
	}
	return s.findAirport(ctx, where, args)
}

func (s *Store) findAirport(ctx context.Context, where string, args []any) (*models.Airport, error) {
	query := airportSelect + " WHERE " + where + " ORDER BY id LIMIT 1"
	a, err := scanAirport(s.db.QueryRowContext(ctx, s.dialect.Rebind(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query airport (%s): %w", where, err)
	}
	return &a, nil
}

// GetOrCreateAirport returns the stored airport with the same identity as
// a, or inserts a. Conflicts from concurrent inserts are reconciled the
// same way as for airlines.
func (s *Store) GetOrCreateAirport(ctx context.Context, a models.Airport) (models.Airport, error) {
	hasIdentity := a.ExtID != nil || a.IATA != nil || a.ICAO != nil
	if hasIdentity {
		existing, err := s.FindAirport(ctx, a.ExtID, a.IATA, a.ICAO)
		if err != nil {
			return models.Airport{}, err
		}
		if existing != nil {
			return *existing, nil
		}
	}

	id, err := s.dialect.InsertID(ctx, s.db, airportInsert,
		a.ExtID, a.Name, a.City, a.Country, a.IATA, a.ICAO, a.Latitude, a.Longitude,
		a.AltitudeFt, a.UTCOffset, a.ContinentCode, a.Timezone)
	if err == nil {
		a.ID = id
		return a, nil
	}
	if !errors.Is(err, ErrConflict) || !hasIdentity {
		return models.Airport{}, fmt.Errorf("failed to insert airport %q: %w", a.Name, err)
	}

	slog.Debug("Airport insert conflicted, re-reading", "name", a.Name, "iata", deref(a.IATA))
	existing, ferr := s.FindAirport(ctx, a.ExtID, a.IATA, a.ICAO)
	if ferr != nil {
		return models.Airport{}, ferr
	}
	if existing == nil {
		return models.Airport{}, fmt.Errorf("airport conflict without a matching row: %w", err)
	}
	return *existing, nil
}
