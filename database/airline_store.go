// database/airline_store.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gewnthar/airroutes/models"
)

const airlineSelect = `SELECT id, ext_id, name, iata, icao, country, callsign, active, aliases FROM airlines`

const airlineInsert = `INSERT INTO airlines (ext_id, name, iata, icao, country, callsign, active, aliases)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func scanAirline(row rowScanner) (models.Airline, error) {
	var a models.Airline
	err := row.Scan(&a.ID, &a.ExtID, &a.Name, &a.IATA, &a.ICAO, &a.Country, &a.Callsign, &a.Active, &a.Aliases)
	return a, err
}

// FindAirlineByCodes returns the airline matching either code, or nil when
// there is none or both codes are nil.
func (s *Store) FindAirlineByCodes(ctx context.Context, iata, icao *string) (*models.Airline, error) {
	where, args := codeFilter(iata, icao)
	if where == "" {
		return nil, nil
	}
	query := airlineSelect + " WHERE " + where + " ORDER BY id LIMIT 1"
	a, err := scanAirline(s.db.QueryRowContext(ctx, s.dialect.Rebind(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query airline by codes: %w", err)
	}
	return &a, nil
}

// GetOrCreateAirline returns the stored airline sharing a code with a, or
// inserts a. A concurrent insert of the same airline surfaces as a unique
// violation and is resolved by reading the winner's row. Airlines without
// any code are always inserted.
func (s *Store) GetOrCreateAirline(ctx context.Context, a models.Airline) (models.Airline, error) {
	hasCodes := a.IATA != nil || a.ICAO != nil
	if hasCodes {
		existing, err := s.FindAirlineByCodes(ctx, a.IATA, a.ICAO)
		if err != nil {
			return models.Airline{}, err
		}
		if existing != nil {
			return *existing, nil
		}
	}

	id, err := s.dialect.InsertID(ctx, s.db, airlineInsert,
		a.ExtID, a.Name, a.IATA, a.ICAO, a.Country, a.Callsign, a.Active, a.Aliases)
	if err == nil {
		a.ID = id
		return a, nil
	}
	if !errors.Is(err, ErrConflict) || !hasCodes {
		return models.Airline{}, fmt.Errorf("failed to insert airline: %w", err)
	}

	slog.Debug("Airline insert conflicted, re-reading", "iata", deref(a.IATA), "icao", deref(a.ICAO))
	existing, ferr := s.FindAirlineByCodes(ctx, a.IATA, a.ICAO)
	if ferr != nil {
		return models.Airline{}, ferr
	}
	if existing == nil {
		return models.Airline{}, fmt.Errorf("airline conflict without a matching row: %w", err)
	}
	return *existing, nil
}

// codeFilter builds "iata = ? OR icao = ?" for the codes that are set.
func codeFilter(iata, icao *string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if iata != nil {
		conds = append(conds, "iata = ?")
		args = append(args, *iata)
	}
	if icao != nil {
		conds = append(conds, "icao = ?")
		args = append(args, *icao)
	}
	return strings.Join(conds, " OR "), args
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
