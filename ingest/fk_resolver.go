package ingest

import (
	"strings"

	"github.com/gewnthar/airroutes/models"
	"github.com/gewnthar/airroutes/utils"
)

// RouteFKs holds the internal ids resolved for one route row. AirlineID is
// optional; a route without an origin or destination is not insertable.
type RouteFKs struct {
	OriginID      *int64
	DestinationID *int64
	AirlineID     *int64
}

// ResolveRouteFKs maps a route's external references onto stored ids.
func ResolveRouteFKs(row RouteRow, airports, airlines RefMaps) RouteFKs {
	return RouteFKs{
		OriginID:      resolveAirport(row.OriginExtID, row.OriginCode, airports),
		DestinationID: resolveAirport(row.DestinationExtID, row.DestinationCode, airports),
		AirlineID:     resolveRef(row.AirlineExtID, row.AirlineCode, airlines),
	}
}

// SkipReason returns the reason the row cannot be inserted, or "" when it
// can. Missing airports take precedence over a missing flight date.
func (f RouteFKs) SkipReason(row RouteRow) string {
	if f.OriginID == nil || f.DestinationID == nil {
		return models.SkipAirportFKMissing
	}
	if row.FlightDate == nil {
		return models.SkipFlightDateNull
	}
	return ""
}

// resolveAirport also accepts a contiguous-US ICAO code for an airport
// stored with only its IATA code.
func resolveAirport(ext *int64, code *string, m RefMaps) *int64 {
	if id := resolveRef(ext, code, m); id != nil || code == nil {
		return id
	}
	if iata, ok := utils.IATAFromUSICAO(*code); ok {
		if id, ok := m.ByIATA(iata); ok {
			return &id
		}
	}
	return nil
}

// resolveRef prefers an external id match, then a four-letter code as ICAO,
// then a code of up to three letters as IATA.
func resolveRef(ext *int64, code *string, m RefMaps) *int64 {
	if ext != nil {
		if id, ok := m.ByExtID(*ext); ok {
			return &id
		}
	}
	if code == nil {
		return nil
	}
	c := strings.ToUpper(strings.TrimSpace(*code))
	var (
		id int64
		ok bool
	)
	switch n := len(c); {
	case n == 4:
		id, ok = m.ByICAO(c)
	case n > 0 && n <= 3:
		id, ok = m.ByIATA(c)
	}
	if !ok {
		return nil
	}
	return &id
}
