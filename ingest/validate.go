package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/gewnthar/airroutes/models"
)

const (
	minAltitudeFt = -2000
	maxAltitudeFt = 30000
)

// ValidationError lists every field that failed the structural checks of
// one row.
type ValidationError struct {
	Fields []models.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, models.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) orNil() *ValidationError {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ValidateAirline normalizes a raw airline row. Invalid codes become nil;
// only a missing name rejects the row.
func ValidateAirline(raw models.RawAirline) (models.Airline, *ValidationError) {
	verr := &ValidationError{}
	a := models.Airline{
		ExtID:    ParseInt(raw.ExtID),
		Name:     CleanText(raw.Name),
		IATA:     NormalizeIATA(raw.IATA),
		ICAO:     NormalizeICAO(raw.ICAO),
		Country:  CleanText(raw.Country),
		Callsign: CleanText(raw.Callsign),
		Active:   true,
		Aliases:  CleanText(raw.Aliases),
	}
	if strings.TrimSpace(raw.Active) != "" {
		a.Active = ParseFlag(raw.Active)
	}
	if a.Name == nil {
		verr.add("name", "required")
	}
	return a, verr.orNil()
}

// ValidateAirport normalizes a raw airport row, repairing coordinates and
// deriving the UTC offset from the timezone when the offset column is
// unusable.
func ValidateAirport(raw models.RawAirport) (models.Airport, *ValidationError) {
	verr := &ValidationError{}
	a := models.Airport{
		ExtID:    ParseInt(raw.ExtID),
		City:     CleanText(raw.City),
		IATA:     NormalizeIATA(raw.IATA),
		ICAO:     NormalizeICAO(raw.ICAO),
		Timezone: CleanText(raw.Timezone),
	}

	if name := CleanText(raw.Name); name != nil {
		a.Name = *name
	} else {
		verr.add("name", "required")
	}
	if country := CleanText(raw.Country); country != nil {
		a.Country = *country
	} else {
		verr.add("country", "required")
	}

	// Repaired coordinates are always in range; only a missing or
	// unrecoverable value rejects the row.
	if lat := RepairLatitude(raw.Latitude); lat != nil {
		a.Latitude = *lat
	} else {
		verr.add("latitude", "required")
	}
	if lon := RepairLongitude(raw.Longitude); lon != nil {
		a.Longitude = *lon
	} else {
		verr.add("longitude", "required")
	}

	if alt := ParseInt(raw.Altitude); alt != nil {
		if *alt < minAltitudeFt || *alt > maxAltitudeFt {
			verr.add("altitude", "out of range (%d..%d ft): %d", minAltitudeFt, maxAltitudeFt, *alt)
		} else {
			a.AltitudeFt = alt
		}
	}

	a.UTCOffset = ParseUTCOffset(raw.UTCOffset)
	if a.UTCOffset == nil && a.Timezone != nil {
		a.UTCOffset = OffsetFromTimezone(*a.Timezone)
	}

	a.ContinentCode = continentCode(raw.ContinentCode)
	return a, verr.orNil()
}

// continentCode keeps at most two letters. "NA" is North America here, not
// a null token.
func continentCode(raw string) *string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s != "NA" && IsNullToken(s) {
		return nil
	}
	if code := []rune(s); len(code) > 2 {
		s = string(code[:2])
	}
	return &s
}

// RouteRow is a validated route line whose airport and airline references
// are still external codes or dataset ids.
type RouteRow struct {
	AirlineCode      *string
	AirlineExtID     *int64
	OriginCode       *string
	OriginExtID      *int64
	DestinationCode  *string
	DestinationExtID *int64
	OperatedCarrier  bool
	Stops            int64
	Equipment        *string
	TicketsSold      *int64
	Capacity         *int64
	Occupancy        *float64
	PriceTicket      *float64
	TotalKm          *float64
	FlightDate       *time.Time
}

// ValidateRoute normalizes a raw route row. Missing airports and a missing
// flight date are not structural errors here; the resolver reports them.
func ValidateRoute(raw models.RawRoute) (RouteRow, *ValidationError) {
	verr := &ValidationError{}
	r := RouteRow{
		AirlineCode:      UpperOrNil(raw.AirlineCode),
		AirlineExtID:     ParseInt(raw.AirlineExtID),
		OriginCode:       UpperOrNil(raw.OriginCode),
		OriginExtID:      ParseInt(raw.OriginExtID),
		DestinationCode:  UpperOrNil(raw.DestinationCode),
		DestinationExtID: ParseInt(raw.DestinationExtID),
		OperatedCarrier:  ParseFlag(raw.OperatedCarrier),
		Equipment:        UpperOrNil(raw.Equipment),
		TicketsSold:      ParseInt(raw.TicketsSold),
		Capacity:         ParseInt(raw.Capacity),
		PriceTicket:      ParseNumber(raw.PriceTicket),
		TotalKm:          ParseNumber(raw.TotalKm),
		FlightDate:       ParseFlightDate(raw.FlightDate),
	}
	if stops := ParseInt(raw.Stops); stops != nil {
		r.Stops = *stops
	}

	for _, f := range []struct {
		name string
		v    *int64
	}{
		{"capacity", r.Capacity},
		{"tickets_sold", r.TicketsSold},
		{"stops", &r.Stops},
	} {
		if f.v != nil && *f.v < 0 {
			verr.add(f.name, "must not be negative: %d", *f.v)
		}
	}
	for _, f := range []struct {
		name string
		v    *float64
	}{
		{"price_ticket", r.PriceTicket},
		{"total_km", r.TotalKm},
	} {
		if f.v != nil && *f.v < 0 {
			verr.add(f.name, "must not be negative: %v", *f.v)
		}
	}

	switch occ := ParseNumber(raw.Occupancy); {
	case occ != nil:
		v := NormalizeOccupancy(*occ)
		r.Occupancy = &v
	case r.TicketsSold != nil && r.Capacity != nil && *r.Capacity > 0:
		v := clampUnit(float64(*r.TicketsSold) / float64(*r.Capacity))
		r.Occupancy = &v
	}
	return r, verr.orNil()
}

// Route builds the row to persist once the foreign keys are resolved.
// Callers must check fks.SkipReason first.
func (r RouteRow) Route(fks RouteFKs) models.Route {
	return models.Route{
		AirlineID:       fks.AirlineID,
		OriginID:        *fks.OriginID,
		DestinationID:   *fks.DestinationID,
		Capacity:        r.Capacity,
		TicketsSold:     r.TicketsSold,
		Occupancy:       r.Occupancy,
		PriceTicket:     r.PriceTicket,
		TotalKm:         r.TotalKm,
		FlightDate:      *r.FlightDate,
		OperatedCarrier: r.OperatedCarrier,
		Stops:           r.Stops,
		Equipment:       r.Equipment,
	}
}
