package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/airroutes/models"
)

func strp(s string) *string { return &s }
func i64p(i int64) *int64   { return &i }

func testRefMaps() (airports, airlines RefMaps) {
	airports = NewRefMaps([]models.RefEntry{
		{ID: 1, IATA: strp("JFK"), ICAO: strp("KJFK"), ExtID: i64p(3797)},
		{ID: 2, IATA: strp("lax"), ICAO: strp("KLAX")},
		{ID: 3, ICAO: strp("SAEZ"), ExtID: i64p(3988)},
		{ID: 4, IATA: strp("EWR")},
	})
	airlines = NewRefMaps([]models.RefEntry{
		{ID: 10, IATA: strp("AAL"), ExtID: i64p(24)},
		{ID: 11, ICAO: strp("ARGA")},
	})
	return airports, airlines
}

func TestNewRefMaps(t *testing.T) {
	airports, _ := testRefMaps()
	iata, icao, ext := airports.Sizes()
	assert.Equal(t, 3, iata)
	assert.Equal(t, 3, icao)
	assert.Equal(t, 2, ext)

	id, ok := airports.ByIATA("LAX")
	assert.True(t, ok, "codes are stored upper-cased")
	assert.Equal(t, int64(2), id)
}

func TestResolveRouteFKs(t *testing.T) {
	airports, airlines := testRefMaps()
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		row         RouteRow
		origin      *int64
		destination *int64
		airline     *int64
		reason      string
	}{
		{
			name:        "iata and icao codes",
			row:         RouteRow{OriginCode: strp("JFK"), DestinationCode: strp("klax"), AirlineCode: strp("AAL"), FlightDate: &date},
			origin:      i64p(1),
			destination: i64p(2),
			airline:     i64p(10),
		},
		{
			name:        "external id wins over code",
			row:         RouteRow{OriginExtID: i64p(3988), OriginCode: strp("JFK"), DestinationExtID: i64p(3797), AirlineExtID: i64p(24), FlightDate: &date},
			origin:      i64p(3),
			destination: i64p(1),
			airline:     i64p(10),
		},
		{
			name:        "unknown external id falls back to code",
			row:         RouteRow{OriginExtID: i64p(99999), OriginCode: strp("SAEZ"), DestinationCode: strp("LAX"), FlightDate: &date},
			origin:      i64p(3),
			destination: i64p(2),
		},
		{
			name:        "airline is optional",
			row:         RouteRow{OriginCode: strp("JFK"), DestinationCode: strp("LAX"), AirlineCode: strp("ZZZ"), FlightDate: &date},
			origin:      i64p(1),
			destination: i64p(2),
		},
		{
			name:        "four-letter airline code as icao",
			row:         RouteRow{OriginCode: strp("JFK"), DestinationCode: strp("LAX"), AirlineCode: strp("ARGA"), FlightDate: &date},
			origin:      i64p(1),
			destination: i64p(2),
			airline:     i64p(11),
		},
		{
			name:        "us icao code matches an iata-only airport",
			row:         RouteRow{OriginCode: strp("KEWR"), DestinationCode: strp("LAX"), FlightDate: &date},
			origin:      i64p(4),
			destination: i64p(2),
		},
		{
			name:        "unknown origin",
			row:         RouteRow{OriginCode: strp("XXX"), DestinationCode: strp("LAX"), FlightDate: &date},
			destination: i64p(2),
			reason:      models.SkipAirportFKMissing,
		},
		{
			name:   "no destination at all",
			row:    RouteRow{OriginCode: strp("JFK")},
			origin: i64p(1),
			reason: models.SkipAirportFKMissing,
		},
		{
			name:        "five-letter code never matches",
			row:         RouteRow{OriginCode: strp("KJFKX"), DestinationCode: strp("LAX"), FlightDate: &date},
			destination: i64p(2),
			reason:      models.SkipAirportFKMissing,
		},
		{
			name:        "missing flight date",
			row:         RouteRow{OriginCode: strp("JFK"), DestinationCode: strp("LAX")},
			origin:      i64p(1),
			destination: i64p(2),
			reason:      models.SkipFlightDateNull,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fks := ResolveRouteFKs(tt.row, airports, airlines)
			assert.Equal(t, tt.origin, fks.OriginID)
			assert.Equal(t, tt.destination, fks.DestinationID)
			assert.Equal(t, tt.airline, fks.AirlineID)
			assert.Equal(t, tt.reason, fks.SkipReason(tt.row))
		})
	}
}

func TestRouteRowToRoute(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	row := RouteRow{Capacity: i64p(200), Stops: 1, FlightDate: &date, OperatedCarrier: true}
	fks := RouteFKs{OriginID: i64p(1), DestinationID: i64p(2)}
	require.Empty(t, fks.SkipReason(row))

	route := row.Route(fks)
	assert.Equal(t, int64(1), route.OriginID)
	assert.Equal(t, int64(2), route.DestinationID)
	assert.Nil(t, route.AirlineID)
	assert.Equal(t, date, route.FlightDate)
	assert.Equal(t, int64(1), route.Stops)
	assert.True(t, route.OperatedCarrier)
}
