// models/airport.go
package models

// Airport is one airport row. Altitude is stored in feet, UTCOffset in hours
// (always a multiple of 0.25).
type Airport struct {
	ID            int64    `db:"id" json:"id"`
	ExtID         *int64   `db:"ext_id" json:"ext_id,omitempty"`
	Name          string   `db:"name" json:"name"`
	City          *string  `db:"city" json:"city,omitempty"`
	Country       string   `db:"country" json:"country"`
	IATA          *string  `db:"iata" json:"iata,omitempty"`
	ICAO          *string  `db:"icao" json:"icao,omitempty"`
	Latitude      float64  `db:"latitude" json:"latitude"`
	Longitude     float64  `db:"longitude" json:"longitude"`
	AltitudeFt    *int64   `db:"altitude_ft" json:"altitude_ft,omitempty"`
	UTCOffset     *float64 `db:"utc_offset" json:"utc_offset,omitempty"`
	ContinentCode *string  `db:"continent_code" json:"continent_code,omitempty"`
	Timezone      *string  `db:"timezone" json:"timezone,omitempty"`
}

// RawAirport mirrors the airports CSV after header aliases are resolved.
type RawAirport struct {
	ExtID         string `csv:"ext_id"`
	Name          string `csv:"name"`
	City          string `csv:"city"`
	Country       string `csv:"country"`
	IATA          string `csv:"iata"`
	ICAO          string `csv:"icao"`
	Latitude      string `csv:"latitude"`
	Longitude     string `csv:"longitude"`
	Altitude      string `csv:"altitude"`
	UTCOffset     string `csv:"utc_offset"`
	ContinentCode string `csv:"continent_code"`
	Timezone      string `csv:"timezone"`
}
