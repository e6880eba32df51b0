// models/airline.go
package models

// Airline is one carrier row. IATA and ICAO identify the row when present;
// either may be nil.
type Airline struct {
	ID       int64   `db:"id" json:"id"`
	ExtID    *int64  `db:"ext_id" json:"ext_id,omitempty"`
	Name     *string `db:"name" json:"name,omitempty"`
	IATA     *string `db:"iata" json:"iata,omitempty"`
	ICAO     *string `db:"icao" json:"icao,omitempty"`
	Country  *string `db:"country" json:"country,omitempty"`
	Callsign *string `db:"callsign" json:"callsign,omitempty"`
	Active   bool    `db:"active" json:"active"`
	Aliases  *string `db:"aliases" json:"aliases,omitempty"`
}

// RawAirline mirrors the airlines CSV after header aliases are resolved.
// Every field is kept as text; the ingest validators do the coercion.
type RawAirline struct {
	ExtID    string `csv:"ext_id"`
	Name     string `csv:"name"`
	IATA     string `csv:"iata"`
	ICAO     string `csv:"icao"`
	Country  string `csv:"country"`
	Callsign string `csv:"callsign"`
	Active   string `csv:"active"`
	Aliases  string `csv:"aliases"`
}
