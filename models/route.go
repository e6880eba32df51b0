// models/route.go
package models

import "time"

// Route is one flight on one date between two stored airports.
type Route struct {
	ID              int64     `db:"id" json:"id"`
	AirlineID       *int64    `db:"airline_id" json:"airline_id,omitempty"`
	OriginID        int64     `db:"origin_id" json:"origin_id"`
	DestinationID   int64     `db:"destination_id" json:"destination_id"`
	Capacity        *int64    `db:"capacity" json:"capacity,omitempty"`
	TicketsSold     *int64    `db:"tickets_sold" json:"tickets_sold,omitempty"`
	Occupancy       *float64  `db:"occupancy" json:"occupancy,omitempty"` // 0..1
	PriceTicket     *float64  `db:"price_ticket" json:"price_ticket,omitempty"`
	TotalKm         *float64  `db:"total_km" json:"total_km,omitempty"`
	FlightDate      time.Time `db:"flight_date" json:"flight_date"`
	OperatedCarrier bool      `db:"operated_carrier" json:"operated_carrier"`
	Stops           int64     `db:"stops" json:"stops"`
	Equipment       *string   `db:"equipment" json:"equipment,omitempty"`
}

// RawRoute mirrors the routes CSV after header aliases are resolved.
type RawRoute struct {
	AirlineCode      string `csv:"airline_code"`
	AirlineExtID     string `csv:"airline_ext_id"`
	OriginCode       string `csv:"origin_code"`
	OriginExtID      string `csv:"origin_ext_id"`
	DestinationCode  string `csv:"destination_code"`
	DestinationExtID string `csv:"destination_ext_id"`
	OperatedCarrier  string `csv:"operated_carrier"`
	Stops            string `csv:"stops"`
	Equipment        string `csv:"equipment"`
	TicketsSold      string `csv:"tickets_sold"`
	Capacity         string `csv:"capacity"`
	Occupancy        string `csv:"occupancy"`
	PriceTicket      string `csv:"price_ticket"`
	TotalKm          string `csv:"total_km"`
	FlightDate       string `csv:"flight_date"`
}

// RefEntry is the identity of one stored airline or airport: the raw
// material for the per-batch reference maps.
type RefEntry struct {
	ID    int64
	IATA  *string
	ICAO  *string
	ExtID *int64
}
