package ingest

import (
	"strings"
	"time"
)

// flightDateLayouts are tried in order. Slash dates are read month first.
var flightDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"20060102",
}

// ParseFlightDate returns the calendar date at UTC midnight, or nil.
func ParseFlightDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if IsNullToken(s) {
		return nil
	}
	for _, layout := range flightDateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &d
	}
	return nil
}
