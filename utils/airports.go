// utils/airports.go
package utils

import "strings"

// IATAFromUSICAO derives the IATA code of a contiguous-US airport from its
// ICAO code ("KJFK" -> "JFK"). ok is false for any other code.
func IATAFromUSICAO(code string) (string, bool) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if len(c) != 4 || c[0] != 'K' {
		return "", false
	}
	for _, r := range c[1:] {
		if r < 'A' || r > 'Z' {
			return "", false
		}
	}
	return c[1:], true
}
