package ingest

import (
	"fmt"
	"strings"
)

// columnSet maps the many header spellings found in the datasets onto the
// canonical csv tags of one raw record type.
type columnSet struct {
	aliases map[string]string
	// required holds groups of canonical columns; each group needs at
	// least one member present in the header.
	required [][]string
}

func newColumnSet(fields map[string][]string, required ...[]string) columnSet {
	cs := columnSet{aliases: make(map[string]string), required: required}
	for canonical, names := range fields {
		cs.aliases[canonical] = canonical
		for _, n := range names {
			cs.aliases[n] = canonical
		}
	}
	return cs
}

var airlineColumns = newColumnSet(map[string][]string{
	"ext_id":   {"id", "airline_id", "idaerolinea"},
	"name":     {"nombre", "nombreaerolinea", "airline", "aerolinea"},
	"iata":     {"codigoiata", "codiata", "iata_code"},
	"icao":     {"codigoicao", "icao_code"},
	"country":  {"pais"},
	"callsign": {"indicativo"},
	"active":   {"activo", "activa"},
	"aliases":  {"alias"},
}, []string{"name"})

var airportColumns = newColumnSet(map[string][]string{
	"ext_id":         {"id", "airport_id", "idairport", "idaeropuerto"},
	"name":           {"nombre", "nombreaeropuerto", "airport"},
	"city":           {"ciudad"},
	"country":        {"pais"},
	"iata":           {"codigoaeropuerto", "codigoiata", "iata_code"},
	"icao":           {"codigoicao", "icao_code"},
	"latitude":       {"lat", "latitud"},
	"longitude":      {"lon", "lng", "long", "longitud"},
	"altitude":       {"alt", "altitud", "altitude_ft", "elevation"},
	"utc_offset":     {"difutc", "timezone_offset", "utc"},
	"continent_code": {"continent", "codigocontinente"},
	"timezone":       {"tz", "tz_database", "timezoneolson", "olson"},
}, []string{"name"}, []string{"country"}, []string{"latitude"}, []string{"longitude"})

var routeColumns = newColumnSet(map[string][]string{
	"airline_code":       {"airline_iata", "codaerolinea", "airline"},
	"airline_ext_id":     {"airline_id", "idaerolinea"},
	"origin_code":        {"origin_iata", "aeropuertoorigen", "origen", "origin", "source_airport"},
	"origin_ext_id":      {"origin_id", "aeropuertoorigenid", "source_airport_id"},
	"destination_code":   {"destination_iata", "aeropuertodestino", "destino", "destination", "destination_airport"},
	"destination_ext_id": {"destination_id", "aeropuertodestinoid", "destination_airport_id"},
	"operated_carrier":   {"operadocarrier"},
	"stops":              {"escalas"},
	"equipment":          {"equipamiento"},
	"tickets_sold":       {"ticketsvendidos"},
	"capacity":           {"lugares", "asientos", "seats"},
	"occupancy":          {"load_factor"},
	"price_ticket":       {"precioticket", "price"},
	"total_km":           {"kilometrostotales", "distance_km"},
	"flight_date":        {"fecha", "date"},
},
	[]string{"origin_code", "origin_ext_id"},
	[]string{"destination_code", "destination_ext_id"},
	[]string{"flight_date"},
)

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.Trim(strings.TrimSpace(h), `"'`)
	return strings.ToLower(strings.TrimSpace(h))
}

// resolve returns the canonical header for a raw header row. Columns with
// no alias, and repeats of an already mapped field, get a placeholder name
// so that the decoder ignores them. missing lists the required groups the
// header cannot satisfy.
func (cs columnSet) resolve(header []string) (canonical []string, missing []string) {
	canonical = make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		field, ok := cs.aliases[normalizeHeader(h)]
		if !ok || used[field] {
			canonical[i] = fmt.Sprintf("_unmapped_%d", i)
			continue
		}
		used[field] = true
		canonical[i] = field
	}
	for _, group := range cs.required {
		found := false
		for _, f := range group {
			if used[f] {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, strings.Join(group, "|"))
		}
	}
	return canonical, missing
}
