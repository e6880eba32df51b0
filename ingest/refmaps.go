package ingest

import (
	"strings"

	"github.com/gewnthar/airroutes/models"
)

// RefMaps is an immutable lookup of stored airline or airport ids by IATA
// code, ICAO code and external dataset id. Build one per ingestion batch
// and pass it by value; it is never shared between batches.
type RefMaps struct {
	iata map[string]int64
	icao map[string]int64
	ext  map[int64]int64
}

// NewRefMaps indexes the given rows. Codes are upper-cased; rows without a
// code or external id are simply absent from that mapping.
func NewRefMaps(entries []models.RefEntry) RefMaps {
	m := RefMaps{
		iata: make(map[string]int64, len(entries)),
		icao: make(map[string]int64, len(entries)),
		ext:  make(map[int64]int64, len(entries)),
	}
	for _, e := range entries {
		if e.IATA != nil {
			if c := strings.ToUpper(strings.TrimSpace(*e.IATA)); c != "" {
				m.iata[c] = e.ID
			}
		}
		if e.ICAO != nil {
			if c := strings.ToUpper(strings.TrimSpace(*e.ICAO)); c != "" {
				m.icao[c] = e.ID
			}
		}
		if e.ExtID != nil {
			m.ext[*e.ExtID] = e.ID
		}
	}
	return m
}

func (m RefMaps) ByIATA(code string) (int64, bool) {
	id, ok := m.iata[strings.ToUpper(code)]
	return id, ok
}

func (m RefMaps) ByICAO(code string) (int64, bool) {
	id, ok := m.icao[strings.ToUpper(code)]
	return id, ok
}

func (m RefMaps) ByExtID(ext int64) (int64, bool) {
	id, ok := m.ext[ext]
	return id, ok
}

// Sizes reports the number of IATA, ICAO and external-id keys.
func (m RefMaps) Sizes() (iata, icao, ext int) {
	return len(m.iata), len(m.icao), len(m.ext)
}
