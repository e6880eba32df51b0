package ingest

import (
	"math"
	"strconv"
	"strings"
)

const (
	latitudeLimit  = 90.0
	longitudeLimit = 180.0
)

// RepairLatitude parses a latitude, repairing the misplaced decimal points
// found in the airports dataset. A non-nil result is always within
// [-90, 90]; nil means no plausible value could be recovered.
func RepairLatitude(raw string) *float64 {
	return repairCoordinate(raw, latitudeLimit, false)
}

// RepairLongitude is RepairLatitude for longitudes. Longitudes may also be
// reconstructed with a three-digit integer part.
func RepairLongitude(raw string) *float64 {
	return repairCoordinate(raw, longitudeLimit, true)
}

func repairCoordinate(raw string, limit float64, longitude bool) *float64 {
	s := strings.TrimSpace(raw)
	if IsNullToken(s) {
		return nil
	}
	s = strings.ReplaceAll(s, ",", ".")

	x, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return coordinateFromDigits(s, limit, longitude)
	}
	// Shift the decimal point left until the value is plausible. limit is
	// at least 1, so this always ends in range.
	for math.Abs(x) > limit {
		x /= 10
	}
	return &x
}

// coordinateFromDigits rebuilds a coordinate from the bare digit string.
// Candidate A treats the trailing six digits as the fraction; candidate B
// (longitudes only) treats the first three digits as the integer part.
func coordinateFromDigits(s string, limit float64, longitude bool) *float64 {
	sign := 1.0
	if strings.HasPrefix(s, "-") {
		sign = -1
	}
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return nil
	}

	var candA float64
	if len(digits) > 6 {
		candA = sign * mustParse(digits[:len(digits)-6]+"."+digits[len(digits)-6:])
	} else {
		candA = sign * mustParse(digits)
	}

	var candB *float64
	if longitude && len(digits) >= 4 {
		v := sign * mustParse(digits[:3]+"."+digits[3:])
		candB = &v
	}

	if candB != nil && inRange(*candB, limit) && math.Abs(candA) < 10 && math.Abs(*candB) >= 10 {
		return candB
	}
	if inRange(candA, limit) {
		return &candA
	}
	if candB != nil && inRange(*candB, limit) {
		return candB
	}
	return nil
}

// mustParse is only called on strings made of digits and at most one dot.
func mustParse(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func inRange(v, limit float64) bool {
	return v >= -limit && v <= limit
}
