package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // offsets must resolve on hosts without a zoneinfo database
)

const (
	minUTCOffset = -12.0
	maxUTCOffset = 14.0
	maxOffsetMin = 840.0
)

// offsetReference is a fixed winter date so that the zone fallback does not
// depend on daylight saving.
var offsetReference = time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)

// ParseUTCOffset accepts decimal hours ("5.75", "12,75"), signed H:MM
// ("-3:30", "+9:00") and minutes ("330"; any magnitude above 14 and up to
// 840 is read as minutes). The result is snapped to the nearest quarter hour
// and lies in [-12,14], or is nil.
func ParseUTCOffset(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if IsNullToken(s) {
		return nil
	}
	s = strings.ReplaceAll(s, ",", ".")

	if strings.Contains(s, ":") {
		if d, ok := parseHourMinute(s); ok {
			return validQuarter(snapQuarter(d))
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	if v >= minUTCOffset && v <= maxUTCOffset {
		return validQuarter(snapQuarter(v))
	}
	if math.Abs(v) > maxUTCOffset && math.Abs(v) <= maxOffsetMin {
		return validQuarter(snapQuarter(v / 60))
	}
	return nil
}

func parseHourMinute(s string) (float64, bool) {
	sign := 1.0
	if strings.HasPrefix(s, "-") {
		sign = -1
	}
	s = strings.NewReplacer("+", "", "-", "").Replace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, false
	}
	return sign * (float64(h) + float64(m)/60), true
}

// OffsetFromTimezone derives the UTC offset of an IANA zone at a fixed
// reference date.
func OffsetFromTimezone(name string) *float64 {
	name = strings.TrimSpace(name)
	if name == "" || name == "Local" || IsNullToken(name) {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil
	}
	_, secs := offsetReference.In(loc).Zone()
	return validQuarter(snapQuarter(float64(secs) / 3600))
}

// snapQuarter rounds half away from zero to the nearest 0.25.
func snapQuarter(v float64) float64 {
	return math.Round(v*4) / 4
}

func isQuarter(v float64) bool {
	return v*4 == math.Trunc(v*4)
}

func validQuarter(v float64) *float64 {
	if v < minUTCOffset || v > maxUTCOffset || !isQuarter(v) {
		return nil
	}
	if v == 0 {
		v = 0 // drop negative zero
	}
	return &v
}
