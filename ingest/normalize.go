// Package ingest turns uploaded airline, airport and route CSVs into
// validated records and resolves route foreign keys against per-batch
// reference maps.
//
// The normalizers in this file never fail: messy input coerces to a typed
// value or to nil.
package ingest

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	iataRe = regexp.MustCompile(`^[A-Z]{3}$`)
	icaoRe = regexp.MustCompile(`^[A-Z]{4}$`)
)

// nullTokens are compared against the trimmed, upper-cased input.
var nullTokens = map[string]struct{}{
	"":          {},
	"N":         {},
	"NA":        {},
	"N/A":       {},
	"NONE":      {},
	"NULL":      {},
	`\N`:        {},
	"-":         {},
	"--":        {},
	"NAN":       {},
	"NAN()":     {},
	"NULL()":    {},
	"?":         {},
	"UNKNOWN":   {},
	"INF":       {},
	"+INF":      {},
	"-INF":      {},
	"INFINITY":  {},
	"+INFINITY": {},
	"-INFINITY": {},
}

// IsNullToken reports whether s is one of the dataset's spellings of "no value".
func IsNullToken(s string) bool {
	_, ok := nullTokens[strings.ToUpper(strings.TrimSpace(s))]
	return ok
}

// ParseNumber accepts a comma or a dot as decimal separator.
func ParseNumber(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if IsNullToken(s) {
		return nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseInt parses like ParseNumber and truncates toward zero.
func ParseInt(raw string) *int64 {
	v := ParseNumber(raw)
	if v == nil || math.Abs(*v) > math.MaxInt64/2 {
		return nil
	}
	i := int64(*v)
	return &i
}

// ParseFlag implements the dataset's single-letter convention: "Y" is true,
// anything else is false.
func ParseFlag(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "Y")
}

// NormalizeIATA returns the upper-cased code when it is exactly three letters.
func NormalizeIATA(raw string) *string {
	return normalizeCode(raw, iataRe)
}

// NormalizeICAO returns the upper-cased code when it is exactly four letters.
func NormalizeICAO(raw string) *string {
	return normalizeCode(raw, icaoRe)
}

func normalizeCode(raw string, re *regexp.Regexp) *string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if IsNullToken(s) || !re.MatchString(s) {
		return nil
	}
	return &s
}

// CleanText trims s and drops empty values and null tokens.
func CleanText(raw string) *string {
	s := strings.TrimSpace(raw)
	if IsNullToken(s) {
		return nil
	}
	return &s
}

// UpperOrNil is CleanText followed by upper-casing.
func UpperOrNil(raw string) *string {
	s := CleanText(raw)
	if s == nil {
		return nil
	}
	u := strings.ToUpper(*s)
	return &u
}

// NormalizeOccupancy reads values above 1 as percentages and clamps the
// result to [0,1].
func NormalizeOccupancy(v float64) float64 {
	if v > 1 {
		v /= 100
	}
	return clampUnit(v)
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
