// models/api_models.go
package models

// Skip reasons reported in ingestion summaries.
const (
	SkipParseError       = "parse_error"
	SkipValidationError  = "validation_error"
	SkipAirportFKMissing = "airport_fk_missing"
	SkipFlightDateNull   = "flight_date_null"
)

// FieldError names one offending field of a rejected row.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SkipEntry describes one input row that was not persisted. Row is the
// 1-based index of the data row (the header is not counted).
type SkipEntry struct {
	Row      int               `json:"row"`
	Reason   string            `json:"reason"`
	Errors   []FieldError      `json:"errors,omitempty"`
	Original map[string]string `json:"original"`
}

// EntityIngestSummary is returned by the airlines and airports uploads.
type EntityIngestSummary struct {
	InsertedOrExisting int         `json:"inserted_or_existing"`
	Skipped            int         `json:"skipped"`
	SkippedPreview     []SkipEntry `json:"skipped_preview"`
}

// RouteIngestSummary is returned by the routes upload.
type RouteIngestSummary struct {
	Inserted       int         `json:"inserted"`
	Skipped        int         `json:"skipped"`
	SkippedPreview []SkipEntry `json:"skipped_preview"`
}
