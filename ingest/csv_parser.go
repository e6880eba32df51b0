package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jszwec/csvutil"
	"golang.org/x/text/encoding/charmap"

	"github.com/gewnthar/airroutes/models"
)

var (
	// ErrEmptyFile is returned for uploads without a header row.
	ErrEmptyFile = errors.New("csv file is empty")
	// ErrUnrecognizedHeader is returned when no candidate delimiter yields
	// a header carrying the required columns.
	ErrUnrecognizedHeader = errors.New("csv header not recognized")
)

// DefaultDelimiters is the order in which delimiters are tried: the pipe
// exports first, then the generic comma and semicolon forms.
var DefaultDelimiters = []rune{'|', ',', ';'}

// ParseOptions tunes the CSV parsers.
type ParseOptions struct {
	Delimiters []rune
}

func (o ParseOptions) delimiters() []rune {
	if len(o.Delimiters) == 0 {
		return DefaultDelimiters
	}
	return o.Delimiters
}

// Parsed is one accepted row together with its position and original
// content, which later stages need to report a skip.
type Parsed[T any] struct {
	Row      int
	Value    T
	Original map[string]string
}

// ParseResult separates accepted records from rejected rows.
type ParseResult[T any] struct {
	Records   []Parsed[T]
	Skipped   []models.SkipEntry
	Delimiter rune
	Fallback  bool // input was not valid UTF-8 and was decoded as Windows-1252
}

// Total is the number of data rows read.
func (r *ParseResult[T]) Total() int {
	return len(r.Records) + len(r.Skipped)
}

// ParseAirlines reads an airlines CSV.
func ParseAirlines(r io.Reader, opts ParseOptions) (*ParseResult[models.Airline], error) {
	return parseCSV(r, opts, airlineColumns, ValidateAirline)
}

// ParseAirports reads an airports CSV.
func ParseAirports(r io.Reader, opts ParseOptions) (*ParseResult[models.Airport], error) {
	return parseCSV(r, opts, airportColumns, ValidateAirport)
}

// ParseRoutes reads a routes CSV.
func ParseRoutes(r io.Reader, opts ParseOptions) (*ParseResult[RouteRow], error) {
	return parseCSV(r, opts, routeColumns, ValidateRoute)
}

func parseCSV[R any, T any](r io.Reader, opts ParseOptions, cols columnSet, validate func(R) (T, *ValidationError)) (*ParseResult[T], error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	text, fallback, err := decodeText(data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyFile
	}

	reader, rawHeader, header, delim, err := openWithDelimiter(text, opts.delimiters(), cols)
	if err != nil {
		return nil, err
	}

	dec, err := csvutil.NewDecoder(reader, header...)
	if err != nil {
		return nil, fmt.Errorf("failed to create csv decoder: %w", err)
	}

	res := &ParseResult[T]{Delimiter: delim, Fallback: fallback}
	for row := 1; ; row++ {
		var raw R
		err := dec.Decode(&raw)
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.Is(err, csvutil.ErrFieldCount) && !errors.As(err, &perr) {
				return nil, fmt.Errorf("failed to decode csv row %d: %w", row, err)
			}
			res.Skipped = append(res.Skipped, models.SkipEntry{
				Row:      row,
				Reason:   models.SkipParseError,
				Errors:   []models.FieldError{{Field: "row", Message: err.Error()}},
				Original: sanitizeRow(rawHeader, dec.Record()),
			})
			continue
		}

		original := sanitizeRow(rawHeader, dec.Record())
		value, verr := validate(raw)
		if verr != nil {
			res.Skipped = append(res.Skipped, models.SkipEntry{
				Row:      row,
				Reason:   models.SkipValidationError,
				Errors:   verr.Fields,
				Original: original,
			})
			continue
		}
		res.Records = append(res.Records, Parsed[T]{Row: row, Value: value, Original: original})
	}
	return res, nil
}

// decodeText validates the upload as UTF-8 and falls back to the permissive
// Windows-1252 decoding, which accepts any byte sequence.
func decodeText(data []byte) (string, bool, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data), false, nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", true, fmt.Errorf("failed to decode csv as windows-1252: %w", err)
	}
	return string(decoded), true, nil
}

// openWithDelimiter tries each delimiter against the header row and returns
// a reader positioned on the first data row.
func openWithDelimiter(text string, delims []rune, cols columnSet) (*csv.Reader, []string, []string, rune, error) {
	var lastMissing []string
	for _, d := range delims {
		cr := csv.NewReader(strings.NewReader(text))
		cr.Comma = d
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true

		rawHeader, err := cr.Read()
		if err == io.EOF {
			return nil, nil, nil, 0, ErrEmptyFile
		}
		if err != nil {
			continue
		}
		header, missing := cols.resolve(rawHeader)
		if len(missing) > 0 {
			lastMissing = missing
			continue
		}
		for i := range rawHeader {
			rawHeader[i] = strings.TrimSpace(rawHeader[i])
		}
		return cr, rawHeader, header, d, nil
	}
	return nil, nil, nil, 0, fmt.Errorf("%w: missing columns %s", ErrUnrecognizedHeader, strings.Join(lastMissing, ", "))
}

// sanitizeRow pairs a record with the raw header for diagnostics. Extra
// cells are keyed by position. The result is never nil.
func sanitizeRow(header, record []string) map[string]string {
	out := make(map[string]string, len(record))
	for i, v := range record {
		key := fmt.Sprintf("col_%d", i)
		if i < len(header) && header[i] != "" {
			key = header[i]
		}
		out[key] = v
	}
	return out
}
