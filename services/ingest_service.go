// services/ingest_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/gewnthar/airroutes/ingest"
	"github.com/gewnthar/airroutes/models"
)

const DefaultPreviewLimit = 10

// ErrInvalidUpload wraps parse failures caused by the uploaded file itself.
var ErrInvalidUpload = errors.New("invalid upload")

// EntityStore persists airlines and airports one row at a time.
type EntityStore interface {
	GetOrCreateAirline(ctx context.Context, a models.Airline) (models.Airline, error)
	GetOrCreateAirport(ctx context.Context, a models.Airport) (models.Airport, error)
}

// RouteStore provides the reference data and bulk insert used for routes.
type RouteStore interface {
	LoadAirportRefs(ctx context.Context) ([]models.RefEntry, error)
	LoadAirlineRefs(ctx context.Context) ([]models.RefEntry, error)
	BulkInsertRoutes(ctx context.Context, routes []models.Route) (int, error)
}

type IngestStore interface {
	EntityStore
	RouteStore
}

// IngestService turns uploaded CSV files into stored rows plus a report of
// the rows that were left out.
type IngestService struct {
	store        IngestStore
	parseOpts    ingest.ParseOptions
	previewLimit int
}

func NewIngestService(store IngestStore, previewLimit int, delimiters []rune) *IngestService {
	if previewLimit <= 0 {
		previewLimit = DefaultPreviewLimit
	}
	return &IngestService{
		store:        store,
		parseOpts:    ingest.ParseOptions{Delimiters: delimiters},
		previewLimit: previewLimit,
	}
}

// IngestAirlines stores every valid airline row, reusing rows that already
// exist with the same IATA or ICAO code.
func (s *IngestService) IngestAirlines(ctx context.Context, r io.Reader) (models.EntityIngestSummary, error) {
	log := slog.With("batch_id", uuid.NewString(), "entity", "airlines")

	res, err := ingest.ParseAirlines(r, s.parseOpts)
	if err != nil {
		return models.EntityIngestSummary{}, uploadError(err)
	}
	log.Debug("Parsed upload", "rows", res.Total(), "delimiter", string(res.Delimiter), "windows1252", res.Fallback)

	stored := 0
	for _, rec := range res.Records {
		if _, err := s.store.GetOrCreateAirline(ctx, rec.Value); err != nil {
			log.Error("Failed to store airline", "row", rec.Row, "error", err)
			return models.EntityIngestSummary{}, fmt.Errorf("failed to store airline on row %d: %w", rec.Row, err)
		}
		stored++
	}

	summary := models.EntityIngestSummary{
		InsertedOrExisting: stored,
		Skipped:            len(res.Skipped),
		SkippedPreview:     s.preview(res.Skipped),
	}
	log.Info("Ingested airlines", "inserted_or_existing", summary.InsertedOrExisting, "skipped", summary.Skipped)
	return summary, nil
}

// IngestAirports stores every valid airport row, reusing rows that already
// exist with the same external id or code.
func (s *IngestService) IngestAirports(ctx context.Context, r io.Reader) (models.EntityIngestSummary, error) {
	log := slog.With("batch_id", uuid.NewString(), "entity", "airports")

	res, err := ingest.ParseAirports(r, s.parseOpts)
	if err != nil {
		return models.EntityIngestSummary{}, uploadError(err)
	}
	log.Debug("Parsed upload", "rows", res.Total(), "delimiter", string(res.Delimiter), "windows1252", res.Fallback)

	stored := 0
	for _, rec := range res.Records {
		if _, err := s.store.GetOrCreateAirport(ctx, rec.Value); err != nil {
			log.Error("Failed to store airport", "row", rec.Row, "error", err)
			return models.EntityIngestSummary{}, fmt.Errorf("failed to store airport on row %d: %w", rec.Row, err)
		}
		stored++
	}

	summary := models.EntityIngestSummary{
		InsertedOrExisting: stored,
		Skipped:            len(res.Skipped),
		SkippedPreview:     s.preview(res.Skipped),
	}
	log.Info("Ingested airports", "inserted_or_existing", summary.InsertedOrExisting, "skipped", summary.Skipped)
	return summary, nil
}

// IngestRoutes resolves every valid route against the stored airports and
// airlines and inserts the resolvable ones in one transaction. Reference
// maps are loaded once per call.
func (s *IngestService) IngestRoutes(ctx context.Context, r io.Reader) (models.RouteIngestSummary, error) {
	log := slog.With("batch_id", uuid.NewString(), "entity", "routes")

	res, err := ingest.ParseRoutes(r, s.parseOpts)
	if err != nil {
		return models.RouteIngestSummary{}, uploadError(err)
	}
	log.Debug("Parsed upload", "rows", res.Total(), "delimiter", string(res.Delimiter), "windows1252", res.Fallback)

	airportRefs, err := s.store.LoadAirportRefs(ctx)
	if err != nil {
		return models.RouteIngestSummary{}, fmt.Errorf("failed to load airport references: %w", err)
	}
	airlineRefs, err := s.store.LoadAirlineRefs(ctx)
	if err != nil {
		return models.RouteIngestSummary{}, fmt.Errorf("failed to load airline references: %w", err)
	}
	airports := ingest.NewRefMaps(airportRefs)
	airlines := ingest.NewRefMaps(airlineRefs)

	skipped := append([]models.SkipEntry(nil), res.Skipped...)
	routes := make([]models.Route, 0, len(res.Records))
	for _, rec := range res.Records {
		fks := ingest.ResolveRouteFKs(rec.Value, airports, airlines)
		if reason := fks.SkipReason(rec.Value); reason != "" {
			skipped = append(skipped, models.SkipEntry{
				Row:      rec.Row,
				Reason:   reason,
				Errors:   fkErrors(fks, rec.Value),
				Original: rec.Original,
			})
			continue
		}
		routes = append(routes, rec.Value.Route(fks))
	}
	sort.SliceStable(skipped, func(i, j int) bool { return skipped[i].Row < skipped[j].Row })

	inserted, err := s.store.BulkInsertRoutes(ctx, routes)
	if err != nil {
		log.Error("Bulk insert failed", "routes", len(routes), "error", err)
		return models.RouteIngestSummary{}, fmt.Errorf("failed to save routes: %w", err)
	}

	summary := models.RouteIngestSummary{
		Inserted:       inserted,
		Skipped:        len(skipped),
		SkippedPreview: s.preview(skipped),
	}
	log.Info("Ingested routes", "inserted", summary.Inserted, "skipped", summary.Skipped)
	return summary, nil
}

// preview returns at most previewLimit entries; never nil so the JSON
// field is always an array.
func (s *IngestService) preview(skipped []models.SkipEntry) []models.SkipEntry {
	n := min(len(skipped), s.previewLimit)
	out := make([]models.SkipEntry, n)
	copy(out, skipped[:n])
	return out
}

func fkErrors(fks ingest.RouteFKs, row ingest.RouteRow) []models.FieldError {
	var errs []models.FieldError
	if fks.OriginID == nil {
		errs = append(errs, models.FieldError{Field: "origin", Message: "no stored airport matches " + refLabel(row.OriginExtID, row.OriginCode)})
	}
	if fks.DestinationID == nil {
		errs = append(errs, models.FieldError{Field: "destination", Message: "no stored airport matches " + refLabel(row.DestinationExtID, row.DestinationCode)})
	}
	if len(errs) == 0 && row.FlightDate == nil {
		errs = append(errs, models.FieldError{Field: "flight_date", Message: "missing or unparseable"})
	}
	return errs
}

func refLabel(ext *int64, code *string) string {
	switch {
	case ext != nil && code != nil:
		return fmt.Sprintf("id %d or code %s", *ext, *code)
	case ext != nil:
		return fmt.Sprintf("id %d", *ext)
	case code != nil:
		return "code " + *code
	}
	return "an empty reference"
}

func uploadError(err error) error {
	if errors.Is(err, ingest.ErrEmptyFile) || errors.Is(err, ingest.ErrUnrecognizedHeader) {
		return fmt.Errorf("%w: %w", ErrInvalidUpload, err)
	}
	return fmt.Errorf("failed to parse upload: %w", err)
}
