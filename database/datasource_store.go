// database/datasource_store.go
package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gewnthar/airroutes/models"
)

// RecordDataSourceVersion inserts or updates the data_source_versions row
// of v.SourceName after a refresh.
func (s *Store) RecordDataSourceVersion(ctx context.Context, v models.DataSourceVersion) error {
	if s.db == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	query := `INSERT INTO data_source_versions (
			source_name, source_url, filename, data_hash, bytes,
			rows_accepted, rows_skipped, last_downloaded_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP) ` +
		s.dialect.Upsert("source_name",
			"source_url", "filename", "data_hash", "bytes",
			"rows_accepted", "rows_skipped", "last_downloaded_at", "updated_at")

	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(query),
		v.SourceName, v.SourceURL, v.Filename, v.DataHash, v.Bytes,
		v.RowsAccepted, v.RowsSkipped, v.LastDownloadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log data source version for %s: %w", v.SourceName, err)
	}

	slog.Info("Logged data source version", "source", v.SourceName, "filename", v.Filename, "hash", v.DataHash)
	return nil
}

// GetDataSourceVersions returns every recorded data source, by name.
func (s *Store) GetDataSourceVersions(ctx context.Context) ([]models.DataSourceVersion, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_name, source_url, filename, data_hash, bytes,
		       rows_accepted, rows_skipped, last_downloaded_at, updated_at
		FROM data_source_versions
		ORDER BY source_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query data_source_versions: %w", err)
	}
	defer rows.Close()

	versions := []models.DataSourceVersion{}
	for rows.Next() {
		var v models.DataSourceVersion
		if err := rows.Scan(
			&v.ID, &v.SourceName, &v.SourceURL, &v.Filename, &v.DataHash, &v.Bytes,
			&v.RowsAccepted, &v.RowsSkipped, &v.LastDownloadedAt, &v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan data_source_version row: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating data_source_version rows: %w", err)
	}
	return versions, nil
}
