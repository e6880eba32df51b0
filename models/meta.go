// models/meta.go
package models

import "time"

// DataSourceVersion records the last refresh of one downloaded dataset.
type DataSourceVersion struct {
	ID               int64     `db:"id" json:"id"`
	SourceName       string    `db:"source_name" json:"source_name"` // airlines, airports or routes
	SourceURL        string    `db:"source_url" json:"source_url"`
	Filename         string    `db:"filename" json:"filename"`
	DataHash         string    `db:"data_hash" json:"data_hash,omitempty"` // sha256 of the file
	Bytes            int64     `db:"bytes" json:"bytes"`
	RowsAccepted     int       `db:"rows_accepted" json:"rows_accepted"`
	RowsSkipped      int       `db:"rows_skipped" json:"rows_skipped"`
	LastDownloadedAt time.Time `db:"last_downloaded_at" json:"last_downloaded_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
