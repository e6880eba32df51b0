// database/store.go
package database

import (
	"context"
	"database/sql"
	"fmt"
)

const defaultRouteChunkSize = 500

// Store runs the ingestion queries against one connection pool.
type Store struct {
	db        *sql.DB
	dialect   Dialect
	chunkSize int
}

func NewStore(db *sql.DB, driver string) *Store {
	return &Store{db: db, dialect: NewDialect(driver), chunkSize: defaultRouteChunkSize}
}

// WithChunkSize sets the number of routes per multi-row INSERT.
func (s *Store) WithChunkSize(n int) *Store {
	if n > 0 {
		s.chunkSize = n
	}
	return s
}

func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}
