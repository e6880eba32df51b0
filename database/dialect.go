// database/dialect.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

const (
	mysqlDuplicateEntry    = 1062
	postgresUniqueViolated = "23505"
)

// ErrConflict marks an insert rejected by a unique constraint.
var ErrConflict = errors.New("unique constraint conflict")

// Dialect covers the SQL differences between the supported drivers.
// Queries are written with ? placeholders.
type Dialect struct {
	driver string
}

func NewDialect(driver string) Dialect {
	if driver == "" {
		driver = DriverMySQL
	}
	return Dialect{driver: driver}
}

func (d Dialect) Driver() string { return d.driver }

// Rebind rewrites ? placeholders into the driver's bind style.
func (d Dialect) Rebind(query string) string {
	return sqlx.Rebind(sqlx.BindType(d.driver), query)
}

// Upsert returns the clause that turns an INSERT into an update of cols
// when key already exists.
func (d Dialect) Upsert(key string, cols ...string) string {
	sets := make([]string, len(cols))
	if d.driver == DriverPostgres {
		for i, c := range cols {
			sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", c, c)
		}
		return fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", key, strings.Join(sets, ", "))
	}
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = VALUES(%s)", c, c)
	}
	return "ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InsertID runs a single-row INSERT and returns the new id. Unique
// violations are reported as ErrConflict.
func (d Dialect) InsertID(ctx context.Context, q execQuerier, query string, args ...any) (int64, error) {
	if d.driver == DriverPostgres {
		var id int64
		err := q.QueryRowContext(ctx, d.Rebind(query+" RETURNING id"), args...).Scan(&id)
		if err != nil {
			return 0, classify(err)
		}
		return id, nil
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return id, nil
}

// IsUniqueViolation reports whether err is a duplicate-key error from
// either driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConflict) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == postgresUniqueViolated
	}
	return false
}

func classify(err error) error {
	if IsUniqueViolation(err) && !errors.Is(err, ErrConflict) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
