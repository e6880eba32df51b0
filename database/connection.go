// database/connection.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/gewnthar/airroutes/config"
)

var DB *sql.DB

// DSN builds the driver-specific connection string.
func DSN(cfg config.DatabaseConfig) (string, error) {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	switch cfg.Driver {
	case DriverMySQL, "":
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = addr
		mc.DBName = cfg.DBName
		mc.ParseTime = true
		mc.Loc = time.UTC
		return mc.FormatDSN(), nil
	case DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     addr,
			Path:     "/" + cfg.DBName,
			RawQuery: url.Values{"sslmode": {cfg.SSLMode}}.Encode(),
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// InitDB initializes the database connection pool.
func InitDB(cfg config.DatabaseConfig) error {
	dsn, err := DSN(cfg)
	if err != nil {
		return err
	}
	driver := cfg.Driver
	if driver == "" {
		driver = DriverMySQL
	}

	DB, err = sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(cfg.MaxOpenConns)
	DB.SetMaxIdleConns(cfg.MaxIdleConns)
	DB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := DB.PingContext(ctx); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Successfully connected to the database", "driver", driver, "host", cfg.Host, "dbname", cfg.DBName)
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		DB.Close()
		slog.Info("Database connection closed")
	}
}
