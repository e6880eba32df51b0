// config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port           string   `yaml:"port"`
	MaxUploadMB    int64    `yaml:"max_upload_mb"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver          string `yaml:"driver"` // mysql or postgres
	Host            string `yaml:"host"`
	Port            string `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	DBName          string `yaml:"dbname"`
	SSLMode         string `yaml:"sslmode"` // postgres only
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`

	ConnMaxLifetimeDuration time.Duration `yaml:"-"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

type IngestConfig struct {
	PreviewLimit  int      `yaml:"preview_limit"`
	BulkChunkSize int      `yaml:"bulk_chunk_size"`
	Delimiters    []string `yaml:"delimiters"`
}

// DataSourceConfig describes where one dataset is fetched from. URL is
// downloaded directly; otherwise IndexURL is scraped for the first .csv
// link whose text or href contains LinkMatch.
type DataSourceConfig struct {
	URL       string `yaml:"url"`
	IndexURL  string `yaml:"index_url"`
	LinkMatch string `yaml:"link_match"`
	LocalPath string `yaml:"local_path"`
}

type DataSourcesConfig struct {
	Airlines        DataSourceConfig `yaml:"airlines"`
	Airports        DataSourceConfig `yaml:"airports"`
	Routes          DataSourceConfig `yaml:"routes"`
	DownloadTimeout string           `yaml:"download_timeout"`

	DownloadTimeoutDuration time.Duration `yaml:"-"`
}

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Logging     LoggingConfig     `yaml:"logging"`
	Ingest      IngestConfig      `yaml:"ingest"`
	DataSources DataSourcesConfig `yaml:"data_sources"`
}

var AppConfig Config

// LoadConfig reads the YAML file into AppConfig, then applies .env and
// AIRROUTES_* environment overrides and fills in defaults. An empty path
// searches the usual locations.
func LoadConfig(configPath string) error {
	if configPath == "" {
		for _, p := range []string{"config.yaml", "config/config.yaml", "../config/config.yaml"} {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
		if configPath == "" {
			return fmt.Errorf("config.yaml not found in standard locations")
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return err
	}
	AppConfig = *cfg
	return nil
}

// Load parses one config file without touching AppConfig.
func Load(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	for _, src := range []DataSourceConfig{cfg.DataSources.Airlines, cfg.DataSources.Airports, cfg.DataSources.Routes} {
		if src.LocalPath == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(src.LocalPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", src.LocalPath, err)
		}
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	overrides := map[string]*string{
		"AIRROUTES_DB_DRIVER":   &c.Database.Driver,
		"AIRROUTES_DB_HOST":     &c.Database.Host,
		"AIRROUTES_DB_PORT":     &c.Database.Port,
		"AIRROUTES_DB_USER":     &c.Database.User,
		"AIRROUTES_DB_PASSWORD": &c.Database.Password,
		"AIRROUTES_DB_NAME":     &c.Database.DBName,
		"AIRROUTES_DB_SSLMODE":  &c.Database.SSLMode,
		"AIRROUTES_PORT":        &c.Server.Port,
		"AIRROUTES_LOG_LEVEL":   &c.Logging.Level,
	}
	for key, dst := range overrides {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("AIRROUTES_PREVIEW_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AIRROUTES_PREVIEW_LIMIT %q: %w", v, err)
		}
		c.Ingest.PreviewLimit = n
	}
	return nil
}

func (c *Config) applyDefaults() error {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 50
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.Driver != "mysql" && c.Database.Driver != "postgres" {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Port == "" {
		if c.Database.Driver == "postgres" {
			c.Database.Port = "5432"
		} else {
			c.Database.Port = "3306"
		}
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 25
	}
	c.Database.ConnMaxLifetimeDuration = 5 * time.Minute
	if c.Database.ConnMaxLifetime != "" {
		d, err := time.ParseDuration(c.Database.ConnMaxLifetime)
		if err != nil {
			return fmt.Errorf("failed to parse conn_max_lifetime: %w", err)
		}
		c.Database.ConnMaxLifetimeDuration = d
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Ingest.PreviewLimit <= 0 {
		c.Ingest.PreviewLimit = 10
	}
	if c.Ingest.BulkChunkSize <= 0 {
		c.Ingest.BulkChunkSize = 500
	}

	c.DataSources.DownloadTimeoutDuration = 60 * time.Second
	if c.DataSources.DownloadTimeout != "" {
		d, err := time.ParseDuration(c.DataSources.DownloadTimeout)
		if err != nil {
			return fmt.Errorf("failed to parse download_timeout: %w", err)
		}
		c.DataSources.DownloadTimeoutDuration = d
	}
	return nil
}

// DelimiterRunes returns the configured delimiter candidates as runes. Entries
// longer than one character are ignored; "\t" and "tab" mean a tab.
func (c IngestConfig) DelimiterRunes() []rune {
	var out []rune
	for _, d := range c.Delimiters {
		switch d {
		case `\t`, "tab":
			out = append(out, '\t')
			continue
		}
		if r := []rune(d); len(r) == 1 {
			out = append(out, r[0])
		}
	}
	return out
}

// Source returns the data source configured for kind.
func (c DataSourcesConfig) Source(kind string) (DataSourceConfig, bool) {
	switch kind {
	case "airlines":
		return c.Airlines, true
	case "airports":
		return c.Airports, true
	case "routes":
		return c.Routes, true
	}
	return DataSourceConfig{}, false
}
