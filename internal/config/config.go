package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults: one credential file, one collection, twenty records.
const (
	CredentialPath = "sa.json"
	Collection     = "workshop_registrations"
	OrderBy        = "created_at"
	Limit          = 20
)

// Backend names accepted by --backend.
const (
	BackendFirestore  = "firestore"
	BackendPostgres   = "postgres"
	BackendClickHouse = "clickhouse"
	BackendSQLite     = "sqlite"
)

// Mirror database defaults (shared by postgres and clickhouse).
const (
	DBName   = "default"
	User     = "default"
	Password = "strongpassword"
)

// Config is the full reporter configuration. Zero values are filled by Default.
type Config struct {
	Backend          string `yaml:"backend"`
	Collection       string `yaml:"collection"`
	OrderBy          string `yaml:"order_by"`
	Limit            int    `yaml:"limit"`
	FailOnQueryError bool   `yaml:"fail_on_query_error"`
	Timeout          string `yaml:"timeout"` // Go duration, empty or "0" = none

	Firestore  FirestoreConfig `yaml:"firestore"`
	Postgres   SQLConfig       `yaml:"postgres"`
	ClickHouse SQLConfig       `yaml:"clickhouse"`
	SQLite     SQLiteConfig    `yaml:"sqlite"`
	Logging    LoggingConfig   `yaml:"logging"`
}

// FirestoreConfig points at the service-account credential.
type FirestoreConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	ProjectID       string `yaml:"project_id"` // optional, taken from the credential when empty
}

// SQLConfig addresses a postgres or clickhouse mirror of the collection.
type SQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// SQLiteConfig addresses a local snapshot file.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// Default returns the configuration the tool runs with when nothing is overridden.
func Default() *Config {
	return &Config{
		Backend:    BackendFirestore,
		Collection: Collection,
		OrderBy:    OrderBy,
		Limit:      Limit,
		Firestore:  FirestoreConfig{CredentialsFile: CredentialPath},
		Postgres: SQLConfig{
			Host:     "localhost",
			Port:     5432,
			Database: DBName,
			User:     User,
			Password: Password,
		},
		ClickHouse: SQLConfig{
			Host:     "clickhouse",
			Port:     9000,
			Database: DBName,
			User:     User,
			Password: Password,
		},
		SQLite:  SQLiteConfig{Path: "snapshot.db"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Load reads a YAML config file on top of Default and applies env overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if p := os.Getenv("RECENTDOCS_CREDENTIALS"); p != "" {
		c.Firestore.CredentialsFile = p
	} else if p := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); p != "" && c.Firestore.CredentialsFile == CredentialPath {
		c.Firestore.CredentialsFile = p
	}
	if col := os.Getenv("RECENTDOCS_COLLECTION"); col != "" {
		c.Collection = col
	}
	if h := os.Getenv("POSTGRES_HOST"); h != "" {
		c.Postgres.Host = h
	}
	if h := os.Getenv("CLICKHOUSE_HOST"); h != "" {
		c.ClickHouse.Host = h
	}
}

// QueryTimeout parses Timeout. Zero means no deadline.
func (c *Config) QueryTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", c.Timeout)
	}
	return d, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Backend {
	case BackendFirestore, BackendPostgres, BackendClickHouse, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q (want firestore, postgres, clickhouse or sqlite)", c.Backend))
	}
	if c.Collection == "" {
		errs = append(errs, errors.New("collection must not be empty"))
	}
	if c.OrderBy == "" {
		errs = append(errs, errors.New("order_by must not be empty"))
	}
	if c.Limit < 1 {
		errs = append(errs, fmt.Errorf("limit must be >= 1, got %d", c.Limit))
	}
	if _, err := c.QueryTimeout(); err != nil {
		errs = append(errs, err)
	}
	if c.Backend == BackendFirestore && c.Firestore.CredentialsFile == "" {
		errs = append(errs, errors.New("firestore.credentials_file must not be empty"))
	}
	if c.Backend == BackendSQLite && c.SQLite.Path == "" {
		errs = append(errs, errors.New("sqlite.path must not be empty"))
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown logging format %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}
