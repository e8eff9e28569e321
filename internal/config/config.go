// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkordes/transfer-tracker/internal/archive"
	"github.com/pkordes/transfer-tracker/internal/domain"
)

// StoreDriver names the persistence backend.
type StoreDriver string

const (
	StoreCSV      StoreDriver = "csv"
	StorePostgres StoreDriver = "postgres"
	StoreSQLite   StoreDriver = "sqlite"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// Profile selects the form profile. Defaults to simple.
	Profile domain.Profile

	// StoreDriver selects the persistence backend. Defaults to csv.
	StoreDriver StoreDriver

	// DataFile is the CSV store path used by the csv driver.
	DataFile string

	// DatabaseURL is the Postgres connection string. Required for the postgres driver.
	DatabaseURL string

	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string

	// MaxUploadBytes caps request bodies. Defaults to 5 MiB.
	MaxUploadBytes int64

	Archive ArchiveConfig
}

// ArchiveConfig selects where archived exports are written.
type ArchiveConfig struct {
	Driver archive.Driver
	Dir    string

	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3PathStyle       bool
	S3AccessKeyID     string
	S3SecretAccessKey string
}

const defaultMaxUploadBytes = 5 << 20

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first value that cannot be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		DataFile:    getEnv("DATA_FILE", "transfer_data.csv"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getEnv("SQLITE_PATH", "transfers.db"),
		Archive: ArchiveConfig{
			Dir:               getEnv("ARCHIVE_DIR", "exports"),
			S3Bucket:          os.Getenv("ARCHIVE_S3_BUCKET"),
			S3Region:          getEnv("ARCHIVE_S3_REGION", "us-east-1"),
			S3Endpoint:        os.Getenv("ARCHIVE_S3_ENDPOINT"),
			S3AccessKeyID:     os.Getenv("ARCHIVE_S3_ACCESS_KEY_ID"),
			S3SecretAccessKey: os.Getenv("ARCHIVE_S3_SECRET_ACCESS_KEY"),
		},
	}

	var err error
	if cfg.Profile, err = domain.ParseProfile(getEnv("FORM_PROFILE", string(domain.ProfileSimple))); err != nil {
		return Config{}, fmt.Errorf("FORM_PROFILE: %w", err)
	}
	if cfg.StoreDriver, err = parseStoreDriver(getEnv("STORE_DRIVER", string(StoreCSV))); err != nil {
		return Config{}, fmt.Errorf("STORE_DRIVER: %w", err)
	}
	if cfg.Archive.Driver, err = archive.ParseDriver(os.Getenv("ARCHIVE_DRIVER")); err != nil {
		return Config{}, fmt.Errorf("ARCHIVE_DRIVER: %w", err)
	}
	if cfg.MaxUploadBytes, err = getEnvInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes); err != nil {
		return Config{}, err
	}
	if cfg.Archive.S3PathStyle, err = getEnvBool("ARCHIVE_S3_PATH_STYLE", false); err != nil {
		return Config{}, err
	}

	var missing []string
	if cfg.StoreDriver == StorePostgres && cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.Archive.Driver == archive.DriverS3 && cfg.Archive.S3Bucket == "" {
		missing = append(missing, "ARCHIVE_S3_BUCKET")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func parseStoreDriver(s string) (StoreDriver, error) {
	switch d := StoreDriver(strings.ToLower(strings.TrimSpace(s))); d {
	case StoreCSV, StorePostgres, StoreSQLite:
		return d, nil
	}
	return "", fmt.Errorf("unknown store driver %q", s)
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: must be a positive integer, got %q", key, v)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: must be a boolean, got %q", key, v)
	}
	return b, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
