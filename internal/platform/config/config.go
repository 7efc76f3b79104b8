package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

type Config struct {
	Environment      string
	LogLevel         string
	LogFormat        string
	StorageDriver    string
	DataDir          string
	DatabaseURL      string
	StorageTable     string
	StorageQueueSize int
	StorageTimeout   time.Duration
	DefaultLanguage  string
	Locales          []string
	DefaultPageSize  int
	SeedDemoData     bool
	DemoExtraRecords int
	ExportDir        string
}

func Load() Config {
	return Config{
		Environment:      getEnv("APP_ENV", "development"),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", "text")),
		StorageDriver:    strings.ToLower(getEnv("STORAGE_DRIVER", DriverFile)),
		DataDir:          getEnv("DATA_DIR", "data"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		StorageTable:     getEnv("STORAGE_TABLE", "local_storage"),
		StorageQueueSize: getEnvInt("STORAGE_QUEUE_SIZE", 64),
		StorageTimeout:   getEnvDuration("STORAGE_TIMEOUT", 5*time.Second),
		DefaultLanguage:  strings.ToLower(getEnv("DEFAULT_LANGUAGE", "")),
		Locales:          getEnvList("LC_ALL", "LC_MESSAGES", "LANG"),
		DefaultPageSize:  getEnvInt("DEFAULT_PAGE_SIZE", 10),
		SeedDemoData:     getEnvBool("SEED_DEMO_DATA", true),
		DemoExtraRecords: getEnvInt("DEMO_EXTRA_RECORDS", 0),
		ExportDir:        getEnv("EXPORT_DIR", "exports"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvList returns the non-empty values of keys in order.
func getEnvList(keys ...string) []string {
	var out []string
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			out = append(out, value)
		}
	}
	return out
}

func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json")
	}
	switch c.StorageDriver {
	case DriverMemory:
	case DriverFile:
		if strings.TrimSpace(c.DataDir) == "" {
			return fmt.Errorf("DATA_DIR is required for the file storage driver")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres storage driver")
		}
		if strings.TrimSpace(c.StorageTable) == "" {
			return fmt.Errorf("STORAGE_TABLE must not be empty")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of memory, file, postgres")
	}
	if c.StorageQueueSize <= 0 {
		return fmt.Errorf("STORAGE_QUEUE_SIZE must be positive")
	}
	if c.StorageTimeout <= 0 {
		return fmt.Errorf("STORAGE_TIMEOUT must be positive")
	}
	if c.DefaultLanguage != "" && c.DefaultLanguage != "en" && c.DefaultLanguage != "tr" {
		return fmt.Errorf("DEFAULT_LANGUAGE must be tr or en")
	}
	switch c.DefaultPageSize {
	case 5, 10, 20, 50:
	default:
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be one of 5, 10, 20, 50")
	}
	if c.DemoExtraRecords < 0 {
		return fmt.Errorf("DEMO_EXTRA_RECORDS must not be negative")
	}
	if c.Environment == "production" && c.StorageDriver == DriverMemory {
		return fmt.Errorf("STORAGE_DRIVER memory loses data on exit and is not allowed in production")
	}
	return nil
}
