// Package config parses the TASKWELL_* environment into a validated
// Config and opens the storage backend it names.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/taskwell/taskwell/internal/env"
)

// Config holds the application configuration.
type Config struct {
	// Storage backend selection: fs, sqlite, gcs, memory.
	StorageType string `env:"TASKWELL_STORAGE_TYPE" default:"fs"`
	DataDir     string `env:"TASKWELL_DATA_DIR" default:"./taskwell-data"`
	SQLitePath  string `env:"TASKWELL_SQLITE_PATH"`
	GCSBucket   string `env:"TASKWELL_GCS_BUCKET"`
	GCSPrefix   string `env:"TASKWELL_GCS_PREFIX"`

	// Feed fetching.
	SyncTimeout time.Duration `env:"TASKWELL_SYNC_TIMEOUT" default:"30s"`

	// Offset of the logical day boundary past midnight. With 4h, work
	// logged at 02:00 still lands on the previous day's agenda.
	DayStart time.Duration `env:"TASKWELL_DAY_START" default:"0h"`

	// Observability.
	OTelEnabled   bool   `env:"TASKWELL_OTEL_ENABLED" default:"false"`
	OTelCollector string `env:"TASKWELL_OTEL_COLLECTOR" default:"localhost:4318"`
}

// Load parses environment variables into a Config and validates
// backend-specific requirements.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageType {
	case "fs":
		if c.DataDir == "" {
			return fmt.Errorf("TASKWELL_DATA_DIR is required when TASKWELL_STORAGE_TYPE is 'fs'")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			if c.DataDir == "" {
				return fmt.Errorf("TASKWELL_SQLITE_PATH is required when TASKWELL_STORAGE_TYPE is 'sqlite'")
			}
			c.SQLitePath = filepath.Join(c.DataDir, "taskwell.db")
		}
	case "gcs":
		if c.GCSBucket == "" {
			return fmt.Errorf("TASKWELL_GCS_BUCKET is required when TASKWELL_STORAGE_TYPE is 'gcs'")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown TASKWELL_STORAGE_TYPE: %s", c.StorageType)
	}

	if c.SyncTimeout <= 0 {
		return fmt.Errorf("TASKWELL_SYNC_TIMEOUT must be positive")
	}
	if c.DayStart <= -24*time.Hour || c.DayStart >= 24*time.Hour {
		return fmt.Errorf("TASKWELL_DAY_START must be within (-24h, 24h)")
	}
	return nil
}
