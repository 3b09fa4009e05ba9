package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// ─────────────────────────────────────────────────────────────
// Configuration — env vars with defaults, optional TOML overlay
// ─────────────────────────────────────────────────────────────

type Config struct {
	Port        string `toml:"port"`
	Environment string `toml:"environment"`
	CORSOrigins string `toml:"cors_origins"`

	DBPath       string `toml:"db_path"`
	SnapshotDir  string `toml:"snapshot_dir"`
	SnapshotCron string `toml:"snapshot_cron"`

	AIBaseURL string `toml:"ai_base_url"`
	AIAPIKey  string `toml:"ai_api_key"`

	// Metadata database served by /api/db/schema. An empty driver
	// falls back to introspecting the app's own SQLite file.
	Meta MetaConfig `toml:"meta"`
}

type MetaConfig struct {
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Database string `toml:"database"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	SSLMode  string `toml:"ssl_mode"`
}

// Load builds the configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8000"),
		Environment:  getEnv("ENV", "development"),
		CORSOrigins:  getEnv("CORS_ORIGINS", "*"),
		DBPath:       getEnv("DB_PATH", "data/builder.db"),
		SnapshotDir:  getEnv("SNAPSHOT_DIR", "data/snapshots"),
		SnapshotCron: getEnv("SNAPSHOT_CRON", ""),
		AIBaseURL:    getEnv("AI_BASE_URL", ""),
		AIAPIKey:     getEnv("AI_API_KEY", ""),
		Meta: MetaConfig{
			Driver:   getEnv("META_DB_DRIVER", ""),
			Host:     getEnv("META_DB_HOST", ""),
			Port:     getEnvAsInt("META_DB_PORT", 0),
			Database: getEnv("META_DB_NAME", ""),
			Username: getEnv("META_DB_USER", ""),
			Password: getEnv("META_DB_PASSWORD", ""),
			SSLMode:  getEnv("META_DB_SSL_MODE", ""),
		},
	}
}

// ApplyFile overlays settings from a TOML file. Keys absent from the
// file keep their current values.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
