package config

import (
	"fmt"
	"os"
	"strconv"
)

// AppConfig represents the complete application configuration
type AppConfig struct {
	Sync    SyncConfig    `json:"sync" yaml:"sync" toml:"sync"`
	Journal JournalConfig `json:"journal" yaml:"journal" toml:"journal"`
	Logger  LoggerConfig  `json:"logger" yaml:"logger" toml:"logger"`
	DryRun  bool          `json:"dry_run" yaml:"dry_run" toml:"dry_run"` // If true, only the download plan is printed, nothing is fetched
}

// Validate validates the entire configuration
func (ac *AppConfig) Validate() error {
	if err := ac.Sync.Validate(); err != nil {
		return fmt.Errorf("sync config error: %w", err)
	}
	if err := ac.Journal.Validate(); err != nil {
		return fmt.Errorf("journal config error: %w", err)
	}
	if err := ac.Logger.Validate(); err != nil {
		return fmt.Errorf("logger config error: %w", err)
	}
	return nil
}

// ApplyDefaults applies default values to all components
func (ac *AppConfig) ApplyDefaults() {
	ac.Sync.ApplyDefaults()
	ac.Logger.ApplyDefaults()
	if ac.Journal.Bbolt != nil {
		ac.Journal.Bbolt.ApplyDefaults()
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}

	// General configuration
	cfg.DryRun = getEnvBool("DRY_RUN", false)

	// Logger configuration
	cfg.Logger.Level = LogLevel(getEnv("LOG_LEVEL", string(LogLevelInfo)))

	// Sync configuration
	cfg.Sync.TargetsCSV = getEnv("SYNC_TARGETS_CSV", "default.csv")
	cfg.Sync.Mode = getEnv("SYNC_MODE", "auto")
	cfg.Sync.WorkerCount = getEnvInt("SYNC_WORKER_COUNT", 5)
	cfg.Sync.TimeoutSeconds = getEnvInt("SYNC_TIMEOUT_SECONDS", 30)
	cfg.Sync.MaxRPS = getEnvInt("SYNC_MAX_RPS", 0)
	cfg.Sync.Schedule = getEnv("SYNC_SCHEDULE", "")

	// Journal configuration
	cfg.Journal.Enabled = getEnvBool("JOURNAL_ENABLED", false)
	cfg.Journal.Bbolt = &BboltConfig{
		Path:   getEnv("JOURNAL_BBOLT_PATH", "./journal.db"),
		Bucket: getEnv("JOURNAL_BBOLT_BUCKET", "outcomes"),
		Mode:   0600,
		NoSync: getEnvBool("JOURNAL_BBOLT_NO_SYNC", false),
	}

	// Apply defaults
	cfg.ApplyDefaults()

	return cfg, nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
