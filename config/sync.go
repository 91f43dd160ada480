package config

import (
	"fmt"

	"github.com/yangdangfu/ftpsync/model"
)

// SyncConfig holds the settings shared by every sync target in one run.
type SyncConfig struct {
	TargetsCSV     string `json:"targets_csv" yaml:"targets_csv" toml:"targets_csv"`                                           // path to the CSV table of sync targets
	Mode           string `json:"mode" yaml:"mode" toml:"mode"`                                                                // auto, override or no_override
	WorkerCount    int    `json:"worker_count,omitempty" yaml:"worker_count,omitempty" toml:"worker_count,omitempty"`          // optional: number of concurrent target workers
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" toml:"timeout_seconds,omitempty"` // optional: FTP dial timeout in seconds
	MaxRPS         int    `json:"max_rps,omitempty" yaml:"max_rps,omitempty" toml:"max_rps,omitempty"`                         // optional: max requests per second per dialer (0 = no limit)
	Schedule       string `json:"schedule,omitempty" yaml:"schedule,omitempty" toml:"schedule,omitempty"`                      // optional: cron expression for recurring sweeps (empty = run once)
}

// Validate validates the sync configuration
func (sc *SyncConfig) Validate() error {
	if sc.TargetsCSV == "" {
		return fmt.Errorf("targets csv path is required")
	}
	if _, err := model.ParseMode(sc.Mode); err != nil {
		return err
	}
	if sc.WorkerCount < 0 {
		return fmt.Errorf("worker_count cannot be negative")
	}
	if sc.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds cannot be negative")
	}
	if sc.MaxRPS < 0 {
		return fmt.Errorf("max_rps cannot be negative")
	}
	return nil
}

// ApplyDefaults sets default values if they are not provided
func (sc *SyncConfig) ApplyDefaults() {
	if sc.Mode == "" {
		sc.Mode = string(model.ModeAuto)
	}
	if sc.WorkerCount <= 0 {
		sc.WorkerCount = 5
	}
	if sc.TimeoutSeconds <= 0 {
		sc.TimeoutSeconds = 30
	}
	// MaxRPS leave 0 (means no limit)
}
