package config

import (
	"fmt"
	"os"
)

// JournalConfig holds the configuration for the download outcome journal.
// The journal is optional; when disabled, outcomes are only logged.
type JournalConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`

	// Type-specific configs
	Bbolt *BboltConfig `json:"bbolt,omitempty" yaml:"bbolt,omitempty" toml:"bbolt,omitempty"`
}

// BboltConfig holds bbolt-specific configuration
type BboltConfig struct {
	Path   string      `json:"path" yaml:"path" toml:"path"`                                        // Path to bbolt DB file
	Bucket string      `json:"bucket" yaml:"bucket" toml:"bucket"`                                  // Name of the bucket
	Mode   os.FileMode `json:"mode,omitempty" yaml:"mode,omitempty" toml:"mode,omitempty"`          // File open mode: "0600", "0644"
	NoSync bool        `json:"no_sync,omitempty" yaml:"no_sync,omitempty" toml:"no_sync,omitempty"` // Disable fsync for better performance
}

// Validate validates the journal configuration
func (jc *JournalConfig) Validate() error {
	if !jc.Enabled {
		return nil
	}
	if jc.Bbolt == nil {
		return fmt.Errorf("bbolt configuration is required when the journal is enabled")
	}
	return jc.Bbolt.Validate()
}

func (bc *BboltConfig) Validate() error {
	if bc.Path == "" {
		return fmt.Errorf("bbolt path is required")
	}
	if bc.Bucket == "" {
		return fmt.Errorf("bbolt bucket is required")
	}
	return nil
}

// ApplyDefaults sets default values if not provided for bbolt
func (bc *BboltConfig) ApplyDefaults() {
	if bc.Path == "" {
		bc.Path = "./journal.db" // Default path in the current directory
	}
	if bc.Bucket == "" {
		bc.Bucket = "outcomes" // Default bucket name
	}
	if bc.Mode == 0 {
		bc.Mode = 0600 // Default file permission
	}
	// NoSync remains false by default for data safety
}
